package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/houi19lb/Gstore-theme-sub001/internal/domain/charge"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/metrics"
	"go.uber.org/zap"
)

// Sweeper polls pending charges of one gateway.
type Sweeper interface {
	Sweep(ctx context.Context, kind model.GatewayKind) (*charge.SweepResult, error)
}

// Config contains scheduler configuration.
type Config struct {
	Interval time.Duration
	// RunTimeout bounds a single sweep of one gateway.
	RunTimeout time.Duration
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{
		Interval:   time.Hour,
		RunTimeout: 10 * time.Minute,
	}
}

// Scheduler runs the polling fallback for every gateway on a fixed interval.
type Scheduler struct {
	sweeper Sweeper
	kinds   []model.GatewayKind
	config  *Config
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates a scheduler sweeping the given gateways.
func New(sweeper Sweeper, kinds []model.GatewayKind, config *Config, m *metrics.Metrics, logger *zap.Logger) *Scheduler {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = config.Interval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		sweeper: sweeper,
		kinds:   kinds,
		config:  config,
		metrics: m,
		logger:  logger.Named("scheduler"),
	}
}

// Start runs a sweep immediately and then once per interval until Stop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})

	s.wg.Add(1)
	go s.loop(s.stopCh)

	s.logger.Info("polling scheduler started", zap.Duration("interval", s.config.Interval))
}

// Stop stops the scheduler and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("polling scheduler stopped")
}

func (s *Scheduler) loop(stop <-chan struct{}) {
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-stop
		cancel()
	}()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce sweeps every gateway once. A failing gateway does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, kind := range s.kinds {
		if ctx.Err() != nil {
			return
		}
		s.sweep(ctx, kind)
	}
}

func (s *Scheduler) sweep(parent context.Context, kind model.GatewayKind) {
	ctx, cancel := context.WithTimeout(parent, s.config.RunTimeout)
	defer cancel()

	log := s.logger.With(zap.String("gateway", kind.String()))

	result, err := s.sweeper.Sweep(ctx, kind)
	switch {
	case err != nil:
		log.Error("sweep failed", zap.Error(err))
		s.record(kind, "error", 0, 0)
	case result.Skipped != "":
		log.Debug("sweep skipped", zap.String("reason", result.Skipped))
		s.record(kind, "skipped", 0, 0)
	default:
		log.Info("sweep completed",
			zap.Int("checked", result.Checked),
			zap.Int("reconciled", result.Reconciled),
			zap.Int("failed", result.Failed))
		s.record(kind, "completed", result.Reconciled, result.Failed)
	}
}

func (s *Scheduler) record(kind model.GatewayKind, outcome string, reconciled, failed int) {
	if s.metrics != nil {
		s.metrics.RecordSweep(kind.String(), outcome, reconciled, failed)
	}
}
