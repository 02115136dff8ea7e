package charge

import (
	"context"
	"fmt"

	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Reasons a sweep did not run.
const (
	SkipPushEnabled   = "webhook secret configured"
	SkipNotConfigured = "gateway not configured"
	SkipLocked        = "sweep running elsewhere"
)

// SweepResult summarizes a polling sweep.
type SweepResult struct {
	Kind       model.GatewayKind
	Skipped    string
	Checked    int
	Reconciled int
	Failed     int
}

func (d *chargeDomain) Sweep(ctx context.Context, kind model.GatewayKind) (*SweepResult, error) {
	ctx, span := tracer.Start(ctx, "charge.Sweep")
	defer span.End()
	span.SetAttributes(attribute.String("gateway", kind.String()))

	result := &SweepResult{Kind: kind}

	// Push and pull are mutually exclusive per gateway.
	settings := d.settings.Settings(kind)
	if settings.PushEnabled() {
		result.Skipped = SkipPushEnabled
		return result, nil
	}
	if !settings.HasCredential() {
		result.Skipped = SkipNotConfigured
		return result, nil
	}

	gateway, err := d.gateway(kind)
	if err != nil {
		return nil, err
	}

	if d.sweepLock != nil {
		key := "charge:sweep:" + kind.String()
		locked, err := d.sweepLock.TryLock(ctx, key, d.config.PollLockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire sweep lock: %w", err)
		}
		if !locked {
			result.Skipped = SkipLocked
			return result, nil
		}
		defer func() {
			if err := d.sweepLock.Unlock(context.WithoutCancel(ctx), key); err != nil {
				d.logger.Warn("release sweep lock failed", zap.Error(err))
			}
		}()
	}

	since := d.now().Add(-d.config.PollWindow)
	artifacts, err := d.artifactDB.ListPollable(ctx, kind, since, d.config.PollBatchSize)
	if err != nil {
		return nil, fmt.Errorf("list pollable charges: %w", err)
	}

	for _, artifact := range artifacts {
		if ctx.Err() != nil {
			break
		}
		result.Checked++

		log := d.logger.With(
			zap.String("gateway", kind.String()),
			zap.String("order_id", artifact.OrderID.String()),
			zap.String("provider_ref", artifact.ProviderRef),
		)

		snapshot, err := gateway.Consult(ctx, artifact.ProviderRef)
		if err != nil {
			result.Failed++
			log.Warn("poll consult failed", zap.Error(err))
			continue
		}

		if _, err := d.Reconcile(ctx, artifact, snapshot, false); err != nil {
			result.Failed++
			log.Warn("poll reconcile failed", zap.Error(err))
			continue
		}
		result.Reconciled++
	}

	d.logger.Info("sweep finished",
		zap.String("gateway", kind.String()),
		zap.Int("checked", result.Checked),
		zap.Int("reconciled", result.Reconciled),
		zap.Int("failed", result.Failed))

	return result, nil
}
