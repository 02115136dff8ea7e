package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	apperrors "github.com/houi19lb/Gstore-theme-sub001/internal/shared/errors"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/logger"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/metrics"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	defaultTimeout      = 20 * time.Second
	maxResponseBytes    = 1 << 20
	defaultErrorMessage = "provider request failed"
	invalidResponse     = "invalid response"
)

var tracer = otel.Tracer("github.com/houi19lb/Gstore-theme-sub001/internal/adapter/outbound/gateway")

// Options configures a provider client.
type Options struct {
	Kind    model.GatewayKind
	BaseURL string
	Token   string
	// BearerPrefix sends "Authorization: Bearer <token>" instead of the raw token.
	BearerPrefix bool
	Debug        bool
	Timeout      time.Duration

	FailureThreshold    uint32
	OpenTimeout         time.Duration
	MaxHalfOpenRequests uint32
}

// Response is a decoded 2xx provider response.
type Response struct {
	StatusCode int
	Body       []byte
	Fields     map[string]any
}

// Client performs authenticated JSON calls against one provider.
type Client struct {
	opts    Options
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*Response]
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewClient creates a provider client. metrics may be nil.
func NewClient(opts Options, httpClient *http.Client, m *metrics.Metrics, log *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = time.Minute
	}
	if opts.MaxHalfOpenRequests == 0 {
		opts.MaxHalfOpenRequests = 1
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	hc := *httpClient
	hc.Timeout = opts.Timeout

	c := &Client{
		opts:    opts,
		http:    &hc,
		metrics: m,
		logger:  log.Named("gateway").With(zap.String("gateway", opts.Kind.String())),
	}

	c.breaker = gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        opts.Kind.String(),
		MaxRequests: opts.MaxHalfOpenRequests,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.FailureThreshold
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			if c.metrics != nil {
				c.metrics.SetBreakerState(name, int(to))
			}
		},
	})

	return c
}

// Kind returns the gateway the client talks to.
func (c *Client) Kind() model.GatewayKind {
	return c.opts.Kind
}

// Do sends a request to BaseURL+path. body is JSON-encoded when non-nil.
func (c *Client) Do(ctx context.Context, op, method, path string, body any) (*Response, error) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("gateway.%s.%s", c.opts.Kind, op))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("gateway", c.opts.Kind.String()),
	)

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*Response, error) {
		return c.send(ctx, op, method, path, body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = &apperrors.TransportError{Op: op, Cause: "circuit open", Err: err}
	}

	outcome := outcomeOf(err)
	if c.metrics != nil {
		c.metrics.RecordGatewayRequest(c.opts.Kind.String(), op, outcome, time.Since(start))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}

func (c *Client) send(ctx context.Context, op, method, path string, body any) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	var reqBody []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = encoded
	}

	url := strings.TrimRight(c.opts.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.authorization())

	resp, err := c.http.Do(req)
	if err != nil {
		c.debug(method, path, 0, reqBody, nil)
		return nil, &apperrors.TransportError{Op: op, Cause: transportCause(err), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &apperrors.TransportError{Op: op, Cause: transportCause(err), Err: err}
	}
	c.debug(method, path, resp.StatusCode, reqBody, respBody)

	fields := decodeObject(respBody)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperrors.DomainError{StatusCode: resp.StatusCode, Message: errorMessage(fields)}
	}
	if fields == nil {
		return nil, &apperrors.DomainError{StatusCode: resp.StatusCode, Message: invalidResponse}
	}

	return &Response{StatusCode: resp.StatusCode, Body: respBody, Fields: fields}, nil
}

func (c *Client) authorization() string {
	if c.opts.BearerPrefix {
		return "Bearer " + c.opts.Token
	}
	return c.opts.Token
}

func (c *Client) debug(method, path string, status int, reqBody, respBody []byte) {
	if !c.opts.Debug {
		return
	}
	c.logger.Debug("provider request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.String("authorization", logger.Redact(c.opts.Token)),
		zap.ByteString("request_body", reqBody),
		zap.ByteString("response_body", respBody))
}

// decodeObject returns the body as a JSON object, or nil when it is not one.
func decodeObject(body []byte) map[string]any {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil
	}
	return fields
}

func errorMessage(fields map[string]any) string {
	for _, key := range []string{"message", "error"} {
		if s, ok := fields[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return defaultErrorMessage
}

func transportCause(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout: " + err.Error()
	}
	return err.Error()
}

// countsAsSuccess tells the breaker which errors are provider health failures.
// Rejections with a 4xx status say nothing about availability.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.StatusCode < 500
	}
	return !errors.Is(err, apperrors.ErrTransport)
}

func outcomeOf(err error) string {
	var transportErr *apperrors.TransportError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &transportErr) && transportErr.Cause == "circuit open":
		return "circuit_open"
	case errors.Is(err, apperrors.ErrTransport):
		return "transport_error"
	case errors.Is(err, apperrors.ErrProviderDomain):
		return "domain_error"
	default:
		return "error"
	}
}
