package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Gateway metrics
	GatewayRequestsTotal   *prometheus.CounterVec
	GatewayRequestDuration *prometheus.HistogramVec
	GatewayBreakerState    *prometheus.GaugeVec

	// Charge metrics
	ChargesCreatedTotal    *prometheus.CounterVec
	WebhookDeliveriesTotal *prometheus.CounterVec
	ReconcileActionsTotal  *prometheus.CounterVec
	SweepRunsTotal         *prometheus.CounterVec
	SweepOrdersTotal       *prometheus.CounterVec
}

// New creates a new Metrics instance registered on reg.
// A nil reg uses the default Prometheus registry.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "gstore"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		// Gateway metrics
		GatewayRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Total number of payment provider requests",
			},
			[]string{"gateway", "operation", "outcome"},
		),
		GatewayRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Payment provider request duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
			},
			[]string{"gateway", "operation"},
		),
		GatewayBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "breaker_state",
				Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"gateway"},
		),

		// Charge metrics
		ChargesCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "charge",
				Name:      "created_total",
				Help:      "Total number of charge creation attempts",
			},
			[]string{"gateway", "outcome"},
		),
		WebhookDeliveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "charge",
				Name:      "webhook_deliveries_total",
				Help:      "Total number of webhook deliveries by response status",
			},
			[]string{"gateway", "status"},
		),
		ReconcileActionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "charge",
				Name:      "reconcile_actions_total",
				Help:      "Total number of reconciliations by action and whether the order moved",
			},
			[]string{"gateway", "action", "transitioned"},
		),
		SweepRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "charge",
				Name:      "sweep_runs_total",
				Help:      "Total number of polling sweeps by outcome",
			},
			[]string{"gateway", "outcome"},
		),
		SweepOrdersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "charge",
				Name:      "sweep_orders_total",
				Help:      "Total number of orders checked by polling sweeps",
			},
			[]string{"gateway", "result"},
		),
	}
}

// --- Convenience methods ---

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := statusCodeToString(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordGatewayRequest records a payment provider call.
func (m *Metrics) RecordGatewayRequest(gateway, operation, outcome string, duration time.Duration) {
	m.GatewayRequestsTotal.WithLabelValues(gateway, operation, outcome).Inc()
	m.GatewayRequestDuration.WithLabelValues(gateway, operation).Observe(duration.Seconds())
}

// SetBreakerState sets the circuit breaker state of a gateway.
func (m *Metrics) SetBreakerState(gateway string, state int) {
	m.GatewayBreakerState.WithLabelValues(gateway).Set(float64(state))
}

// RecordChargeCreated records a charge creation attempt.
func (m *Metrics) RecordChargeCreated(gateway, outcome string) {
	m.ChargesCreatedTotal.WithLabelValues(gateway, outcome).Inc()
}

// RecordWebhookDelivery records a webhook delivery and the status it was answered with.
func (m *Metrics) RecordWebhookDelivery(gateway string, status int) {
	m.WebhookDeliveriesTotal.WithLabelValues(gateway, statusCodeToString(status)).Inc()
}

// RecordReconcile records a reconciliation.
func (m *Metrics) RecordReconcile(gateway, action string, transitioned bool) {
	t := "false"
	if transitioned {
		t = "true"
	}
	m.ReconcileActionsTotal.WithLabelValues(gateway, action, t).Inc()
}

// RecordSweep records a polling sweep.
func (m *Metrics) RecordSweep(gateway, outcome string, reconciled, failed int) {
	m.SweepRunsTotal.WithLabelValues(gateway, outcome).Inc()
	if reconciled > 0 {
		m.SweepOrdersTotal.WithLabelValues(gateway, "reconciled").Add(float64(reconciled))
	}
	if failed > 0 {
		m.SweepOrdersTotal.WithLabelValues(gateway, "failed").Add(float64(failed))
	}
}

// statusCodeToString converts an HTTP status code to a string category.
func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
