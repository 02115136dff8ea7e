package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newTestMetrics() *Metrics {
	return New("test", prometheus.NewRegistry())
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	m := newTestMetrics()

	m.RecordHTTPRequest("POST", "/webhooks/pix", 200, 10*time.Millisecond)
	m.RecordHTTPRequest("POST", "/webhooks/pix", 401, 5*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/webhooks/pix", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/webhooks/pix", "4xx")))
}

func TestMetrics_RecordGatewayRequest(t *testing.T) {
	m := newTestMetrics()

	m.RecordGatewayRequest("pix", "create", "success", 100*time.Millisecond)
	m.RecordGatewayRequest("pix", "create", "transport_error", 20*time.Second)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.GatewayRequestsTotal.WithLabelValues("pix", "create", "success")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.GatewayRequestsTotal))
}

func TestMetrics_RecordSweep(t *testing.T) {
	m := newTestMetrics()

	m.RecordSweep("linkcheckout", "completed", 3, 1)
	m.RecordSweep("linkcheckout", "skipped", 0, 0)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.SweepOrdersTotal.WithLabelValues("linkcheckout", "reconciled")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SweepOrdersTotal.WithLabelValues("linkcheckout", "failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SweepRunsTotal.WithLabelValues("linkcheckout", "skipped")))
}

func TestMetrics_RecordReconcile(t *testing.T) {
	m := newTestMetrics()

	m.RecordReconcile("pix", "mark_paid", true)
	m.RecordReconcile("pix", "mark_paid", false)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ReconcileActionsTotal.WithLabelValues("pix", "mark_paid", "true")))
}

func TestStatusCodeToString(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{200, "2xx"},
		{302, "3xx"},
		{404, "4xx"},
		{502, "5xx"},
		{0, "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, statusCodeToString(tt.code))
	}
}
