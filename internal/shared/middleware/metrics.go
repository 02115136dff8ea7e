package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/metrics"
)

// Metrics records request count and latency per route template.
// Routes listed in skip (scrape and health endpoints) are not recorded.
func Metrics(m *metrics.Metrics, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, route := range skip {
		skipped[route] = struct{}{}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if _, ok := skipped[route]; ok {
			c.Next()
			return
		}
		if route == "" {
			route = "unmatched"
		}

		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		c.Next()
		m.HTTPRequestsInFlight.Dec()

		m.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
