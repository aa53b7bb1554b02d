package middleware

import (
	"strconv"
	"time"

	"github.com/flexprice/plancatalog/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request latency keyed by the matched route template
// so path parameters do not explode label cardinality
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
