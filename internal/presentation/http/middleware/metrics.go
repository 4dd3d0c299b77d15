package middleware

import (
	"time"

	"github.com/bumisubur/pos-gateway/internal/infrastructure/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware counts requests by route template.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
