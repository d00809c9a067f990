package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"blogmodapk-backend/internal/metrics"
)

// MetricsMiddleware records request counts and latency keyed by route template
// so path parameters do not explode label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
