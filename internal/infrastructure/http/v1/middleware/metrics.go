package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver records request metrics.
type HTTPObserver interface {
	ObserveHTTP(method, path string, status int, latency time.Duration)
}

// Metrics middleware reports every request to obs. Unmatched routes are
// grouped under one label to keep cardinality bounded.
func Metrics(obs HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		obs.ObserveHTTP(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
