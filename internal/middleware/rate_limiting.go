package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware limits request rate per client IP. A nil manager disables it.
func RateLimitMiddleware(manager *RateLimitManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager == nil || shouldBypassRateLimit(c) {
			c.Next()
			return
		}

		if !manager.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}

func shouldBypassRateLimit(c *gin.Context) bool {
	switch c.Request.URL.Path {
	case "/health", "/metrics":
		return true
	}
	return false
}
