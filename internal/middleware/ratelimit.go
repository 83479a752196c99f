package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rideshare/internal/redis"
)

// RateLimitMiddleware returns middleware that throttles mutating
// requests per user with a sliding window. Redis failures fail open.
func RateLimitMiddleware(limiter redis.RateLimiterInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.Next()
			return
		}

		key := userID + ":write"
		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			// Limiter outage should not take writes down with it.
			c.Next()
			return
		}

		if !allowed {
			seconds := int(retryAfter / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		c.Next()
	}
}
