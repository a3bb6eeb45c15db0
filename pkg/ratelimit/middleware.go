package ratelimit

import (
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// maxClientIDLength limits key length taken from the request.
const maxClientIDLength = 128

// Middleware limits requests per client IP for the routes it guards. When the
// limit is hit, onLimited renders the rejection. Limiter errors let the
// request through.
func Middleware(limiter Limiter, name string, limit int, window time.Duration, onLimited gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		clientID := c.ClientIP()
		if len(clientID) > maxClientIDLength {
			clientID = clientID[:maxClientIDLength]
		}
		key := name + ":" + clientID

		result, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			log.Printf("[RateLimit] Check failed for %s, allowing request: %v", key, err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			log.Printf("[RateLimit] Limit exceeded for %s, resets at %s", key, result.ResetAt.Format(time.RFC3339))
			retryAfter := int(time.Until(result.ResetAt).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(max(retryAfter, 1)))
			onLimited(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
