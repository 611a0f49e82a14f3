package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	ierr "github.com/mkrhub/controlhub/internal/errors"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 15 * time.Minute

// RateLimitMiddleware throttles a route per client ip with a token bucket of
// perMinute requests and a burst of the same size. A non positive rate
// disables the limiter.
func RateLimitMiddleware(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	limiters := gocache.New(limiterIdleTTL, limiterIdleTTL)
	every := rate.Every(time.Minute / time.Duration(perMinute))

	return func(c *gin.Context) {
		key := c.ClientIP()

		limiter := rate.NewLimiter(every, perMinute)
		if err := limiters.Add(key, limiter, limiterIdleTTL); err != nil {
			if existing, ok := limiters.Get(key); ok {
				limiter = existing.(*rate.Limiter)
			}
		}

		if !limiter.Allow() {
			c.Header("Retry-After", "60")
			c.Error(ierr.NewError("rate limit exceeded").
				WithHint("Too many attempts, please wait a minute and try again").
				WithReportableDetails(map[string]any{
					"limit_per_minute": perMinute,
				}).
				Mark(ierr.ErrTooManyRequests))
			c.Abort()
			return
		}

		c.Next()
	}
}
