package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	goCache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	appErrors "github.com/noah-isme/unitrack-api/pkg/errors"
	"github.com/noah-isme/unitrack-api/pkg/response"
)

const limiterIdleTTL = 10 * time.Minute

// RateLimiter throttles requests per client IP. Idle limiters expire.
type RateLimiter struct {
	limiters *goCache.Cache
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter allowing rps requests per second with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: goCache.New(limiterIdleTTL, limiterIdleTTL),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if existing, ok := rl.limiters.Get(key); ok {
		limiter := existing.(*rate.Limiter)
		rl.limiters.Set(key, limiter, goCache.DefaultExpiration)
		return limiter
	}
	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters.Set(key, limiter, goCache.DefaultExpiration)
	return limiter
}

// Allow reports whether key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiter(key).Allow()
}

// Handler returns gin middleware keyed on the client IP. A nil limiter or a
// non-positive rate disables throttling.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.rate <= 0 {
			c.Next()
			return
		}
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(rl.rate)))
			response.Error(c, appErrors.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}

func retryAfterSeconds(r rate.Limit) int {
	if r <= 0 || r >= 1 {
		return 1
	}
	return int(1/float64(r) + 0.5)
}
