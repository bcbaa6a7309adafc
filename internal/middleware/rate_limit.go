// internal/middleware/rate_limit.go
package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/kisanexport/storefront/internal/utils"
)

const visitorIdleTimeout = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP. Separate limiters
// guard the general API, the auth endpoints and uploads.
type RateLimiter struct {
	name     string
	rate     rate.Limit
	burst    int
	mtx      sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

func NewRateLimiter(name string, r rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		name:     name,
		rate:     r,
		burst:    max(burst, 1),
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// PerMinute builds a limiter allowing n requests a minute with a burst of n.
func PerMinute(name string, n int) *RateLimiter {
	n = max(n, 1)
	return NewRateLimiter(name, rate.Every(time.Minute/time.Duration(n)), n)
}

// Run evicts idle visitors every minute until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.evict(now.Add(-visitorIdleTimeout))
		}
	}
}

func (rl *RateLimiter) evict(before time.Time) {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(before) {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mtx.Lock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = rl.now()
	rl.mtx.Unlock()

	return v.limiter.AllowN(v.lastSeen, 1)
}

// retryAfter is the whole number of seconds until one token refills.
func (rl *RateLimiter) retryAfter() int {
	if rl.rate <= 0 || rl.rate == rate.Inf {
		return 1
	}
	// The epsilon absorbs float error from rate.Every.
	return int(math.Max(1, math.Ceil(1/float64(rl.rate)-1e-9)))
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.allow(ip) {
			logrus.WithFields(logrus.Fields{
				"limiter": rl.name,
				"ip":      ip,
				"path":    c.Request.URL.Path,
			}).Warn("Rate limit exceeded")
			c.Header("Retry-After", strconv.Itoa(rl.retryAfter()))
			utils.TooManyRequestsResponse(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Noop lets every request through; used when rate limiting is disabled.
func Noop() gin.HandlerFunc {
	return func(c *gin.Context) { c.Next() }
}
