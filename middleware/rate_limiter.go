// middleware/rate_limiter.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

type RateLimiter struct {
	ips            map[string]*rate.Limiter
	mu             sync.RWMutex
	defaultLimit   rate.Limit
	defaultBurst   int
	endpointLimits map[string]endpointLimit
}

func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		ips:            make(map[string]*rate.Limiter),
		defaultLimit:   rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:   20,
		endpointLimits: make(map[string]endpointLimit),
	}

	// Strict limits on credential endpoints to slow brute forcing
	limiter.endpointLimits["/api/ambassador/login"] = endpointLimit{
		limit: rate.Every(2 * time.Second),
		burst: 5,
	}
	limiter.endpointLimits["/api/admin/login"] = endpointLimit{
		limit: rate.Every(2 * time.Second),
		burst: 5,
	}
	limiter.endpointLimits["/api/ambassador/signup"] = endpointLimit{
		limit: rate.Every(500 * time.Millisecond),
		burst: 5,
	}

	go limiter.cleanup()

	return limiter
}

func (rl *RateLimiter) getLimiter(ip, path string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	key := ip + path
	if limiter, exists := rl.ips[key]; exists {
		return limiter
	}

	lim := rl.defaultLimit
	burst := rl.defaultBurst
	if el, ok := rl.endpointLimits[path]; ok {
		lim = el.limit
		burst = el.burst
	}

	limiter := rate.NewLimiter(lim, burst)
	rl.ips[key] = limiter
	return limiter
}

// cleanup drops all per-IP limiters periodically so the map cannot grow
// without bound.
func (rl *RateLimiter) cleanup() {
	for {
		time.Sleep(10 * time.Minute)
		rl.mu.Lock()
		rl.ips = make(map[string]*rate.Limiter)
		rl.mu.Unlock()
	}
}

// RateLimit returns the echo middleware enforcing the per-IP limits
func (rl *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := rl.getLimiter(c.RealIP(), c.Path())
			if !limiter.Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please slow down")
			}
			return next(c)
		}
	}
}
