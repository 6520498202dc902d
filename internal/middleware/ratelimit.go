package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/shopradar/price-finder-api/internal/config"
)

// Entries untouched for this long are dropped on the next sweep, so the
// per-caller map stays bounded by the set of recently active clients.
const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterPool hands out one token bucket per caller and sweeps idle entries.
type limiterPool struct {
	mu        sync.Mutex
	perToken  time.Duration
	burst     int
	idleTTL   time.Duration
	now       func() time.Time
	lastSweep time.Time
	entries   map[string]*limiterEntry
}

func newLimiterPool(perToken time.Duration, burst int, idleTTL time.Duration) *limiterPool {
	return &limiterPool{
		perToken: perToken,
		burst:    burst,
		idleTTL:  idleTTL,
		now:      time.Now,
		entries:  make(map[string]*limiterEntry),
	}
}

// get returns the caller's limiter, creating one on first sight. At most one
// full sweep runs per idleTTL window.
func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if now.Sub(p.lastSweep) >= p.idleTTL {
		for k, e := range p.entries {
			if now.Sub(e.lastSeen) >= p.idleTTL {
				delete(p.entries, k)
			}
		}
		p.lastSweep = now
	}

	e, ok := p.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(p.perToken), p.burst)}
		p.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// RateLimit applies a per-caller token bucket to the routes it is mounted
// on. Callers are keyed by client IP. A zero configuration disables the
// limiter entirely.
func RateLimit(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	perToken := cfg.Interval / time.Duration(cfg.Requests)
	if perToken <= 0 {
		perToken = time.Second
	}

	pool := newLimiterPool(perToken, cfg.Requests, limiterIdleTTL)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !pool.get(c.RealIP()).Allow() {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
