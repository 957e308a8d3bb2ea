package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/roach88/vitrine/internal/catalog"
	"github.com/roach88/vitrine/internal/listing"
)

// AccessLog writes one line per request.
func AccessLog(log *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("request_id", RequestIDFrom(c)).
			Msg("request")
	}
}

// visitor is one client's token bucket.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps a token bucket per client IP. Buckets idle for
// longer than ExpiresIn are dropped by Sweep.
type IPRateLimiter struct {
	limit     rate.Limit
	burst     int
	expiresIn time.Duration
	now       func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewIPRateLimiter allows rps requests per second per IP with the given
// burst.
func NewIPRateLimiter(rps float64, burst int, expiresIn time.Duration) *IPRateLimiter {
	if burst < 1 {
		burst = 1
	}
	if expiresIn <= 0 {
		expiresIn = 3 * time.Minute
	}
	return &IPRateLimiter{
		limit:     rate.Limit(rps),
		burst:     burst,
		expiresIn: expiresIn,
		now:       time.Now,
		visitors:  make(map[string]*visitor),
	}
}

// Allow reports whether ip may make a request now.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Sweep drops idle buckets and returns how many were removed.
func (l *IPRateLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.expiresIn)
	removed := 0
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
			removed++
		}
	}
	return removed
}

// Len is the number of tracked clients.
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Middleware rejects requests over budget with 429.
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, catalog.ErrorBody{
				Error: "rate limit exceeded",
				Code:  string(listing.ErrCodeRateLimited),
			})
			return
		}
		c.Next()
	}
}
