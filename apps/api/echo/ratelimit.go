package echoapi

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTimeout = 3 * time.Minute

type (
	ipRateLimiter struct {
		mu        sync.Mutex
		limiters  map[string]*visitor
		limit     rate.Limit
		burst     int
		lastSweep time.Time
	}

	visitor struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
)

// newIPRateLimiter allows `rps` requests per second per client IP, with bursts of `burst`.
// A non-positive rps disables limiting.
func newIPRateLimiter(rps float64, burst int) *ipRateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &ipRateLimiter{
		limiters:  make(map[string]*visitor),
		limit:     limit,
		burst:     burst,
		lastSweep: time.Now(),
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	if l.limit == rate.Inf {
		return true
	}

	now := time.Now()
	l.mu.Lock()
	v, ok := l.limiters[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = v
	}
	v.lastSeen = now
	if now.Sub(l.lastSweep) > limiterIdleTimeout {
		l.sweep(now)
	}
	l.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// sweep drops visitors that have been idle; l.mu must be held.
func (l *ipRateLimiter) sweep(now time.Time) {
	for ip, v := range l.limiters {
		if now.Sub(v.lastSeen) > limiterIdleTimeout {
			delete(l.limiters, ip)
		}
	}
	l.lastSweep = now
}
