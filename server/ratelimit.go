package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipRateLimiter keeps one token bucket per client IP. Idle buckets are dropped lazily.
type ipRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	lastSeen  map[string]time.Time
	r         rate.Limit
	burst     int
	evictTTL  time.Duration
	lastSweep time.Time
}

func newIPRateLimiter(r rate.Limit, burst int, evictTTL time.Duration) *ipRateLimiter {
	return &ipRateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		lastSeen:  make(map[string]time.Time),
		r:         r,
		burst:     burst,
		evictTTL:  evictTTL,
		lastSweep: time.Now(),
	}
}

// Allow reports whether the given IP is within its rate limit.
func (rl *ipRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > rl.evictTTL {
		rl.sweep(now)
	}
	l, ok := rl.limiters[ip]
	if !ok {
		l = rate.NewLimiter(rl.r, rl.burst)
		rl.limiters[ip] = l
	}
	rl.lastSeen[ip] = now
	return l.Allow()
}

func (rl *ipRateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-rl.evictTTL)
	for ip, last := range rl.lastSeen {
		if last.Before(cutoff) {
			delete(rl.limiters, ip)
			delete(rl.lastSeen, ip)
		}
	}
	rl.lastSweep = now
}

// RateLimitMiddleware applies the per-IP login limiter. It is a no-op when limiting is off.
func (s *Server) RateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next(w, r)
			return
		}
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		if !s.limiter.Allow(ip) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next(w, r)
	}
}
