package ipc

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxTrackedPrincipals bounds the limiter map; full buckets are forgotten
// once it is exceeded.
const maxTrackedPrincipals = 1024

// principalLimiter rate limits new sessions per user with a token bucket.
type principalLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// newPrincipalLimiter allows perMinute sessions per user with the given
// burst. A non-positive rate disables limiting.
func newPrincipalLimiter(perMinute float64, burst int) *principalLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &principalLimiter{
		limit:    rate.Limit(perMinute / time.Minute.Seconds()),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *principalLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxTrackedPrincipals {
			l.sweep()
		}
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	return limiter.Allow()
}

func (l *principalLimiter) sweep() {
	for key, limiter := range l.limiters {
		if limiter.Tokens() >= float64(l.burst) {
			delete(l.limiters, key)
		}
	}
}
