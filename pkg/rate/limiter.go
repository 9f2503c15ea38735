// Package rate provides keyed token bucket limiters.
package rate

import (
	"math"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter limits operations per key
type Limiter interface {
	Allow(key string) (bool, error)
}

type keyedLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewKeyedLimiter returns an in memory Limiter allowing perSecond operations
// per key, with bursts of up to one second's worth. A non-positive rate
// disables limiting.
func NewKeyedLimiter(perSecond float64) Limiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}

	burst := int(math.Ceil(perSecond))
	if burst < 1 {
		burst = 1
	}

	return &keyedLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *keyedLimiter) Allow(key string) (bool, error) {
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow(), nil
}
