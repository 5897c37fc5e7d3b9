package vendors

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiterRegistry hands out one outbound limiter per tenant so a noisy
// tenant cannot exhaust another tenant's vendor rate budget.
type RateLimiterRegistry struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func NewRateLimiterRegistry(requestsPerSecond, burst int) *RateLimiterRegistry {
	return &RateLimiterRegistry{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (r *RateLimiterRegistry) LimiterFor(tenantID string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limiter, ok := r.limiters[tenantID]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(r.rps, r.burst)
	r.limiters[tenantID] = limiter
	return limiter
}
