package crawler

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultFetchInterval is the minimum spacing between outbound fetches.
const DefaultFetchInterval = 500 * time.Millisecond

// RateLimiter enforces minimum inter-request spacing for outbound
// fetches. One instance is shared process-wide so politeness holds
// across concurrent ingestion runs; it is injected into each Crawler
// rather than accessed as a singleton so tests can substitute a
// no-delay instance.
type RateLimiter struct {
	bucket *rate.Limiter
}

// NewRateLimiter creates a limiter with the given minimum interval
// between requests. A non-positive interval disables spacing (useful in
// tests).
func NewRateLimiter(interval time.Duration) *RateLimiter {
	if interval <= 0 {
		return &RateLimiter{bucket: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimiter{bucket: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request may be sent or the context is
// cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.bucket.Wait(ctx)
}
