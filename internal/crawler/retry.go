package crawler

import "time"

// Default retry policy values.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second
	DefaultMaxDelay    = 30 * time.Second
)

// RetryPolicy bounds re-fetch attempts with exponential backoff.
// MaxAttempts counts every attempt, the first included: a policy with
// MaxAttempts=2 gives up after two failed attempts even if a third
// would have succeeded.
type RetryPolicy struct {
	// MaxAttempts is the total attempt ceiling.
	MaxAttempts int

	// BaseDelay is the delay after the first failed attempt.
	BaseDelay time.Duration

	// MaxDelay caps the exponential growth.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns the production policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
	}
}

// NextDelay returns the backoff before retry number attempt (1-based:
// attempt 1 is the delay after the first failure). Pure function so the
// backoff curve is testable without a clock.
func (p RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}
