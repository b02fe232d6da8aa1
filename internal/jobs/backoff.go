package jobs

import (
	"math"
	"time"
)

// BackoffFunc computes the delay before a retry. attempt is 0-indexed
// at the first retry.
type BackoffFunc func(attempt int) time.Duration

// Exponential doubles base per attempt: base, 2*base, 4*base, ...
// capped at max (0 means uncapped).
func Exponential(base, max time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		if attempt < 0 {
			attempt = 0
		}
		d := base << uint(attempt)
		// An overflowed shift saturates at the longest representable
		// delay; it must never shrink below earlier attempts.
		if attempt > 62 || d < base {
			d = time.Duration(math.MaxInt64)
		}
		if max > 0 && d > max {
			d = max
		}
		return d
	}
}

// Fixed delays every retry by d.
func Fixed(d time.Duration) BackoffFunc {
	return func(int) time.Duration {
		return d
	}
}

// RetryDelay resolves the policy's delay before the given retry.
// A nil Backoff means retry immediately.
func (p Policy) RetryDelay(attempt int) time.Duration {
	if p.Backoff == nil {
		return 0
	}
	return p.Backoff(attempt)
}
