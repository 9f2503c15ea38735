// Package backoff provides delay schedules for retry.
package backoff

import (
	"math"
	"time"
)

// Strategy returns how long to wait after the given attempt, starting at 1
type Strategy func(attempts uint) time.Duration

// Exponential grows the delay by base each attempt: baseDelay * base^(attempts-1).
// Delays that overflow saturate at the maximum duration.
func Exponential(baseDelay time.Duration, base float64) Strategy {
	return func(attempts uint) time.Duration {
		delay := float64(baseDelay) * math.Pow(base, float64(attempts-1))
		if delay >= math.MaxInt64 || delay < 0 {
			return math.MaxInt64
		}
		return time.Duration(delay)
	}
}

// BinaryExponential doubles the delay each attempt.
// Ex. BinaryExponential(10*time.Millisecond) = 10ms, 20ms, 40ms, 80ms, ...
func BinaryExponential(baseDelay time.Duration) Strategy {
	return Exponential(baseDelay, 2)
}
