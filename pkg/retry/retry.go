// Package retry runs actions until they succeed or a strategy gives up.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/code-payments/bucky-bank-server/pkg/retry/backoff"
)

// Action is a function to be performed in a retriable manner.
type Action func() error

// Strategy decides whether a failed action is attempted again. attempts is
// the number of times the action has run so far. Strategies may block, which
// is how delays are introduced.
type Strategy func(attempts uint, err error) bool

// Retry runs action until it succeeds or a strategy returns false, in which
// case the last error is returned with the number of attempts made.
//
// Strategies are evaluated in order and evaluation stops at the first one
// that refuses, so delaying strategies belong at the end.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	for attempts := uint(1); ; attempts++ {
		err := action()
		if err == nil {
			return attempts, nil
		}

		for _, strategy := range strategies {
			if !strategy(attempts, err) {
				return attempts, err
			}
		}
	}
}

// Limit allows at most maxAttempts runs of the action
func Limit(maxAttempts uint) Strategy {
	return func(attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors only retries errors matching one of targets via errors.Is
func RetriableErrors(targets ...error) Strategy {
	return func(_ uint, err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
}

// Deadline stops retrying once deadline has passed
func Deadline(deadline time.Time) Strategy {
	return func(uint, error) bool {
		return now().Before(deadline)
	}
}

// Context stops retrying once ctx is done
func Context(ctx context.Context) Strategy {
	return func(uint, error) bool {
		return ctx.Err() == nil
	}
}

// BackoffWithJitter sleeps before the next attempt. The delay from strategy is
// capped at maxBackoff and then randomised by +/- jitter (a fraction of the
// capped delay), so 100ms with a jitter of 0.1 sleeps between 90ms and 110ms.
func BackoffWithJitter(strategy backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	return func(attempts uint, _ error) bool {
		delay := strategy(attempts)
		if delay > maxBackoff {
			delay = maxBackoff
		}

		sleep(time.Duration(float64(delay) * (1 + jitter*(2*rand.Float64()-1))))
		return true
	}
}

var (
	sleep = time.Sleep
	now   = time.Now
)
