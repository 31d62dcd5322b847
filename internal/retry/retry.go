// Package retry runs API operations with bounded exponential backoff.
//
// Authorization failures are never retried so the session teardown triggered
// by the HTTP client happens on the first 401.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/juju/clock"
	jujuretry "github.com/juju/retry"

	"losadmin/internal/obs"
	"losadmin/internal/utils/logger"
)

// ErrNoResult is returned when every attempt failed with a retryable error.
// Callers report it as {ok: false}.
var ErrNoResult = errors.New("no result after retries")

const (
	DefaultAttempts = 3
	DefaultDelay    = 500 * time.Millisecond
)

var log = logger.New("retry")

// Policy bounds how long a failing operation is pursued.
type Policy struct {
	Attempts int
	Delay    time.Duration
	Clock    clock.Clock
	// IsFatal reports errors that must be returned immediately.
	IsFatal func(error) bool
	Metrics *obs.Metrics
}

// DefaultPolicy is three attempts, waiting 500ms then 1000ms, on the wall clock.
func DefaultPolicy(isFatal func(error) bool) Policy {
	return Policy{
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
		Clock:    clock.WallClock,
		IsFatal:  isFatal,
	}
}

func (p Policy) withDefaults() Policy {
	if p.Attempts < 1 {
		p.Attempts = DefaultAttempts
	}
	if p.Delay <= 0 {
		p.Delay = DefaultDelay
	}
	if p.Clock == nil {
		p.Clock = clock.WallClock
	}
	return p
}

// Do calls op until it succeeds or the attempts run out. A fatal error is
// returned unchanged. Any other failure on the last attempt, or a cancelled
// context, yields ErrNoResult.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	var (
		result  T
		lastErr error
	)
	err := jujuretry.Call(jujuretry.CallArgs{
		Func: func() error {
			v, err := op(ctx)
			if err != nil {
				lastErr = err
				return err
			}
			result = v
			return nil
		},
		IsFatalError: func(err error) bool {
			return p.IsFatal != nil && p.IsFatal(err)
		},
		NotifyFunc: func(err error, attempt int) {
			if attempt < p.Attempts {
				p.Metrics.ObserveRetry()
				log.Debug("attempt %d failed, backing off: %v", attempt, err)
			}
		},
		Attempts:    p.Attempts,
		Delay:       p.Delay,
		BackoffFunc: jujuretry.DoubleDelay,
		Clock:       p.Clock,
		Stop:        ctx.Done(),
	})
	if err == nil {
		return result, nil
	}

	var zero T
	if p.IsFatal != nil && lastErr != nil && p.IsFatal(lastErr) {
		return zero, lastErr
	}
	p.Metrics.ObserveExhausted()
	log.Warn("giving up after %d attempts: %v", p.Attempts, lastErr)
	return zero, ErrNoResult
}
