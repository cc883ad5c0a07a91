package retry

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrExhausted is returned by Poll when every attempt completed without
// fn reporting done. Callers decide whether exhaustion is an error; a
// transaction that outlives the polling window is not.
var ErrExhausted = errors.New("polling attempts exhausted")

// Clock abstracts time for the poller so exhaustion and early-exit paths
// are reachable in unit tests without wall-clock delay.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	case <-timer.C:
		return nil
	}
}

// SystemClock sleeps on a real timer, waking early on context cancellation.
var SystemClock Clock = systemClock{}

// Policy is a bounded fixed-interval poll: fn runs once per attempt, and
// the poller sleeps Interval between attempts. There is no backoff; the
// cadence is part of the contract with callers.
type Policy struct {
	Interval    time.Duration
	MaxAttempts int
	Clock       Clock // defaults to SystemClock
}

// Poll invokes fn up to MaxAttempts times. fn returning done=true ends the
// loop immediately with a nil error; a non-nil error from fn aborts the
// loop and is returned as-is. Exhausting all attempts returns ErrExhausted.
func (p Policy) Poll(ctx context.Context, fn func(ctx context.Context, attempt int) (done bool, err error)) error {
	clock := p.Clock
	if clock == nil {
		clock = SystemClock
	}
	if p.MaxAttempts <= 0 {
		return errors.WithStack(ErrExhausted)
	}

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		done, err := fn(ctx, attempt)
		if err != nil {
			return errors.WithStack(err)
		}
		if done {
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}
		if err := clock.Sleep(ctx, p.Interval); err != nil {
			return errors.WithStack(err)
		}
	}
	return errors.WithStack(ErrExhausted)
}
