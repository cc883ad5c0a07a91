package retry

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	sleeps []time.Duration
}

func (f *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	f.sleeps = append(f.sleeps, d)
	return nil
}

func TestPollEarlyExit(t *testing.T) {
	clock := &fakeClock{}
	policy := Policy{Interval: 5 * time.Second, MaxAttempts: 60, Clock: clock}

	var attempts int
	err := policy.Poll(context.Background(), func(_ context.Context, attempt int) (bool, error) {
		attempts = attempt
		return attempt == 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	// slept between attempts only, never after the exit
	assert.Len(t, clock.sleeps, 2)
	assert.Equal(t, 5*time.Second, clock.sleeps[0])
}

func TestPollExhaustion(t *testing.T) {
	clock := &fakeClock{}
	policy := Policy{Interval: 5 * time.Second, MaxAttempts: 60, Clock: clock}

	var attempts int
	err := policy.Poll(context.Background(), func(_ context.Context, attempt int) (bool, error) {
		attempts = attempt
		return false, nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 60, attempts)
	// no sleep after the final attempt
	assert.Len(t, clock.sleeps, 59)
}

func TestPollFatalError(t *testing.T) {
	clock := &fakeClock{}
	policy := Policy{Interval: time.Second, MaxAttempts: 10, Clock: clock}

	fatal := errors.New("boom")
	err := policy.Poll(context.Background(), func(_ context.Context, attempt int) (bool, error) {
		if attempt == 2 {
			return false, fatal
		}
		return false, nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, fatal)
}

func TestPollContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	policy := Policy{Interval: time.Second, MaxAttempts: 10}
	err := policy.Poll(ctx, func(_ context.Context, _ int) (bool, error) {
		return false, nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollZeroAttempts(t *testing.T) {
	policy := Policy{Interval: time.Second}
	err := policy.Poll(context.Background(), func(_ context.Context, _ int) (bool, error) {
		t.Fatal("fn must not run with zero attempts")
		return false, nil
	})
	assert.ErrorIs(t, err, ErrExhausted)
}
