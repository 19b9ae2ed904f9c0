package retry

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func withFakeSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	orig := sleep
	sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	t.Cleanup(func() { sleep = orig })
	return &slept
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	slept := withFakeSleep(t)

	calls := 0
	err := Do(context.Background(), 3, Exponential(time.Second), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Empty(t, *slept)
}

func TestDo_RetriesWithExponentialBackoff(t *testing.T) {
	slept := withFakeSleep(t)

	calls := 0
	err := Do(context.Background(), 3, Exponential(time.Second), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	slept := withFakeSleep(t)

	boom := errors.New("boom")
	calls := 0
	err := Do(context.Background(), 3, Exponential(time.Second), func(context.Context) error {
		calls++
		return boom
	})
	require.Error(t, err)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 3, calls)
	require.Len(t, *slept, 2)
}

func TestDo_CanceledContextStopsWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Do(ctx, 5, Constant(time.Hour), func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestDo_RejectsZeroAttempts(t *testing.T) {
	err := Do(context.Background(), 0, Constant(0), func(context.Context) error { return nil })
	require.Error(t, err)
}
