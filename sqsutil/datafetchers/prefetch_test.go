package datafetchers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestWaitUntilFirstResult verifies that WaitUntilFirstResult blocks until the first result is available
// and that Get returns the fetched value afterwards.
func TestWaitUntilFirstResult(t *testing.T) {
	updateFn := func(ctx context.Context) (int, error) {
		time.Sleep(200 * time.Millisecond)
		return 42, nil
	}

	start := time.Now()
	p := NewIntervalFetcher(context.Background(), updateFn, time.Hour, nil)
	defer p.Close()

	v, timestamp, err := p.Get()
	require.ErrorIs(t, err, ErrNoValueRetrieved)
	require.Equal(t, 0, v)
	require.Equal(t, time.Time{}, timestamp)

	require.NoError(t, p.WaitUntilFirstResult(context.Background()))
	requireTimeDurationInRange(t, time.Since(start), 200*time.Millisecond, 2*time.Second)

	v, timestamp, err = p.Get()
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.False(t, timestamp.IsZero())
}

func TestIntervalFetcher_OnUpdateAndErrors(t *testing.T) {
	var (
		calls   atomic.Int64
		updates atomic.Int64
	)

	updateFn := func(ctx context.Context) (int64, error) {
		n := calls.Add(1)
		if n%2 == 0 {
			return 0, errors.New("transient")
		}
		return n, nil
	}

	p := NewIntervalFetcher(context.Background(), updateFn, 10*time.Millisecond, func(ctx context.Context, value int64) {
		updates.Add(1)
	})

	require.Eventually(t, func() bool { return calls.Load() >= 5 }, 2*time.Second, 5*time.Millisecond)
	p.Close()

	// only successful fetches notify
	require.Less(t, updates.Load(), calls.Load())
	require.Greater(t, updates.Load(), int64(0))

	_, _, err := p.Get()
	require.ErrorIs(t, err, ErrFetcherClosed)
	require.Equal(t, 10*time.Millisecond, p.GetRefetchInterval())
}

func TestWaitUntilFirstResult_ContextDone(t *testing.T) {
	updateFn := func(ctx context.Context) (int, error) {
		return 0, errors.New("always fails")
	}

	p := NewIntervalFetcher(context.Background(), updateFn, time.Hour, nil)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, p.WaitUntilFirstResult(ctx), context.DeadlineExceeded)
}

func requireTimeDurationInRange(t *testing.T, d time.Duration, min time.Duration, max time.Duration) {
	require.True(t, d >= min, "Duration %s is less than min %s", d, min)
	require.True(t, d <= max, "Duration %s is greater than max %s", d, max)
}
