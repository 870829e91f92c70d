package cache_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/osmosis-labs/poolrouter/domain/cache"
)

func TestCache_SetGet(t *testing.T) {
	tests := []struct {
		name           string
		key            string
		value          interface{}
		expiration     time.Duration
		sleep          time.Duration
		expectedExists bool
		expectedValue  interface{}
	}{
		{
			name:           "No expiration",
			key:            "key1",
			value:          "value1",
			expiration:     0,
			expectedExists: true,
			expectedValue:  "value1",
		},
		{
			name:           "Not yet expired",
			key:            "key2",
			value:          2,
			expiration:     time.Hour,
			expectedExists: true,
			expectedValue:  2,
		},
		{
			name:           "Expired",
			key:            "key3",
			value:          "value3",
			expiration:     time.Millisecond,
			sleep:          5 * time.Millisecond,
			expectedExists: false,
			expectedValue:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cache.New()
			c.Set(tt.key, tt.value, tt.expiration)

			time.Sleep(tt.sleep)

			value, exists := c.Get(tt.key)
			require.Equal(t, tt.expectedExists, exists)
			require.Equal(t, tt.expectedValue, value)
		})
	}
}

func TestCache_DeleteAndDeleteExpired(t *testing.T) {
	c := cache.New()
	c.Set("keep", 1, 0)
	c.Set("expire", 2, time.Millisecond)
	c.Set("delete", 3, 0)

	c.Delete("delete")
	_, exists := c.Get("delete")
	require.False(t, exists)

	time.Sleep(5 * time.Millisecond)
	c.DeleteExpired()

	require.Equal(t, 1, c.Len())
	value, exists := c.Get("keep")
	require.True(t, exists)
	require.Equal(t, 1, value)
}

func TestMemo_GetOrCompute(t *testing.T) {
	memo := cache.NewMemo[string, []int](4)

	calls := 0
	compute := func() ([]int, error) {
		calls++
		return []int{calls}, nil
	}

	first, hit, err := memo.GetOrCompute(0, "a", compute)
	require.NoError(t, err)
	require.False(t, hit)

	second, hit, err := memo.GetOrCompute(0, "a", compute)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, 1, calls)
	// identical backing array
	require.Same(t, &first[0], &second[0])

	// stale generation is computed but not stored
	_, hit, err = memo.GetOrCompute(7, "a", compute)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, 2, calls)
	require.Equal(t, 1, memo.Len())

	memo.Reset(7)
	require.Equal(t, uint64(7), memo.Generation())
	require.Equal(t, 0, memo.Len())

	third, hit, err := memo.GetOrCompute(7, "a", compute)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, []int{3}, third)
}

func TestMemo_ErrorNotMemoized(t *testing.T) {
	memo := cache.NewMemo[int, int](0)
	expectedErr := errors.New("compute failed")

	_, _, err := memo.GetOrCompute(0, 1, func() (int, error) { return 0, expectedErr })
	require.ErrorIs(t, err, expectedErr)
	require.Equal(t, 0, memo.Len())

	value, hit, err := memo.GetOrCompute(0, 1, func() (int, error) { return 5, nil })
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, 5, value)
}
