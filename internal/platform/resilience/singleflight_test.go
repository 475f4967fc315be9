package resilience

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSingleFlightDeduplicatesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var executions atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := range results {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			body, err, _ := flight.Do("event-status", func() ([]byte, error) {
				executions.Add(1)
				<-release
				return []byte(`{"status":[]}`), nil
			})
			require.NoError(t, err)
			results[slot] = body
		}(i)
	}

	close(release)
	wg.Wait()

	require.LessOrEqual(t, executions.Load(), int32(8))
	for _, body := range results {
		require.Equal(t, []byte(`{"status":[]}`), body)
	}
}

func TestSingleFlightSequentialCallsRunSeparately(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	count := 0
	for i := 0; i < 3; i++ {
		_, _, shared := flight.Do("fixtures", func() ([]byte, error) {
			count++
			return nil, nil
		})
		require.False(t, shared)
	}
	require.Equal(t, 3, count)
}
