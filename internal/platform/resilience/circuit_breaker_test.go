package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(3, time.Minute, 1)
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Allow())
		b.RecordFailure()
	}

	require.Equal(t, CircuitStateOpen, b.State())
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	t.Parallel()

	current := time.Now()
	b := NewCircuitBreaker(1, 10*time.Second, 1)
	b.now = func() time.Time { return current }

	require.NoError(t, b.Allow())
	b.RecordFailure()
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	current = current.Add(11 * time.Second)
	require.NoError(t, b.Allow())
	b.RecordSuccess()
	require.Equal(t, CircuitStateClosed, b.State())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	current := time.Now()
	b := NewCircuitBreaker(1, 10*time.Second, 2)
	b.now = func() time.Time { return current }

	require.NoError(t, b.Allow())
	b.RecordFailure()

	current = current.Add(11 * time.Second)
	require.NoError(t, b.Allow())
	b.RecordFailure()
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestNormalizeCircuitBreakerConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{})
	require.Equal(t, 5, cfg.FailureThreshold)
	require.Equal(t, 15*time.Second, cfg.OpenTimeout)
	require.Equal(t, 2, cfg.HalfOpenMaxReq)
}
