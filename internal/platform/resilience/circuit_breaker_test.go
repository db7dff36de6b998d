package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b := NewCircuitBreaker(3, 10*time.Second, 1)

	now := time.Date(2026, 3, 8, 15, 0, 0, 0, time.UTC)
	b.clock = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		require.NoError(t, b.Allow())
		b.RecordFailure()
	}
	require.Equal(t, CircuitStateClosed, b.State())

	b.RecordFailure()
	require.Equal(t, CircuitStateOpen, b.State())
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestCircuitBreaker_SuccessResetsFailureStreak(t *testing.T) {
	b := NewCircuitBreaker(2, 10*time.Second, 1)

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()

	require.Equal(t, CircuitStateClosed, b.State())
	require.NoError(t, b.Allow())
}

func TestCircuitBreaker_HalfOpenProbeClosesOnSuccess(t *testing.T) {
	b := NewCircuitBreaker(1, 5*time.Second, 1)

	now := time.Date(2026, 3, 8, 15, 0, 0, 0, time.UTC)
	b.clock = func() time.Time { return now }

	b.RecordFailure()
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	now = now.Add(6 * time.Second)
	require.NoError(t, b.Allow())
	require.Equal(t, CircuitStateHalfOpen, b.State())

	// Only one probe slot was configured.
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	b.RecordSuccess()
	require.Equal(t, CircuitStateClosed, b.State())
}

func TestCircuitBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	b := NewCircuitBreaker(1, 5*time.Second, 1)

	now := time.Date(2026, 3, 8, 15, 0, 0, 0, time.UTC)
	b.clock = func() time.Time { return now }

	b.RecordFailure()
	now = now.Add(6 * time.Second)
	require.NoError(t, b.Allow())

	b.RecordFailure()
	require.Equal(t, CircuitStateOpen, b.State())
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestCircuitBreakerConfig_Defaults(t *testing.T) {
	got := CircuitBreakerConfig{Enabled: true}.withDefaults()

	require.Equal(t, defaultFailureThreshold, got.FailureThreshold)
	require.Equal(t, defaultOpenTimeout, got.OpenTimeout)
	require.Equal(t, defaultHalfOpenMaxReq, got.HalfOpenMaxReq)
	require.True(t, got.Enabled)
}

func TestNewBreakerFromConfig(t *testing.T) {
	breaker, enabled := NewBreakerFromConfig(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})
	require.True(t, enabled)
	require.NoError(t, breaker.Allow())
	breaker.RecordFailure()
	require.ErrorIs(t, breaker.Allow(), ErrCircuitOpen)

	_, disabled := NewBreakerFromConfig(CircuitBreakerConfig{})
	require.False(t, disabled)
}
