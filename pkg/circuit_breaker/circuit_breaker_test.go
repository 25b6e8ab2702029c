package circuit_breaker

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_Call(t *testing.T) {
	clock := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	cb := New(Config{Window: 4, Cooldown: time.Minute, FailureRatio: 0.5, Recovery: 2}).(*circuitBreaker)
	cb.now = func() time.Time { return clock }

	ok := func() error { return nil }
	errBroker := errors.New("broker down")
	fail := func() error { return errBroker }

	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Call(ok))
	}
	require.Equal(t, Closed, cb.State())

	require.ErrorIs(t, cb.Call(fail), errBroker)
	require.Equal(t, Closed, cb.State())
	require.ErrorIs(t, cb.Call(fail), errBroker)
	require.Equal(t, Open, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	require.ErrorIs(t, err, ErrOpen)
	require.False(t, called)

	// trial call fails: back to open
	clock = clock.Add(2 * time.Minute)
	require.ErrorIs(t, cb.Call(fail), errBroker)
	require.Equal(t, Open, cb.State())

	clock = clock.Add(2 * time.Minute)
	require.NoError(t, cb.Call(ok))
	require.Equal(t, HalfOpen, cb.State())
	require.NoError(t, cb.Call(ok))
	require.Equal(t, Closed, cb.State())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := New(Config{Window: 1, Cooldown: time.Hour, FailureRatio: 1, Recovery: 1})
	require.Error(t, cb.Call(func() error { return errors.New("boom") }))
	require.Equal(t, Open, cb.State())

	cb.Reset()
	require.Equal(t, Closed, cb.State())
	require.NoError(t, cb.Call(func() error { return nil }))
}
