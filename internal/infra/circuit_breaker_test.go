package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransporte = errors.New("connection refused")

func newTestBreaker(isFailure func(error) bool) (*CircuitBreaker, *time.Time) {
	clock := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      10 * time.Second,
		IsFailure:        isFailure,
	})
	cb.now = func() time.Time { return clock }
	return cb, &clock
}

func TestCircuitBreakerTripsAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(nil)
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errTransporte }), errTransporte)
	}
	assert.Equal(t, CBOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb, clock := newTestBreaker(nil)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errTransporte })
	}
	require.Equal(t, CBOpen, cb.State())

	*clock = clock.Add(11 * time.Second)
	assert.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreakerHalfOpenProbeFailureReopens(t *testing.T) {
	cb, clock := newTestBreaker(nil)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errTransporte })
	}
	*clock = clock.Add(11 * time.Second)

	_ = cb.Execute(func() error { return errTransporte })
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreakerIgnoresNonFailures(t *testing.T) {
	errRemoto := errors.New("400 bad request")
	cb, _ := newTestBreaker(func(err error) bool { return errors.Is(err, errTransporte) })

	for i := 0; i < 10; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errRemoto }), errRemoto)
	}
	assert.Equal(t, CBClosed, cb.State())
}

func TestCBStateString(t *testing.T) {
	assert.Equal(t, "closed", CBClosed.String())
	assert.Equal(t, "open", CBOpen.String())
	assert.Equal(t, "half-open", CBHalfOpen.String())
}
