package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream failed")

func newTestBreaker(t *testing.T) (*Breaker, *time.Time, *[]State) {
	t.Helper()

	current := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	var transitions []State

	b := New("test", Config{
		FailureThreshold: 5,
		Timeout:          60 * time.Second,
		SuccessThreshold: 2,
	}, nil, func(name string, from, to State) {
		transitions = append(transitions, to)
	})
	b.now = func() time.Time { return current }

	return b, &current, &transitions
}

func fail(ctx context.Context) error    { return errUpstream }
func succeed(ctx context.Context) error { return nil }

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b, _, transitions := newTestBreaker(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		assert.ErrorIs(t, b.Call(ctx, fail), errUpstream)
		assert.Equal(t, StateClosed, b.State())
	}

	// Fifth consecutive failure opens the circuit.
	assert.ErrorIs(t, b.Call(ctx, fail), errUpstream)
	assert.Equal(t, StateOpen, b.State())
	assert.Equal(t, []State{StateOpen}, *transitions)
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b, _, _ := newTestBreaker(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_ = b.Call(ctx, fail)
	}
	require.NoError(t, b.Call(ctx, succeed))

	failures, _ := b.Counts()
	assert.Equal(t, 0, failures)

	// Four more failures must not open: the streak was broken.
	for i := 0; i < 4; i++ {
		_ = b.Call(ctx, fail)
	}
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_FailsFastWhileOpen(t *testing.T) {
	b, current, _ := newTestBreaker(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = b.Call(ctx, fail)
	}
	require.Equal(t, StateOpen, b.State())

	*current = current.Add(30 * time.Second)

	invoked := false
	err := b.Call(ctx, func(ctx context.Context) error {
		invoked = true
		return nil
	})

	// The wrapped function must not run while the circuit is open.
	assert.False(t, invoked)

	var openErr *OpenError
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, "test", openErr.Name)
	assert.Equal(t, 30*time.Second, openErr.RetryAfter)
	assert.True(t, IsOpen(err))
}

func TestBreaker_HalfOpenAfterTimeout_ClosesOnSuccesses(t *testing.T) {
	b, current, transitions := newTestBreaker(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = b.Call(ctx, fail)
	}
	*current = current.Add(60 * time.Second)

	// First trial call goes through in half-open.
	require.NoError(t, b.Call(ctx, succeed))
	assert.Equal(t, StateHalfOpen, b.State())

	// Second consecutive success closes the circuit.
	require.NoError(t, b.Call(ctx, succeed))
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, []State{StateOpen, StateHalfOpen, StateClosed}, *transitions)
}

func TestBreaker_HalfOpenFailureReopensAndResetsTimer(t *testing.T) {
	b, current, _ := newTestBreaker(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = b.Call(ctx, fail)
	}
	*current = current.Add(60 * time.Second)

	// Trial call fails: back to open with a fresh timer.
	assert.ErrorIs(t, b.Call(ctx, fail), errUpstream)
	require.Equal(t, StateOpen, b.State())

	// 59s after the reopen the circuit is still rejecting.
	*current = current.Add(59 * time.Second)
	var openErr *OpenError
	require.ErrorAs(t, b.Call(ctx, succeed), &openErr)
	assert.Equal(t, time.Second, openErr.RetryAfter)

	// One more second and the trial call is allowed again.
	*current = current.Add(time.Second)
	require.NoError(t, b.Call(ctx, succeed))
	assert.Equal(t, StateHalfOpen, b.State())
}

func TestBreaker_InstancesAreIndependent(t *testing.T) {
	ctx := context.Background()
	a := New("a", Config{FailureThreshold: 1}, nil, nil)
	b := New("b", Config{FailureThreshold: 1}, nil, nil)

	_ = a.Call(ctx, fail)

	assert.Equal(t, StateOpen, a.State())
	assert.Equal(t, StateClosed, b.State())
}

func TestDo_ReturnsValueThroughBreaker(t *testing.T) {
	b, _, _ := newTestBreaker(t)
	ctx := context.Background()

	value, err := Do(b, ctx, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, value)

	_, err = Do(b, ctx, func(ctx context.Context) (int, error) {
		return 0, errUpstream
	})
	assert.ErrorIs(t, err, errUpstream)
}

func TestNew_AppliesDefaults(t *testing.T) {
	b := New("defaults", Config{}, nil, nil)

	assert.Equal(t, 5, b.config.FailureThreshold)
	assert.Equal(t, 60*time.Second, b.config.Timeout)
	assert.Equal(t, 2, b.config.SuccessThreshold)
}
