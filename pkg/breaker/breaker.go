package breaker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mytechsonamy/crypto-stock-platform/pkg/logger"
)

// State represents the circuit breaker state.
type State string

const (
	// StateClosed allows calls through and counts consecutive failures.
	StateClosed State = "closed"
	// StateOpen rejects calls immediately until the open timeout elapses.
	StateOpen State = "open"
	// StateHalfOpen lets trial calls through; successes close the circuit,
	// any failure reopens it.
	StateHalfOpen State = "half_open"
)

// Config holds the circuit breaker thresholds. Every breaker instance gets its
// own Config; breakers never share state.
type Config struct {
	// FailureThreshold is the number of consecutive failures in the closed
	// state that opens the circuit.
	FailureThreshold int
	// Timeout is how long the circuit stays open before allowing a trial call.
	Timeout time.Duration
	// SuccessThreshold is the number of consecutive successes in the half-open
	// state that closes the circuit.
	SuccessThreshold int
}

// DefaultConfig returns the default breaker thresholds.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		Timeout:          60 * time.Second,
		SuccessThreshold: 2,
	}
}

// TransitionFunc observes every state transition, keyed by breaker name.
type TransitionFunc func(name string, from, to State)

// OpenError is returned by Call while the circuit is open. Callers must back
// off for at least RetryAfter before trying again.
type OpenError struct {
	Name       string
	RetryAfter time.Duration
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("circuit breaker %s is open, retry after %s", e.Name, e.RetryAfter)
}

// IsOpen reports whether err indicates a rejected call due to an open circuit.
func IsOpen(err error) bool {
	_, ok := err.(*OpenError)
	return ok
}

// Breaker is a three-state circuit breaker protecting a single upstream
// dependency. The wrapped call is never invoked while the circuit is open.
type Breaker struct {
	name         string
	config       Config
	logger       logger.Interface
	onTransition TransitionFunc

	mu           sync.Mutex
	state        State
	failureCount int
	successCount int
	openedAt     time.Time

	now func() time.Time
}

// New creates a circuit breaker. Zero config fields fall back to defaults.
// onTransition may be nil.
func New(name string, config Config, log logger.Interface, onTransition TransitionFunc) *Breaker {
	defaults := DefaultConfig()
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = defaults.SuccessThreshold
	}

	return &Breaker{
		name:         name,
		config:       config,
		logger:       log,
		onTransition: onTransition,
		state:        StateClosed,
		now:          time.Now,
	}
}

// Name returns the breaker name.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Counts returns the current consecutive failure and success counters.
func (b *Breaker) Counts() (failures, successes int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failureCount, b.successCount
}

// Call invokes fn through the breaker. While the circuit is open and the
// timeout has not elapsed, Call fails immediately with *OpenError without
// invoking fn. Otherwise fn's own error is returned unchanged.
func (b *Breaker) Call(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.beforeCall(); err != nil {
		return err
	}

	err := fn(ctx)
	b.afterCall(err)
	return err
}

// Do invokes fn through the breaker and returns its result. It is the
// value-returning form of (*Breaker).Call.
func Do[T any](b *Breaker, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := b.Call(ctx, func(ctx context.Context) error {
		value, err := fn(ctx)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	return result, err
}

func (b *Breaker) beforeCall() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return nil
	}

	elapsed := b.now().Sub(b.openedAt)
	if elapsed < b.config.Timeout {
		return &OpenError{
			Name:       b.name,
			RetryAfter: b.config.Timeout - elapsed,
		}
	}

	// Timeout elapsed, the next call is a trial call.
	b.transition(StateHalfOpen)
	return nil
}

func (b *Breaker) afterCall(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.onFailure()
		return
	}
	b.onSuccess()
}

func (b *Breaker) onFailure() {
	switch b.state {
	case StateClosed:
		b.failureCount++
		if b.failureCount >= b.config.FailureThreshold {
			b.openedAt = b.now()
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		// Any failure during the trial reopens the circuit and resets the timer.
		b.openedAt = b.now()
		b.transition(StateOpen)
	}
}

func (b *Breaker) onSuccess() {
	switch b.state {
	case StateClosed:
		b.failureCount = 0
	case StateHalfOpen:
		b.successCount++
		if b.successCount >= b.config.SuccessThreshold {
			b.transition(StateClosed)
		}
	}
}

// transition must be called with the lock held.
func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}

	b.state = to
	b.failureCount = 0
	b.successCount = 0

	if b.logger != nil {
		b.logger.Info("circuit breaker state changed",
			logger.Field{Key: "breaker", Value: b.name},
			logger.Field{Key: "from", Value: string(from)},
			logger.Field{Key: "to", Value: string(to)},
		)
	}
	if b.onTransition != nil {
		b.onTransition(b.name, from, to)
	}
}
