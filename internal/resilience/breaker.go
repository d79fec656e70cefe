package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

type State string

const (
	StateClosed   State = "CLOSED"
	StateOpen     State = "OPEN"
	StateHalfOpen State = "HALF_OPEN"
)

// ErrCircuitOpen is returned without invoking the underlying operation
// whenever the breaker is OPEN (or HALF_OPEN and already probing).
var ErrCircuitOpen = errors.New("resilience: circuit open")

// BreakerConfig controls the thresholds and cool-down.
type BreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	OpenDuration     time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenDuration:      30 * time.Second,
	}
}

// CircuitBreaker implements the CLOSED -> OPEN -> HALF_OPEN -> CLOSED state
// machine from spec §4.3.
type CircuitBreaker struct {
	mu sync.Mutex

	cfg BreakerConfig

	state           State
	failureCount    int
	successCount    int
	openedAt        time.Time
	halfOpenProbing bool
}

func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg, state: StateClosed}
}

func (b *CircuitBreaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

// stateLocked applies the OPEN -> HALF_OPEN time-based transition lazily,
// so callers always observe the current state without a background timer.
func (b *CircuitBreaker) stateLocked() State {
	if b.state == StateOpen && time.Since(b.openedAt) >= b.cfg.OpenDuration {
		b.state = StateHalfOpen
		b.halfOpenProbing = false
		b.successCount = 0
	}
	return b.state
}

// ExecuteBreaker wraps op with the breaker: CLOSED runs freely and counts
// failures; OPEN rejects immediately with ErrCircuitOpen; HALF_OPEN admits
// exactly one probe at a time.
func ExecuteBreaker[T any](ctx context.Context, b *CircuitBreaker, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	b.mu.Lock()
	state := b.stateLocked()
	switch state {
	case StateOpen:
		b.mu.Unlock()
		return zero, ErrCircuitOpen
	case StateHalfOpen:
		if b.halfOpenProbing {
			b.mu.Unlock()
			return zero, ErrCircuitOpen
		}
		b.halfOpenProbing = true
	}
	b.mu.Unlock()

	value, err := op(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if state == StateHalfOpen {
		b.halfOpenProbing = false
	}
	if err != nil {
		b.onFailureLocked()
		return zero, err
	}
	b.onSuccessLocked()
	return value, nil
}

func (b *CircuitBreaker) onFailureLocked() {
	switch b.state {
	case StateClosed:
		b.failureCount++
		if b.failureCount >= b.cfg.FailureThreshold {
			b.trip()
		}
	case StateHalfOpen:
		b.trip()
	}
}

func (b *CircuitBreaker) onSuccessLocked() {
	switch b.state {
	case StateClosed:
		b.failureCount = 0
	case StateHalfOpen:
		b.successCount++
		if b.successCount >= b.cfg.SuccessThreshold {
			b.state = StateClosed
			b.failureCount = 0
			b.successCount = 0
		}
	}
}

// trip opens the breaker and (re)starts its cool-down timer.
func (b *CircuitBreaker) trip() {
	b.state = StateOpen
	b.openedAt = time.Now()
	b.failureCount = 0
	b.successCount = 0
	b.halfOpenProbing = false
}
