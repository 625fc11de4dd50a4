package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker guards calls to the auth service and the sync feed. It
// opens after a run of consecutive failures and lets a bounded number of
// probes through once the open window has passed.
type CircuitBreaker struct {
	mu sync.Mutex

	maxFailures    int
	openWindow     time.Duration
	halfOpenProbes int

	state         CircuitState
	failures      int
	retryAt       time.Time
	probesInUse   int
	probesCleared int
	now           func() time.Time
}

func NewCircuitBreaker(maxFailures int, openWindow time.Duration, halfOpenProbes int) *CircuitBreaker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	if openWindow <= 0 {
		openWindow = 15 * time.Second
	}
	if halfOpenProbes < 1 {
		halfOpenProbes = 1
	}

	return &CircuitBreaker{
		maxFailures:    maxFailures,
		openWindow:     openWindow,
		halfOpenProbes: halfOpenProbes,
		state:          CircuitStateClosed,
		now:            time.Now,
	}
}

func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Before(b.retryAt) {
			return ErrCircuitOpen
		}
		b.state = CircuitStateHalfOpen
		b.probesInUse = 0
		b.probesCleared = 0
	}

	if b.state == CircuitStateHalfOpen {
		if b.probesInUse >= b.halfOpenProbes {
			return ErrCircuitOpen
		}
		b.probesInUse++
	}

	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		if b.probesInUse > 0 {
			b.probesInUse--
		}
		b.probesCleared++
		if b.probesCleared >= b.halfOpenProbes && b.probesInUse == 0 {
			b.reset()
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.maxFailures {
			b.trip()
		}
	case CircuitStateHalfOpen:
		if b.probesInUse > 0 {
			b.probesInUse--
		}
		b.trip()
	case CircuitStateOpen:
		b.retryAt = b.now().Add(b.openWindow)
	}
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && !b.now().Before(b.retryAt) {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) reset() {
	b.state = CircuitStateClosed
	b.failures = 0
	b.probesInUse = 0
	b.probesCleared = 0
	b.retryAt = time.Time{}
}

func (b *CircuitBreaker) trip() {
	b.state = CircuitStateOpen
	b.retryAt = b.now().Add(b.openWindow)
	b.probesInUse = 0
	b.probesCleared = 0
}
