// Package circuitbreaker guards calls to a flaky dependency. After a run of
// consecutive failures it rejects calls outright for a cool-down period, then
// lets trial calls through until enough of them succeed.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State represents the state of the circuit breaker.
type State int

const (
	// Closed lets every call through.
	Closed State = iota
	// Open rejects calls until the cool-down has elapsed.
	Open
	// HalfOpen lets trial calls through to probe recovery.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned without invoking the call while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Breaker counts consecutive outcomes of the calls it wraps.
type Breaker struct {
	failureThreshold uint32
	successThreshold uint32
	timeout          time.Duration
	now              func() time.Time

	mu        sync.Mutex
	state     State
	failures  uint32
	successes uint32
	openedAt  time.Time
}

// New creates a breaker that opens after failureThreshold consecutive failures,
// stays open for timeout and closes again after successThreshold consecutive
// successful trial calls. Zero thresholds are treated as 1.
func New(failureThreshold, successThreshold uint32, timeout time.Duration) *Breaker {
	if failureThreshold == 0 {
		failureThreshold = 1
	}
	if successThreshold == 0 {
		successThreshold = 1
	}
	return &Breaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		timeout:          timeout,
		now:              time.Now,
		state:            Closed,
	}
}

// State returns the current state, promoting Open to HalfOpen once the
// cool-down has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.promote()
	return b.state
}

// Execute runs fn unless the breaker is open. Cancellation of ctx is not
// counted as a failure of the dependency.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	b.mu.Lock()
	b.promote()
	if b.state == Open {
		b.mu.Unlock()
		return ErrCircuitOpen
	}
	b.mu.Unlock()

	err := fn(ctx)
	switch {
	case err == nil:
		b.onSuccess()
	case errors.Is(err, context.Canceled):
	default:
		b.onFailure()
	}
	return err
}

func (b *Breaker) promote() {
	if b.state == Open && b.now().Sub(b.openedAt) >= b.timeout {
		b.state = HalfOpen
		b.successes = 0
	}
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case HalfOpen:
		b.successes++
		if b.successes >= b.successThreshold {
			b.state = Closed
			b.failures = 0
			b.successes = 0
		}
	case Closed:
		b.failures = 0
	}
}

func (b *Breaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case HalfOpen:
		b.trip()
	case Closed:
		b.failures++
		if b.failures >= b.failureThreshold {
			b.trip()
		}
	}
}

func (b *Breaker) trip() {
	b.state = Open
	b.openedAt = b.now()
	b.failures = 0
	b.successes = 0
}
