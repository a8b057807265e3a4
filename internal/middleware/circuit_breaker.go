package middleware

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrBreakerOpen is returned without calling the protected function while
// the breaker is open.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// CircuitBreakerState represents the current state of the circuit breaker
type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "CLOSED"
	}
}

// CircuitBreaker stops calling an optional dependency (the idempotency
// cache) after repeated failures so requests do not each pay its timeout.
type CircuitBreaker struct {
	name              string
	logger            *logrus.Logger
	now               func() time.Time
	mu                sync.Mutex
	state             CircuitBreakerState
	failureCount      int
	successCount      int
	openedAt          time.Time
	maxFailures       int           // Open circuit after N failures
	resetTimeout      time.Duration // Wait before trying half-open
	halfOpenSuccesses int           // Required successes to close circuit
}

// NewCircuitBreaker creates a breaker with the default thresholds
func NewCircuitBreaker(name string, logger *logrus.Logger) *CircuitBreaker {
	return &CircuitBreaker{
		name:              name,
		logger:            logger,
		now:               time.Now,
		state:             StateClosed,
		maxFailures:       5,
		resetTimeout:      10 * time.Second,
		halfOpenSuccesses: 3,
	}
}

// Execute runs fn unless the breaker is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.state == StateOpen {
		if cb.now().Sub(cb.openedAt) < cb.resetTimeout {
			cb.mu.Unlock()
			return ErrBreakerOpen
		}
		cb.transition(StateHalfOpen)
		cb.successCount = 0
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.onFailure(err)
		return err
	}
	cb.onSuccess()
	return nil
}

func (cb *CircuitBreaker) onFailure(err error) {
	cb.failureCount++

	switch cb.state {
	case StateClosed:
		if cb.failureCount >= cb.maxFailures {
			cb.logger.WithError(err).WithField("failure_count", cb.failureCount).Error("Circuit breaker opened")
			cb.open()
		}
	case StateHalfOpen:
		cb.logger.WithError(err).Warn("Circuit breaker probe failed")
		cb.open()
	}
}

func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case StateClosed:
		cb.failureCount = 0
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.halfOpenSuccesses {
			cb.transition(StateClosed)
			cb.failureCount = 0
			cb.successCount = 0
		}
	}
}

func (cb *CircuitBreaker) open() {
	cb.transition(StateOpen)
	cb.openedAt = cb.now()
	cb.failureCount = 0
}

func (cb *CircuitBreaker) transition(to CircuitBreakerState) {
	cb.logger.WithFields(logrus.Fields{
		"breaker": cb.name,
		"from":    cb.state.String(),
		"to":      to.String(),
	}).Info("Circuit breaker state change")
	cb.state = to
}

// State returns the current circuit breaker state
func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
