package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/gitrules/gitrules/internal/logging"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("llm circuit open")

// tripAfter is the number of consecutive failures that opens the circuit.
const tripAfter = 5

// Breaker guards a Completer with a circuit breaker.
type Breaker struct {
	next Completer
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next. After the circuit opens it stays open for timeout,
// then lets a single trial request through.
func NewBreaker(next Completer, timeout time.Duration) *Breaker {
	name := "llm-" + next.ID()
	return &Breaker{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= tripAfter
			},
			IsSuccessful: func(err error) bool {
				// A caller giving up says nothing about the provider.
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logging.Warnf("[ai] Circuit %s: %s -> %s", name, from, to)
			},
		}),
	}
}

// ID returns the wrapped provider's identifier.
func (b *Breaker) ID() string { return b.next.ID() }

// State reports the breaker state, for health output.
func (b *Breaker) State() string { return b.cb.State().String() }

// Complete calls the wrapped provider unless the circuit is open.
func (b *Breaker) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Complete(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		return "", err
	}
	text, _ := out.(string)
	return text, nil
}
