package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aihorizon/horizon/internal/core/domain"
)

const (
	defaultGenerationCycles = 4
	maxBackoffDelay         = 60 * time.Second
	maxRetryHint            = 60 * time.Second
)

type Action int

const (
	// ActionRotate switches to the next credential slot and retries without
	// sleeping. Saturation is usually per-key, so a fresh key is tried first.
	ActionRotate Action = iota
	// ActionBackoff sleeps Delay before the next cycle.
	ActionBackoff
	// ActionGiveUp stops retrying; Hint carries the upstream retry
	// suggestion when one was present.
	ActionGiveUp
)

type Decision struct {
	Action Action
	Slot   int
	Delay  time.Duration
	Hint   time.Duration
}

// RetryState decides what to do after each transient generation failure. It
// is a pure state machine so the rotation and backoff schedule can be tested
// without real credentials and without sleeping.
type RetryState struct {
	credentials int
	maxCycles   int

	slot   int
	burned int
	cycle  int
}

func NewRetryState(credentials, maxCycles int) *RetryState {
	if credentials < 1 {
		credentials = 1
	}
	if maxCycles < 1 {
		maxCycles = defaultGenerationCycles
	}
	return &RetryState{credentials: credentials, maxCycles: maxCycles}
}

// Slot is the credential slot the next call should use.
func (s *RetryState) Slot() int { return s.slot }

// OnTransient advances the state machine after a retryable failure. Within a
// cycle every credential gets one chance; only when the whole ring has failed
// does the schedule back off, doubling per cycle (1s, 2s, 4s, ...).
func (s *RetryState) OnTransient(err error) Decision {
	s.burned++
	if s.burned < s.credentials {
		s.slot = (s.slot + 1) % s.credentials
		return Decision{Action: ActionRotate, Slot: s.slot}
	}

	s.burned = 0
	s.cycle++
	if s.cycle >= s.maxCycles {
		hint, _ := RetryHint(err, maxRetryHint)
		return Decision{Action: ActionGiveUp, Slot: s.slot, Hint: hint}
	}

	s.slot = (s.slot + 1) % s.credentials
	delay := time.Duration(1<<uint(s.cycle-1)) * time.Second
	if delay > maxBackoffDelay {
		delay = maxBackoffDelay
	}
	// On the last cycle before giving up, an upstream retry hint replaces the
	// exponential delay: one final wait sized the way the server asked for.
	if s.cycle == s.maxCycles-1 {
		if hint, ok := RetryHint(err, maxRetryHint); ok && hint > 0 {
			delay = hint
		}
	}
	return Decision{Action: ActionBackoff, Slot: s.slot, Delay: delay}
}

// ExecuteGeneration runs fn against a ring of credential slots, rotating on
// transient failures before sleeping and backing off once every slot has
// failed in a cycle. Exhaustion surfaces as domain.ErrRateLimited; permanent
// failures are returned on the first occurrence.
func (e *Executor) ExecuteGeneration(
	ctx context.Context,
	operation string,
	credentials int,
	fn func(ctx context.Context, slot int) error,
) error {
	if fn == nil {
		return fmt.Errorf("resilience: generation callback is nil")
	}

	run := func(ctx context.Context) error {
		state := NewRetryState(credentials, e.cfg.GenerationMaxCycles)
		for {
			if err := ctx.Err(); err != nil {
				return err
			}

			err := fn(ctx, state.Slot())
			if err == nil {
				return nil
			}
			if !ClassifyGeneration(err).Retryable {
				return err
			}

			decision := state.OnTransient(err)
			switch decision.Action {
			case ActionRotate:
				slog.Warn("generation_credential_rotated",
					"operation", operation,
					"slot", decision.Slot,
					"error", err.Error(),
				)
			case ActionBackoff:
				slog.Warn("generation_backoff",
					"operation", operation,
					"slot", decision.Slot,
					"delay", decision.Delay.String(),
					"error", err.Error(),
				)
				timer := time.NewTimer(decision.Delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return err
				case <-timer.C:
				}
			case ActionGiveUp:
				if decision.Hint > 0 {
					return domain.WrapError(domain.ErrRateLimited, operation,
						fmt.Errorf("all credentials exhausted, retry in %s: %w", decision.Hint, err))
				}
				return domain.WrapError(domain.ErrRateLimited, operation, err)
			}
		}
	}

	if !e.cfg.BreakerEnabled {
		return run(ctx)
	}
	breaker := e.circuitBreaker(operation, ClassifyGeneration)
	_, err := breaker.Execute(func() (any, error) {
		return nil, run(ctx)
	})
	return err
}
