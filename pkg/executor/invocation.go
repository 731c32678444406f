package executor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aretw0/teamwork/pkg/domain"
)

// Status is the state of an Invocation.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Invocation is a single, non-retryable execution of a delegator.
// It moves Idle -> Running -> Completed|Failed and is inert afterwards.
type Invocation[S any] struct {
	e    *Executor
	d    domain.Delegator[S]
	name string

	mu     sync.Mutex
	status Status
	err    error
}

// NewInvocation prepares an idle invocation of d.
func NewInvocation[S any](e *Executor, d domain.Delegator[S]) *Invocation[S] {
	return &Invocation[S]{e: e, d: d, name: delegatorName(d), status: StatusIdle}
}

// Status returns the current state.
func (i *Invocation[S]) Status() Status {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.status
}

// Err returns the failure of a Failed invocation.
func (i *Invocation[S]) Err() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.err
}

// Run executes the delegator with a copy of initial. A second call returns
// domain.ErrInvocationSpent.
func (i *Invocation[S]) Run(ctx context.Context, initial S) (S, error) {
	var zero S

	i.mu.Lock()
	if i.status != StatusIdle {
		i.mu.Unlock()
		return zero, domain.ErrInvocationSpent
	}
	i.status = StatusRunning
	i.mu.Unlock()

	out, err := i.execute(ctx, initial)

	i.mu.Lock()
	if err != nil {
		i.status = StatusFailed
		i.err = err
	} else {
		i.status = StatusCompleted
	}
	i.mu.Unlock()
	return out, err
}

func (i *Invocation[S]) execute(ctx context.Context, initial S) (S, error) {
	var zero S
	e := i.e

	if err := e.checkDelegator(ctx, i.d, i.name); err != nil {
		return zero, err
	}

	ev := &domain.ExecuteEvent{Timestamp: time.Now(), Delegator: i.name}
	e.emit(ctx, e.hooks.OnExecuteStart, ev)
	e.logger.DebugContext(ctx, "execution started", "delegator", i.name)

	out, err := i.process(ctx, initial)

	ev.Duration = time.Since(ev.Timestamp)
	ev.Err = err
	var cancelled *domain.CancelledError
	switch {
	case err == nil:
		ev.Outcome = domain.OutcomeCompleted
	case errors.As(err, &cancelled):
		ev.Outcome = domain.OutcomeCancelled
	default:
		ev.Outcome = domain.OutcomeFailed
	}
	e.emit(ctx, e.hooks.OnExecuteEnd, ev)
	e.logger.DebugContext(ctx, "execution finished",
		"delegator", i.name,
		"outcome", ev.Outcome,
		"duration", ev.Duration)

	if err != nil {
		return zero, err
	}
	return out, nil
}

func (i *Invocation[S]) process(ctx context.Context, initial S) (S, error) {
	var zero S
	if err := ctx.Err(); err != nil {
		return zero, &domain.CancelledError{Delegator: i.name, Cause: err}
	}

	in, err := copyInitial(initial)
	if err != nil {
		return zero, err
	}

	out, err := i.d.Process(ctx, in)

	// A cancellation surfacing from a collaborator is reported as such.
	// Any other error is returned as is, even if ctx ended meanwhile.
	if cerr := ctx.Err(); cerr != nil && (err == nil || domain.IsCancellation(err)) {
		return zero, &domain.CancelledError{Delegator: i.name, Cause: cerr}
	}
	return out, err
}
