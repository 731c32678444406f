package domain

import (
	"context"
	"time"
)

// Outcome is the terminal status of an execution.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// RegisterEvent is emitted after a registration attempt.
type RegisterEvent struct {
	Ref        Ref
	Lifecycle  Lifecycle
	Violations []Violation
	Accepted   bool
}

// ResolveEvent is emitted after each resolution request.
type ResolveEvent struct {
	Ref Ref
	// Constructed counts the factory invocations this resolution caused.
	Constructed int
	Err         error
}

// ExecuteEvent describes one delegator execution.
type ExecuteEvent struct {
	Timestamp time.Time
	Delegator string
	Outcome   Outcome
	Duration  time.Duration
	Err       error
}

// LifecycleHooks defines callbacks for runtime observability.
type LifecycleHooks struct {
	OnRegister     func(context.Context, *RegisterEvent)
	OnResolve      func(context.Context, *ResolveEvent)
	OnExecuteStart func(context.Context, *ExecuteEvent)
	OnExecuteEnd   func(context.Context, *ExecuteEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRegister:     chain(h.OnRegister, other.OnRegister),
		OnResolve:      chain(h.OnResolve, other.OnResolve),
		OnExecuteStart: chain(h.OnExecuteStart, other.OnExecuteStart),
		OnExecuteEnd:   chain(h.OnExecuteEnd, other.OnExecuteEnd),
	}
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
