package domain

import "context"

// Delegator is the single orchestration entry point of a workflow.
type Delegator[S any] interface {
	Process(ctx context.Context, state S) (S, error)
}

// DelegatorFunc adapts a function to the Delegator interface.
type DelegatorFunc[S any] func(ctx context.Context, state S) (S, error)

func (f DelegatorFunc[S]) Process(ctx context.Context, state S) (S, error) {
	return f(ctx, state)
}

// Investigator is a pure predicate over a state.
type Investigator[S any] interface {
	Investigate(state S) bool
}
