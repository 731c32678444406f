package dsl

import (
	"context"
	"fmt"

	"github.com/aretw0/teamwork/pkg/domain"
)

// Builder assembles a Flow.
type Builder[S any] struct {
	name  string
	steps []Step[S]
}

// New starts a flow named name.
func New[S any](name string) *Builder[S] {
	return &Builder[S]{name: name}
}

// Fetch appends a Fetcher step.
func (b *Builder[S]) Fetch(fn func(context.Context, S) (S, error)) *Builder[S] {
	return b.Then(Fetch(fn))
}

// Work appends a Worker step.
func (b *Builder[S]) Work(fn func(S) S) *Builder[S] {
	return b.Then(Work(fn))
}

// TryWork appends a Worker step that may fail.
func (b *Builder[S]) TryWork(fn func(S) (S, error)) *Builder[S] {
	return b.Then(TryWork(fn))
}

// Assert appends an Error component step.
func (b *Builder[S]) Assert(fn func(S) error) *Builder[S] {
	return b.Then(Assert(fn))
}

// When appends steps guarded by inv.
func (b *Builder[S]) When(inv domain.Investigator[S], steps ...Step[S]) *Builder[S] {
	return b.Then(When(inv, steps...))
}

// Unless appends steps guarded by the negation of inv.
func (b *Builder[S]) Unless(inv domain.Investigator[S], steps ...Step[S]) *Builder[S] {
	return b.Then(Unless(inv, steps...))
}

// Then appends prepared steps.
func (b *Builder[S]) Then(steps ...Step[S]) *Builder[S] {
	b.steps = append(b.steps, steps...)
	return b
}

// Build returns the flow. Every step must have a function and every guard
// an investigator.
func (b *Builder[S]) Build() (Flow[S], error) {
	for i, s := range b.steps {
		if !s.valid() {
			return Flow[S]{}, fmt.Errorf("flow %q: step %d (%s) is incomplete", b.name, i+1, s.kind)
		}
	}
	return Flow[S]{steps: append([]Step[S](nil), b.steps...)}, nil
}

// Flow is a Delegator running its steps in order. Process is its only method.
type Flow[S any] struct {
	steps []Step[S]
}

// Process threads s through the steps. The first error is returned as is,
// together with the state reached before the failing step.
func (f Flow[S]) Process(ctx context.Context, s S) (S, error) {
	return runSteps(ctx, f.steps, s)
}
