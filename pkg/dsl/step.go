package dsl

import (
	"context"

	"github.com/aretw0/teamwork/pkg/domain"
)

// Step is one stage of a Flow.
type Step[S any] struct {
	kind  domain.Kind
	guard domain.Investigator[S]
	// negate inverts guard (Unless).
	negate bool
	run    func(context.Context, S) (S, error)
	inner  []Step[S]
}

// Kind reports the role the step plays.
func (s Step[S]) Kind() domain.Kind { return s.kind }

// Fetch wraps a Fetcher method.
func Fetch[S any](fn func(context.Context, S) (S, error)) Step[S] {
	return Step[S]{kind: domain.KindFetcher, run: fn}
}

// Work wraps a Worker method that cannot fail.
func Work[S any](fn func(S) S) Step[S] {
	if fn == nil {
		return Step[S]{kind: domain.KindWorker}
	}
	return Step[S]{kind: domain.KindWorker, run: func(_ context.Context, s S) (S, error) {
		return fn(s), nil
	}}
}

// TryWork wraps a Worker method that reports an error.
func TryWork[S any](fn func(S) (S, error)) Step[S] {
	if fn == nil {
		return Step[S]{kind: domain.KindWorker}
	}
	return Step[S]{kind: domain.KindWorker, run: func(_ context.Context, s S) (S, error) {
		return fn(s)
	}}
}

// Assert wraps an Error component. The state passes through unchanged.
func Assert[S any](fn func(S) error) Step[S] {
	if fn == nil {
		return Step[S]{kind: domain.KindError}
	}
	return Step[S]{kind: domain.KindError, run: func(_ context.Context, s S) (S, error) {
		return s, fn(s)
	}}
}

// When runs steps only if inv holds for the current state.
func When[S any](inv domain.Investigator[S], steps ...Step[S]) Step[S] {
	return Step[S]{kind: domain.KindInvestigator, guard: inv, inner: steps}
}

// Unless runs steps only if inv does not hold for the current state.
func Unless[S any](inv domain.Investigator[S], steps ...Step[S]) Step[S] {
	return Step[S]{kind: domain.KindInvestigator, guard: inv, negate: true, inner: steps}
}

func (s Step[S]) valid() bool {
	if s.kind == domain.KindInvestigator {
		if s.guard == nil {
			return false
		}
		for _, in := range s.inner {
			if !in.valid() {
				return false
			}
		}
		return true
	}
	return s.run != nil
}

func (s Step[S]) apply(ctx context.Context, st S) (S, error) {
	if s.kind != domain.KindInvestigator {
		return s.run(ctx, st)
	}
	if s.guard.Investigate(st) == s.negate {
		return st, nil
	}
	return runSteps(ctx, s.inner, st)
}

func runSteps[S any](ctx context.Context, steps []Step[S], st S) (S, error) {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		next, err := step.apply(ctx, st)
		if err != nil {
			return st, err
		}
		st = next
	}
	return st, nil
}
