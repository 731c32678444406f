// Package predicate expresses Investigators as composable boolean functions
// over a state. Composition uses only boolean operators, so a composed
// predicate still satisfies the no-branching rule.
package predicate

import "github.com/aretw0/teamwork/pkg/domain"

// Predicate is a pure question asked of a state.
type Predicate[S any] func(S) bool

// Investigate implements domain.Investigator.
func (p Predicate[S]) Investigate(s S) bool { return p(s) }

// Test is an alias of Investigate for call sites that read better as a test.
func (p Predicate[S]) Test(s S) bool { return p(s) }

// Of adapts an Investigator to a Predicate.
func Of[S any](inv domain.Investigator[S]) Predicate[S] {
	return inv.Investigate
}

// And holds when every predicate holds. And() is always true.
func And[S any](ps ...Predicate[S]) Predicate[S] {
	return func(s S) bool {
		for _, p := range ps {
			if !p(s) {
				return false
			}
		}
		return true
	}
}

// Or holds when at least one predicate holds. Or() is always false.
func Or[S any](ps ...Predicate[S]) Predicate[S] {
	return func(s S) bool {
		for _, p := range ps {
			if p(s) {
				return true
			}
		}
		return false
	}
}

// Not negates p.
func Not[S any](p Predicate[S]) Predicate[S] {
	return func(s S) bool { return !p(s) }
}

// Always holds for every state.
func Always[S any]() Predicate[S] {
	return func(S) bool { return true }
}

// Never holds for no state.
func Never[S any]() Predicate[S] {
	return func(S) bool { return false }
}
