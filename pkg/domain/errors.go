package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Contract taxonomy. These are detected before any business execution.
var (
	ErrContractViolation     = errors.New("contract violation")
	ErrUnknownRoleKind       = errors.New("unknown role kind")
	ErrDuplicateRegistration = errors.New("duplicate registration")
	ErrUnresolvedDependency  = errors.New("unresolved dependency")
	ErrCyclicDependency      = errors.New("cyclic dependency")
	ErrInvalidRole           = errors.New("invalid role definition")
)

// ErrCancelled is the kind of every error produced by a cancelled or expired execution.
var ErrCancelled = errors.New("execution cancelled")

// ErrInvocationSpent is returned when a finished invocation is run again.
var ErrInvocationSpent = errors.New("invocation already finished")

// ContractViolationError carries every violation found for a rejected component.
type ContractViolationError struct {
	Ref        Ref
	Violations []Violation
}

func (e *ContractViolationError) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("%s %s: %s", ErrContractViolation, e.Ref, e.Violations[0])
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s: %d violations:\n", ErrContractViolation, e.Ref, len(e.Violations))
	for i, v := range e.Violations {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, v)
	}
	return sb.String()
}

func (e *ContractViolationError) Unwrap() error { return ErrContractViolation }

// Violations returns the violation list if err is (or wraps) a ContractViolationError.
func Violations(err error) []Violation {
	var cv *ContractViolationError
	if errors.As(err, &cv) {
		return cv.Violations
	}
	return nil
}

// UnknownRoleError reports a lookup of a kind the registry does not know.
type UnknownRoleError struct {
	Kind Kind
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownRoleKind, e.Kind)
}

func (e *UnknownRoleError) Unwrap() error { return ErrUnknownRoleKind }

// DuplicateRegistrationError reports a second binding for the same ref.
type DuplicateRegistrationError struct {
	Ref Ref
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateRegistration, e.Ref)
}

func (e *DuplicateRegistrationError) Unwrap() error { return ErrDuplicateRegistration }

// UnresolvedDependencyError reports a ref with no binding.
// RequiredBy is empty when the ref was requested directly.
type UnresolvedDependencyError struct {
	Ref        Ref
	RequiredBy *Ref
}

func (e *UnresolvedDependencyError) Error() string {
	if e.RequiredBy != nil {
		return fmt.Sprintf("%s: %s (required by %s)", ErrUnresolvedDependency, e.Ref, *e.RequiredBy)
	}
	return fmt.Sprintf("%s: %s", ErrUnresolvedDependency, e.Ref)
}

func (e *UnresolvedDependencyError) Unwrap() error { return ErrUnresolvedDependency }

// CyclicDependencyError reports a dependency cycle. Path starts and ends with the same ref.
type CyclicDependencyError struct {
	Path []Ref
}

func (e *CyclicDependencyError) Error() string {
	parts := make([]string, len(e.Path))
	for i, r := range e.Path {
		parts[i] = r.String()
	}
	return fmt.Sprintf("%s: %s", ErrCyclicDependency, strings.Join(parts, " -> "))
}

func (e *CyclicDependencyError) Unwrap() error { return ErrCyclicDependency }

// CancelledError is returned by the executor when the caller's context ends.
// It matches both ErrCancelled and the underlying context error.
type CancelledError struct {
	Delegator string
	Cause     error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCancelled, e.Delegator, e.Cause)
}

func (e *CancelledError) Unwrap() []error { return []error{ErrCancelled, e.Cause} }

// IsCancellation reports whether err is a context cancellation or deadline.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
