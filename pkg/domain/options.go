package domain

import "fmt"

// Lifecycle controls how many instances the container builds for a binding.
type Lifecycle string

const (
	// Singleton bindings are constructed once and shared by every resolution.
	Singleton Lifecycle = "singleton"
	// Transient bindings are constructed on every resolution.
	Transient Lifecycle = "transient"
)

// MutationStrategy selects how the mutation rule is proven.
type MutationStrategy string

const (
	// MutationTypeBased relies on the type system: value receivers and value state parameters.
	MutationTypeBased MutationStrategy = "type-based"
	// MutationStructuralScan inspects method bodies for assignments to receiver or state.
	MutationStructuralScan MutationStrategy = "structural-scan"
)

// BranchingStrategy selects how the branching rule is checked.
type BranchingStrategy string

const (
	BranchingStructuralScan BranchingStrategy = "structural-scan"
	// BranchingNone disables the check for trusted code.
	BranchingNone BranchingStrategy = "none"
)

// ViolationPolicy decides what registration does with an invalid component.
type ViolationPolicy string

const (
	OnViolationReject ViolationPolicy = "reject"
	OnViolationWarn   ViolationPolicy = "warn"
)

// ParseLifecycle validates a configuration value.
func ParseLifecycle(s string) (Lifecycle, error) {
	switch l := Lifecycle(s); l {
	case Singleton, Transient:
		return l, nil
	}
	return "", fmt.Errorf("unknown lifecycle %q (expected singleton|transient)", s)
}

// ParseMutationStrategy validates a configuration value.
func ParseMutationStrategy(s string) (MutationStrategy, error) {
	switch m := MutationStrategy(s); m {
	case MutationTypeBased, MutationStructuralScan:
		return m, nil
	}
	return "", fmt.Errorf("unknown mutation check strategy %q (expected type-based|structural-scan)", s)
}

// ParseBranchingStrategy validates a configuration value.
func ParseBranchingStrategy(s string) (BranchingStrategy, error) {
	switch b := BranchingStrategy(s); b {
	case BranchingStructuralScan, BranchingNone:
		return b, nil
	}
	return "", fmt.Errorf("unknown branching check strategy %q (expected structural-scan|none)", s)
}

// ParseViolationPolicy validates a configuration value.
func ParseViolationPolicy(s string) (ViolationPolicy, error) {
	switch p := ViolationPolicy(s); p {
	case OnViolationReject, OnViolationWarn:
		return p, nil
	}
	return "", fmt.Errorf("unknown violation policy %q (expected reject|warn)", s)
}
