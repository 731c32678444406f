package domain

import (
	"fmt"
	"strings"
)

// Kind identifies a role. The six built-in kinds are listed below; embedding
// applications may define more through the registry.
type Kind string

const (
	KindState        Kind = "state"
	KindFetcher      Kind = "fetcher"
	KindWorker       Kind = "worker"
	KindInvestigator Kind = "investigator"
	KindError        Kind = "error"
	KindDelegator    Kind = "delegator"
)

// BuiltinKinds lists the kinds every registry is created with.
var BuiltinKinds = []Kind{
	KindState,
	KindFetcher,
	KindWorker,
	KindInvestigator,
	KindError,
	KindDelegator,
}

// ParamShape describes the parameter list every checked method must have.
type ParamShape string

const (
	// ParamsAny disables the parameter-shape rule (state models).
	ParamsAny ParamShape = "any"
	// ParamsState requires exactly one state argument.
	ParamsState ParamShape = "state"
	// ParamsContextState allows an optional leading context.Context before the state argument.
	ParamsContextState ParamShape = "context+state"
)

// ResultShape is one accepted result list for a checked method.
type ResultShape string

const (
	ResultsAny       ResultShape = "any"
	ResultState      ResultShape = "state"
	ResultStateError ResultShape = "state,error"
	ResultBool       ResultShape = "bool"
	ResultError      ResultShape = "error"
	ResultNone       ResultShape = "none"
)

// RoleDefinition is the structural contract of a role.
type RoleDefinition struct {
	Kind        Kind   `yaml:"kind" json:"kind"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// MethodPattern is a regular expression every exported method name must match.
	// Empty means any exported name.
	MethodPattern string `yaml:"method_pattern,omitempty" json:"method_pattern,omitempty"`
	MinMethods    int    `yaml:"min_methods,omitempty" json:"min_methods,omitempty"`
	// MaxMethods of 0 means unbounded.
	MaxMethods int `yaml:"max_methods,omitempty" json:"max_methods,omitempty"`

	Params  ParamShape    `yaml:"params,omitempty" json:"params,omitempty"`
	Results []ResultShape `yaml:"results,omitempty" json:"results,omitempty"`

	MutationAllowed  bool `yaml:"mutation_allowed" json:"mutation_allowed"`
	BranchingAllowed bool `yaml:"branching_allowed" json:"branching_allowed"`

	// ForbiddenDependencies lists the kinds a component of this role may not call.
	ForbiddenDependencies []Kind `yaml:"forbidden_dependencies,omitempty" json:"forbidden_dependencies,omitempty"`
}

// Clone returns a copy that shares no slices with d.
func (d RoleDefinition) Clone() RoleDefinition {
	out := d
	out.Results = append([]ResultShape(nil), d.Results...)
	out.ForbiddenDependencies = append([]Kind(nil), d.ForbiddenDependencies...)
	return out
}

// Forbids reports whether a component of this role may not depend on kind.
func (d RoleDefinition) Forbids(kind Kind) bool {
	for _, k := range d.ForbiddenDependencies {
		if k == kind {
			return true
		}
	}
	return false
}

// Ref identifies a binding in the container.
type Ref struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
}

func (r Ref) String() string {
	return string(r.Kind) + ":" + r.Name
}

// ParseRef parses the "kind:name" notation used in struct tags and configuration.
func ParseRef(s string) (Ref, error) {
	kind, name, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || kind == "" || name == "" {
		return Ref{}, fmt.Errorf("invalid reference %q: expected kind:name", s)
	}
	return Ref{Kind: Kind(kind), Name: name}, nil
}
