// Package rules holds the role contract checks shared by the runtime
// validator (reflect) and the teamlint analyzer (go/types). Each side adapts
// its type representation to Type and maps Findings to its own positions.
package rules

import (
	"fmt"
	"go/token"
	"sort"
	"strings"

	"github.com/aretw0/teamwork/internal/scan"
	"github.com/aretw0/teamwork/pkg/domain"
	"github.com/aretw0/teamwork/pkg/registry"
)

// Type is the view of a parameter or result type the shape rules need.
type Type interface {
	String() string
	IsContext() bool
	IsError() bool
	IsBool() bool
	// IsState reports a struct or a pointer to a struct.
	IsState() bool
	IsPointer() bool
	Identical(Type) bool
}

// Method is an exported method of a candidate component, receiver excluded.
type Method struct {
	Name        string
	PointerRecv bool
	Variadic    bool
	Params      []Type
	Results     []Type
}

// Finding is a rule failure. Pos is set only for findings that come from
// a scanned body.
type Finding struct {
	Method  string
	Rule    domain.RuleID
	Message string
	Pos     token.Pos
}

func newFinding(method string, rule domain.RuleID, format string, args ...any) Finding {
	return Finding{Method: method, Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// MethodCount checks the number of exported methods against the role bounds.
func MethodCount(def domain.RoleDefinition, names []string) []Finding {
	var out []Finding
	n := len(names)
	if n < def.MinMethods {
		out = append(out, newFinding("", domain.RuleMethodName,
			"has %d exported methods, a %s requires at least %d", n, def.Kind, def.MinMethods))
	}
	if def.MaxMethods > 0 && n > def.MaxMethods {
		out = append(out, newFinding("", domain.RuleMethodName,
			"exposes %d exported methods (%s), a %s allows at most %d", n, strings.Join(names, ", "), def.Kind, def.MaxMethods))
	}
	return out
}

// MethodName checks a single method name against the role pattern.
func MethodName(h registry.Handle, name string) (Finding, bool) {
	if h.MatchMethod(name) {
		return Finding{}, false
	}
	return newFinding(name, domain.RuleMethodName, "name does not match %s", h.Definition().MethodPattern), true
}

// UnknownBoundary reports declared boundary methods that are not in declared.
func UnknownBoundary(boundary map[string]bool, declared []string) []Finding {
	have := make(map[string]bool, len(declared))
	for _, name := range declared {
		have[name] = true
	}
	var missing []string
	for name := range boundary {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)

	out := make([]Finding, 0, len(missing))
	for _, name := range missing {
		out = append(out, newFinding(name, domain.RuleParamShape, "declared external-boundary method does not exist"))
	}
	return out
}

// Params checks the parameter shape of m. On success it returns the state
// type, which Results and TypeBasedMutation use.
func Params(def domain.RoleDefinition, m Method) (Type, []Finding) {
	if def.Params == domain.ParamsAny {
		return nil, nil
	}
	if m.Variadic {
		return nil, []Finding{newFinding(m.Name, domain.RuleParamShape, "variadic methods cannot take a single state argument")}
	}

	params := m.Params
	if len(params) > 0 && params[0].IsContext() {
		if def.Params != domain.ParamsContextState {
			return nil, []Finding{newFinding(m.Name, domain.RuleParamShape, "a %s method does not accept a context.Context", def.Kind)}
		}
		params = params[1:]
	}

	switch {
	case len(params) != 1:
		return nil, []Finding{newFinding(m.Name, domain.RuleParamShape, "takes %d arguments, want exactly one state argument", len(params))}
	case !params[0].IsState():
		return nil, []Finding{newFinding(m.Name, domain.RuleParamShape, "argument of type %s is not a state struct", params[0])}
	}
	return params[0], nil
}

// Results checks the result shape of m. state is nil when the parameter
// shape was not established.
func Results(def domain.RoleDefinition, m Method, state Type) []Finding {
	for _, shape := range def.Results {
		if MatchResults(shape, m.Results, state) {
			return nil
		}
	}
	got := make([]string, len(m.Results))
	for i, r := range m.Results {
		got[i] = r.String()
	}
	want := make([]string, len(def.Results))
	for i, s := range def.Results {
		want[i] = "(" + string(s) + ")"
	}
	return []Finding{newFinding(m.Name, domain.RuleResultShape, "returns (%s), want %s", strings.Join(got, ", "), strings.Join(want, " or "))}
}

// MatchResults reports whether out has the given shape.
func MatchResults(shape domain.ResultShape, out []Type, state Type) bool {
	switch shape {
	case domain.ResultsAny:
		return true
	case domain.ResultNone:
		return len(out) == 0
	case domain.ResultBool:
		return len(out) == 1 && out[0].IsBool()
	case domain.ResultError:
		return len(out) == 1 && out[0].IsError()
	case domain.ResultState:
		return len(out) == 1 && sameState(out[0], state)
	case domain.ResultStateError:
		return len(out) == 2 && sameState(out[0], state) && out[1].IsError()
	}
	return false
}

func sameState(out, state Type) bool {
	if state != nil {
		return out.Identical(state)
	}
	return out.IsState()
}

// TypeBasedMutation reports the signatures that allow mutation: a pointer
// receiver or a state passed by pointer.
func TypeBasedMutation(m Method, state Type) []Finding {
	var out []Finding
	if m.PointerRecv {
		out = append(out, newFinding(m.Name, domain.RuleMutation, "pointer receiver allows mutation of instance state"))
	}
	if state != nil && state.IsPointer() {
		out = append(out, newFinding(m.Name, domain.RuleMutation, "state argument passed by pointer can be mutated"))
	}
	return out
}

// Mutations turns the writes of a scanned body into findings.
func Mutations(method string, rep scan.Report) []Finding {
	out := make([]Finding, 0, len(rep.Mutations))
	for _, mut := range rep.Mutations {
		f := newFinding(method, domain.RuleMutation, "writes %s", mut.Target)
		f.Pos = mut.Pos
		out = append(out, f)
	}
	return out
}

// Branches turns the branches of a scanned body into findings.
func Branches(method string, rep scan.Report) []Finding {
	out := make([]Finding, 0, len(rep.Branches))
	for _, b := range rep.Branches {
		f := newFinding(method, domain.RuleBranching, "contains %s statement", b.Construct)
		f.Pos = b.Pos
		out = append(out, f)
	}
	return out
}

// ForbiddenDependency reports a declared dependency the role may not call.
func ForbiddenDependency(def domain.RoleDefinition, ref domain.Ref) (Finding, bool) {
	if !def.Forbids(ref.Kind) {
		return Finding{}, false
	}
	return newFinding("", domain.RuleCrossRoleCall, "depends on %s, a %s may not call %s components", ref, def.Kind, ref.Kind), true
}

// ForbiddenCalls reports calls made through fields bound to forbidden roles.
func ForbiddenCalls(method string, rep scan.Report, forbidden map[string]domain.Ref) []Finding {
	var out []Finding
	for _, call := range rep.FieldCalls {
		ref, ok := forbidden[call.Field]
		if !ok {
			continue
		}
		f := newFinding(method, domain.RuleCrossRoleCall, "calls %s.%s on %s", call.Field, call.Method, ref)
		f.Pos = call.Pos
		out = append(out, f)
	}
	return out
}

// Scans reports whether any enabled rule reads method bodies.
func Scans(def domain.RoleDefinition, mutation domain.MutationStrategy, branching domain.BranchingStrategy) bool {
	return (!def.MutationAllowed && mutation == domain.MutationStructuralScan) ||
		(!def.BranchingAllowed && branching == domain.BranchingStructuralScan)
}
