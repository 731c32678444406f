package contract

import (
	"context"
	"fmt"
	"reflect"

	"github.com/aretw0/teamwork/internal/rules"
	"github.com/aretw0/teamwork/internal/scan"
	"github.com/aretw0/teamwork/pkg/domain"
	"github.com/aretw0/teamwork/pkg/registry"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// rtype adapts reflect.Type to the shared rules.
type rtype struct {
	reflect.Type
}

func (t rtype) IsContext() bool { return t.Type == contextType }
func (t rtype) IsError() bool   { return t.Type == errorType }
func (t rtype) IsBool() bool    { return t.Kind() == reflect.Bool }
func (t rtype) IsState() bool   { return isStateType(t.Type) }
func (t rtype) IsPointer() bool { return t.Kind() == reflect.Pointer }

func (t rtype) Identical(o rules.Type) bool {
	u, ok := o.(rtype)
	return ok && u.Type == t.Type
}

func isStateType(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

type method struct {
	rules.Method
	signature string
	// state is the state argument type once the parameter shape is known.
	state rules.Type
}

type check struct {
	v        *Validator
	handle   registry.Handle
	def      domain.RoleDefinition
	base     reflect.Type
	name     string
	boundary map[string]bool
	deps     []domain.Ref
	fields   []TaggedField
	methods  []*method

	sources    map[string]methodSource
	violations []domain.Violation
}

func newCheck(v *Validator, h registry.Handle, t reflect.Type, cfg checkConfig, fields []TaggedField) *check {
	base := t
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	c := &check{
		v:        v,
		handle:   h,
		def:      h.Definition(),
		base:     base,
		name:     cfg.name,
		boundary: make(map[string]bool),
		fields:   fields,
		sources:  make(map[string]methodSource),
	}
	if c.name == "" {
		c.name = typeName(base)
		if c.name == "" {
			c.name = base.String()
		}
	}
	for _, b := range cfg.boundary {
		c.boundary[b] = true
	}

	seen := make(map[domain.Ref]bool)
	for _, d := range cfg.deps {
		if !seen[d] {
			seen[d] = true
			c.deps = append(c.deps, d)
		}
	}
	for _, f := range fields {
		if !seen[f.Ref] {
			seen[f.Ref] = true
			c.deps = append(c.deps, f.Ref)
		}
	}

	// The pointer method set holds every declared method; the value set
	// tells which of them have value receivers.
	all := reflect.PointerTo(base)
	for i := 0; i < all.NumMethod(); i++ {
		rm := all.Method(i)
		_, valueRecv := base.MethodByName(rm.Name)
		m := &method{
			Method: rules.Method{
				Name:        rm.Name,
				PointerRecv: !valueRecv,
				Variadic:    rm.Type.IsVariadic(),
			},
			signature: rm.Type.String(),
		}
		for j := 1; j < rm.Type.NumIn(); j++ {
			m.Params = append(m.Params, rtype{rm.Type.In(j)})
		}
		for j := 0; j < rm.Type.NumOut(); j++ {
			m.Results = append(m.Results, rtype{rm.Type.Out(j)})
		}
		c.methods = append(c.methods, m)
	}
	return c
}

func (c *check) run() domain.ValidationResult {
	c.checkMethodNames()
	c.checkShapes()
	c.checkMutation()
	c.checkBranching()
	c.checkCrossRole()

	return domain.ValidationResult{
		OK:         len(c.violations) == 0,
		Violations: c.violations,
	}
}

func (c *check) add(fs []rules.Finding) {
	for _, f := range fs {
		pos := ""
		if f.Pos.IsValid() {
			pos = c.v.sources.position(f.Pos)
		}
		c.violations = append(c.violations, domain.Violation{
			Kind:      c.def.Kind,
			Component: c.name,
			Method:    f.Method,
			Rule:      f.Rule,
			Message:   f.Message,
			Position:  pos,
		})
	}
}

func (c *check) report(m string, rule domain.RuleID, format string, args ...any) {
	c.add([]rules.Finding{{Method: m, Rule: rule, Message: fmt.Sprintf(format, args...)}})
}

func (c *check) names() []string {
	names := make([]string, len(c.methods))
	for i, m := range c.methods {
		names[i] = m.Name
	}
	return names
}

func (c *check) checkMethodNames() {
	c.add(rules.MethodCount(c.def, c.names()))
	for _, m := range c.methods {
		if f, bad := rules.MethodName(c.handle, m.Name); bad {
			c.add([]rules.Finding{f})
		}
	}
}

func (c *check) checkShapes() {
	c.add(rules.UnknownBoundary(c.boundary, c.names()))
	for _, m := range c.methods {
		if c.boundary[m.Name] {
			continue
		}
		state, fs := rules.Params(c.def, m.Method)
		m.state = state
		c.add(fs)
	}
	for _, m := range c.methods {
		if c.boundary[m.Name] {
			continue
		}
		c.add(rules.Results(c.def, m.Method, m.state))
	}
}

func (c *check) checkMutation() {
	if c.def.MutationAllowed {
		return
	}
	for _, m := range c.methods {
		if c.v.mutation == domain.MutationStructuralScan {
			src := c.source(m)
			switch src.status {
			case sourceFound:
				c.add(rules.Mutations(m.Name, scan.Func(src.decl)))
				continue
			case sourceUndeclared:
				c.report(m.Name, domain.RuleMutation, "body cannot be scanned: %s", src.reason)
				continue
			}
			c.v.logger.Warn("source unavailable, falling back to type-based mutation check",
				"component", c.name, "method", m.Name)
		}
		c.add(rules.TypeBasedMutation(m.Method, m.state))
	}
}

func (c *check) checkBranching() {
	if c.def.BranchingAllowed || c.v.branching == domain.BranchingNone {
		return
	}
	for _, m := range c.methods {
		src := c.source(m)
		switch src.status {
		case sourceUnavailable:
			c.v.logger.Warn("source unavailable, branching check skipped",
				"component", c.name, "method", m.Name)
		case sourceUndeclared:
			c.report(m.Name, domain.RuleBranching, "body cannot be scanned: %s", src.reason)
		case sourceFound:
			c.add(rules.Branches(m.Name, scan.Func(src.decl)))
		}
	}
}

func (c *check) checkCrossRole() {
	for _, d := range c.deps {
		if f, bad := rules.ForbiddenDependency(c.def, d); bad {
			c.add([]rules.Finding{f})
		}
	}
	if !c.scans() {
		return
	}

	forbidden := make(map[string]domain.Ref)
	for _, f := range c.fields {
		if c.def.Forbids(f.Ref.Kind) {
			forbidden[f.Name] = f.Ref
		}
	}
	if len(forbidden) == 0 {
		return
	}
	for _, m := range c.methods {
		if src := c.source(m); src.status == sourceFound {
			c.add(rules.ForbiddenCalls(m.Name, scan.Func(src.decl), forbidden))
		}
	}
}

// scans reports whether any enabled rule reads method sources.
func (c *check) scans() bool {
	return rules.Scans(c.def, c.v.mutation, c.v.branching)
}

func (c *check) source(m *method) methodSource {
	if src, ok := c.sources[m.Name]; ok {
		return src
	}
	src := c.v.sources.method(c.base, m.Name)
	c.sources[m.Name] = src
	return src
}
