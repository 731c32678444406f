package lint

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"reflect"

	"github.com/aretw0/teamwork/internal/rules"
	"github.com/aretw0/teamwork/internal/scan"
	"github.com/aretw0/teamwork/pkg/contract"
	"github.com/aretw0/teamwork/pkg/domain"
	"github.com/aretw0/teamwork/pkg/registry"
)

// RuleDirective marks a malformed or unknown //team: directive.
const RuleDirective domain.RuleID = "directive"

type finding struct {
	pos       token.Pos
	violation domain.Violation
}

type settings struct {
	registry  *registry.Registry
	mutation  domain.MutationStrategy
	branching domain.BranchingStrategy
}

// checker runs the role rules over one type-checked package.
type checker struct {
	settings
	files []*ast.File
	pkg   *types.Package

	findings []finding
}

func (c *checker) run() []finding {
	for _, f := range c.files {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				if d, ok := parseDirective(doc); ok {
					c.checkType(ts, d)
				}
			}
		}
	}
	return c.findings
}

// component is the per-type state of a check, mirroring contract's runtime check.
type component struct {
	c        *checker
	def      domain.RoleDefinition
	handle   registry.Handle
	name     string
	pos      token.Pos
	boundary map[string]bool
	deps     []dep
	methods  []*lintMethod
}

type dep struct {
	field string
	ref   domain.Ref
	pos   token.Pos
}

type lintMethod struct {
	rules.Method
	decl *ast.FuncDecl
	// unscannable explains why a method with no declaration cannot be
	// scanned. Empty means the body is simply outside the package.
	unscannable string
	state       rules.Type
}

// gotype adapts types.Type to the shared rules.
type gotype struct {
	types.Type
}

func (t gotype) String() string  { return typeString(t.Type) }
func (t gotype) IsContext() bool { return isContext(t.Type) }
func (t gotype) IsError() bool   { return types.Identical(t.Type, errorType) }
func (t gotype) IsState() bool   { return isState(t.Type) }

func (t gotype) IsBool() bool {
	b, ok := t.Underlying().(*types.Basic)
	return ok && b.Kind() == types.Bool
}

func (t gotype) IsPointer() bool {
	_, ok := types.Unalias(t.Type).(*types.Pointer)
	return ok
}

func (t gotype) Identical(o rules.Type) bool {
	u, ok := o.(gotype)
	return ok && types.Identical(t.Type, u.Type)
}

func tuple(t *types.Tuple) []rules.Type {
	out := make([]rules.Type, t.Len())
	for i := range out {
		out[i] = gotype{t.At(i).Type()}
	}
	return out
}

func (c *checker) checkType(ts *ast.TypeSpec, d directive) {
	h, err := c.registry.Handle(d.kind)
	if err != nil {
		c.findings = append(c.findings, finding{pos: ts.Name.Pos(), violation: domain.Violation{
			Kind: d.kind, Component: ts.Name.Name, Rule: RuleDirective, Message: err.Error(),
		}})
		return
	}
	obj, ok := c.pkg.Scope().Lookup(ts.Name.Name).(*types.TypeName)
	if !ok {
		return
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return
	}

	cp := &component{
		c:        c,
		def:      h.Definition(),
		handle:   h,
		name:     ts.Name.Name,
		pos:      ts.Name.Pos(),
		boundary: make(map[string]bool),
	}
	for _, b := range d.boundary {
		cp.boundary[b] = true
	}
	cp.collectDeps(named)
	cp.collectMethods(named)

	cp.checkMethodNames()
	cp.checkShapes()
	cp.checkMutation()
	cp.checkBranching()
	cp.checkCrossRole()
}

func (cp *component) report(pos token.Pos, method string, rule domain.RuleID, format string, args ...any) {
	cp.c.findings = append(cp.c.findings, finding{pos: pos, violation: domain.Violation{
		Kind:      cp.def.Kind,
		Component: cp.name,
		Method:    method,
		Rule:      rule,
		Message:   fmt.Sprintf(format, args...),
	}})
}

func (cp *component) collectDeps(named *types.Named) {
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return
	}
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		tag, ok := reflect.StructTag(st.Tag(i)).Lookup(contract.TagName)
		if !ok || tag == "" || tag == "-" {
			continue
		}
		ref, err := domain.ParseRef(tag)
		if err != nil {
			cp.report(f.Pos(), "", RuleDirective, "%s: %v", f.Name(), err)
			continue
		}
		cp.deps = append(cp.deps, dep{field: f.Name(), ref: ref, pos: f.Pos()})
	}
}

func (cp *component) collectMethods(named *types.Named) {
	all := types.NewMethodSet(types.NewPointer(named))
	values := types.NewMethodSet(named)
	for i := 0; i < all.Len(); i++ {
		fn, ok := all.At(i).Obj().(*types.Func)
		if !ok || !fn.Exported() {
			continue
		}
		sig := fn.Type().(*types.Signature)
		decl, unscannable := cp.c.findDecl(fn)
		cp.methods = append(cp.methods, &lintMethod{
			Method: rules.Method{
				Name:        fn.Name(),
				PointerRecv: values.Lookup(fn.Pkg(), fn.Name()) == nil,
				Variadic:    sig.Variadic(),
				Params:      tuple(sig.Params()),
				Results:     tuple(sig.Results()),
			},
			decl:        decl,
			unscannable: unscannable,
		})
	}
}

// findDecl returns the declaration of fn when it is in the analysed
// package. For a promoted method fn is the embedded type's method.
func (c *checker) findDecl(fn *types.Func) (*ast.FuncDecl, string) {
	recv := fn.Type().(*types.Signature).Recv()
	if recv == nil {
		return nil, ""
	}
	t := types.Unalias(recv.Type())
	if p, ok := t.(*types.Pointer); ok {
		t = types.Unalias(p.Elem())
	}
	if types.IsInterface(t) {
		return nil, "promoted from embedded interface " + typeString(t)
	}
	named, ok := t.(*types.Named)
	if !ok || fn.Pkg() != c.pkg {
		return nil, ""
	}
	for _, f := range c.files {
		if fd := scan.FindMethod(f, named.Obj().Name(), fn.Name()); fd != nil {
			return fd, ""
		}
	}
	return nil, ""
}

func (cp *component) unscannable(m *lintMethod, rule domain.RuleID) {
	cp.add(cp.pos, []rules.Finding{{
		Method:  m.Name,
		Rule:    rule,
		Message: "body cannot be scanned: " + m.unscannable,
	}})
}

func (m *lintMethod) pos(fallback token.Pos) token.Pos {
	if m.decl != nil {
		return m.decl.Name.Pos()
	}
	return fallback
}

// add records findings. Findings without a position are placed on the
// method declaration, or on the type when fallback is used.
func (cp *component) add(fallback token.Pos, fs []rules.Finding) {
	for _, f := range fs {
		pos := f.Pos
		if !pos.IsValid() {
			pos = fallback
		}
		cp.c.findings = append(cp.c.findings, finding{pos: pos, violation: domain.Violation{
			Kind:      cp.def.Kind,
			Component: cp.name,
			Method:    f.Method,
			Rule:      f.Rule,
			Message:   f.Message,
		}})
	}
}

func (cp *component) names() []string {
	names := make([]string, len(cp.methods))
	for i, m := range cp.methods {
		names[i] = m.Name
	}
	return names
}

func (cp *component) checkMethodNames() {
	cp.add(cp.pos, rules.MethodCount(cp.def, cp.names()))
	for _, m := range cp.methods {
		if f, bad := rules.MethodName(cp.handle, m.Name); bad {
			cp.add(m.pos(cp.pos), []rules.Finding{f})
		}
	}
}

func (cp *component) checkShapes() {
	cp.add(cp.pos, rules.UnknownBoundary(cp.boundary, cp.names()))
	for _, m := range cp.methods {
		if cp.boundary[m.Name] {
			continue
		}
		state, fs := rules.Params(cp.def, m.Method)
		m.state = state
		cp.add(m.pos(cp.pos), fs)
	}
	for _, m := range cp.methods {
		if !cp.boundary[m.Name] {
			cp.add(m.pos(cp.pos), rules.Results(cp.def, m.Method, m.state))
		}
	}
}

func (cp *component) checkMutation() {
	if cp.def.MutationAllowed {
		return
	}
	for _, m := range cp.methods {
		if cp.c.mutation == domain.MutationStructuralScan {
			if m.decl != nil {
				cp.add(m.pos(cp.pos), rules.Mutations(m.Name, scan.Func(m.decl)))
				continue
			}
			if m.unscannable != "" {
				cp.unscannable(m, domain.RuleMutation)
				continue
			}
		}
		cp.add(m.pos(cp.pos), rules.TypeBasedMutation(m.Method, m.state))
	}
}

func (cp *component) checkBranching() {
	if cp.def.BranchingAllowed || cp.c.branching == domain.BranchingNone {
		return
	}
	for _, m := range cp.methods {
		switch {
		case m.decl != nil:
			cp.add(m.pos(cp.pos), rules.Branches(m.Name, scan.Func(m.decl)))
		case m.unscannable != "":
			cp.unscannable(m, domain.RuleBranching)
		}
	}
}

func (cp *component) checkCrossRole() {
	forbidden := make(map[string]domain.Ref)
	for _, d := range cp.deps {
		if f, bad := rules.ForbiddenDependency(cp.def, d.ref); bad {
			forbidden[d.field] = d.ref
			cp.add(d.pos, []rules.Finding{f})
		}
	}
	if !rules.Scans(cp.def, cp.c.mutation, cp.c.branching) || len(forbidden) == 0 {
		return
	}
	for _, m := range cp.methods {
		if m.decl != nil {
			cp.add(m.pos(cp.pos), rules.ForbiddenCalls(m.Name, scan.Func(m.decl), forbidden))
		}
	}
}

func isState(t types.Type) bool {
	t = types.Unalias(t)
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	_, ok := t.Underlying().(*types.Struct)
	return ok
}

var errorType = types.Universe.Lookup("error").Type()

func isContext(t types.Type) bool {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == "context" && obj.Name() == "Context"
}

func typeString(t types.Type) string {
	return types.TypeString(t, func(p *types.Package) string { return p.Name() })
}
