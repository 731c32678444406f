// Package scan inspects Go function bodies for the structural rules of the
// role contracts: control-flow branching, writes through the receiver or the
// parameters, and calls made through receiver fields.
package scan

import (
	"go/ast"
	"go/token"
	"go/types"
)

// Branch is a control-flow construct found in a body.
type Branch struct {
	Pos       token.Pos
	Construct string // "if", "switch", "type switch", "select", "conditional for", "goto", "labelled break", ...
}

// Mutation is a write whose target is rooted at the receiver or a parameter.
type Mutation struct {
	Pos    token.Pos
	Root   string // receiver or parameter name
	Target string // rendered left-hand side, e.g. "s.Email"
}

// FieldCall is a call of the form recv.Field.Method(...).
type FieldCall struct {
	Pos    token.Pos
	Field  string
	Method string
}

// Report is the outcome of scanning one function.
type Report struct {
	Branches   []Branch
	Mutations  []Mutation
	FieldCalls []FieldCall
}

// Func scans the body of decl. A declaration without body yields an empty report.
func Func(decl *ast.FuncDecl) Report {
	var rep Report
	if decl == nil || decl.Body == nil {
		return rep
	}

	recv := ReceiverName(decl)
	roots := make(map[string]bool)
	if recv != "" {
		roots[recv] = true
	}
	for _, name := range ParamNames(decl.Type) {
		roots[name] = true
	}

	ast.Inspect(decl.Body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.IfStmt:
			rep.Branches = append(rep.Branches, Branch{Pos: n.Pos(), Construct: "if"})
		case *ast.SwitchStmt:
			rep.Branches = append(rep.Branches, Branch{Pos: n.Pos(), Construct: "switch"})
		case *ast.TypeSwitchStmt:
			rep.Branches = append(rep.Branches, Branch{Pos: n.Pos(), Construct: "type switch"})
		case *ast.SelectStmt:
			rep.Branches = append(rep.Branches, Branch{Pos: n.Pos(), Construct: "select"})
		case *ast.ForStmt:
			// A loop condition decides whether the body runs at all.
			if n.Cond != nil {
				rep.Branches = append(rep.Branches, Branch{Pos: n.Pos(), Construct: "conditional for"})
			}
		case *ast.BranchStmt:
			switch {
			case n.Tok == token.GOTO:
				rep.Branches = append(rep.Branches, Branch{Pos: n.Pos(), Construct: "goto"})
			case n.Label != nil:
				rep.Branches = append(rep.Branches, Branch{Pos: n.Pos(), Construct: "labelled " + n.Tok.String()})
			}
		case *ast.AssignStmt:
			if n.Tok == token.DEFINE {
				return true
			}
			for _, lhs := range n.Lhs {
				if m, ok := mutationOf(lhs, roots); ok {
					rep.Mutations = append(rep.Mutations, m)
				}
			}
		case *ast.IncDecStmt:
			if m, ok := mutationOf(n.X, roots); ok {
				rep.Mutations = append(rep.Mutations, m)
			}
		case *ast.RangeStmt:
			if n.Tok == token.ASSIGN {
				for _, e := range []ast.Expr{n.Key, n.Value} {
					if e == nil {
						continue
					}
					if m, ok := mutationOf(e, roots); ok {
						rep.Mutations = append(rep.Mutations, m)
					}
				}
			}
		case *ast.CallExpr:
			if fc, ok := fieldCallOf(n, recv); ok {
				rep.FieldCalls = append(rep.FieldCalls, fc)
			}
		}
		return true
	})
	return rep
}

// mutationOf reports a write through a selector, index or dereference rooted
// at one of roots. Rebinding the bare identifier is not a write to the value.
func mutationOf(lhs ast.Expr, roots map[string]bool) (Mutation, bool) {
	switch unparen(lhs).(type) {
	case *ast.SelectorExpr, *ast.IndexExpr, *ast.IndexListExpr, *ast.StarExpr:
	default:
		return Mutation{}, false
	}
	root := rootIdent(lhs)
	if root == nil || !roots[root.Name] {
		return Mutation{}, false
	}
	return Mutation{Pos: lhs.Pos(), Root: root.Name, Target: types.ExprString(lhs)}, true
}

func fieldCallOf(call *ast.CallExpr, recv string) (FieldCall, bool) {
	if recv == "" {
		return FieldCall{}, false
	}
	method, ok := unparen(call.Fun).(*ast.SelectorExpr)
	if !ok {
		return FieldCall{}, false
	}
	field, ok := unparen(method.X).(*ast.SelectorExpr)
	if !ok {
		return FieldCall{}, false
	}
	base, ok := unparen(field.X).(*ast.Ident)
	if !ok || base.Name != recv {
		return FieldCall{}, false
	}
	return FieldCall{Pos: call.Pos(), Field: field.Sel.Name, Method: method.Sel.Name}, true
}

func rootIdent(e ast.Expr) *ast.Ident {
	for {
		switch x := e.(type) {
		case *ast.Ident:
			return x
		case *ast.SelectorExpr:
			e = x.X
		case *ast.IndexExpr:
			e = x.X
		case *ast.IndexListExpr:
			e = x.X
		case *ast.StarExpr:
			e = x.X
		case *ast.ParenExpr:
			e = x.X
		default:
			return nil
		}
	}
}

func unparen(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}

// ReceiverName returns the receiver identifier, or "" for functions and
// anonymous or blank receivers.
func ReceiverName(decl *ast.FuncDecl) string {
	if decl.Recv == nil || len(decl.Recv.List) == 0 || len(decl.Recv.List[0].Names) == 0 {
		return ""
	}
	name := decl.Recv.List[0].Names[0].Name
	if name == "_" {
		return ""
	}
	return name
}

// ReceiverType returns the base type name of the receiver and whether it is a pointer.
func ReceiverType(decl *ast.FuncDecl) (name string, pointer bool) {
	if decl.Recv == nil || len(decl.Recv.List) == 0 {
		return "", false
	}
	t := decl.Recv.List[0].Type
	if star, ok := t.(*ast.StarExpr); ok {
		pointer = true
		t = star.X
	}
	switch x := t.(type) {
	case *ast.Ident:
		return x.Name, pointer
	case *ast.IndexExpr:
		if id, ok := x.X.(*ast.Ident); ok {
			return id.Name, pointer
		}
	case *ast.IndexListExpr:
		if id, ok := x.X.(*ast.Ident); ok {
			return id.Name, pointer
		}
	}
	return "", pointer
}

// ParamNames returns the named, non-blank parameters of a function type.
func ParamNames(ft *ast.FuncType) []string {
	if ft == nil || ft.Params == nil {
		return nil
	}
	var names []string
	for _, field := range ft.Params.List {
		for _, n := range field.Names {
			if n.Name != "_" {
				names = append(names, n.Name)
			}
		}
	}
	return names
}

// FindMethod returns the declaration of typeName.method in file, or nil.
func FindMethod(file *ast.File, typeName, method string) *ast.FuncDecl {
	for _, d := range file.Decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok || fd.Recv == nil || fd.Name.Name != method {
			continue
		}
		if name, _ := ReceiverType(fd); name == typeName {
			return fd
		}
	}
	return nil
}
