package contract

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/aretw0/teamwork/internal/scan"
)

type sourceFile struct {
	ast    *ast.File
	digest uint64
}

// sourceIndex parses each source file once per validator.
type sourceIndex struct {
	mu    sync.Mutex
	fset  *token.FileSet
	files map[string]*sourceFile
}

func newSourceIndex() *sourceIndex {
	return &sourceIndex{
		fset:  token.NewFileSet(),
		files: make(map[string]*sourceFile),
	}
}

func (s *sourceIndex) file(path string) (*sourceFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.files[path]; ok {
		return f, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := parser.ParseFile(s.fset, path, content, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}
	f := &sourceFile{ast: parsed, digest: xxhash.Sum64(content)}
	s.files[path] = f
	return f, nil
}

func (s *sourceIndex) position(pos token.Pos) string {
	p := s.fset.Position(pos)
	return p.Filename + ":" + strconv.Itoa(p.Line)
}

type sourceStatus int

const (
	// sourceUnavailable means no source file could be read. Rules that
	// need the body fall back or are skipped with a warning.
	sourceUnavailable sourceStatus = iota
	sourceFound
	// sourceUndeclared means source was read but the body cannot be
	// scanned; rules that need it report a violation.
	sourceUndeclared
)

// methodSource is the located declaration of a method.
type methodSource struct {
	decl   *ast.FuncDecl
	path   string
	digest uint64
	status sourceStatus
	reason string
}

// method locates the declaration of name in the method set of base. A
// promoted method is looked up on the embedded type that declares it.
func (s *sourceIndex) method(base reflect.Type, name string) methodSource {
	var searched []string
	for _, owner := range methodOwners(base, name) {
		if owner.Kind() == reflect.Interface {
			return methodSource{
				status: sourceUndeclared,
				reason: fmt.Sprintf("promoted from embedded interface %s", owner),
			}
		}
		path, ok := methodFile(owner, name)
		if !ok {
			continue
		}
		f, err := s.file(path)
		if err != nil {
			continue
		}
		searched = append(searched, path)
		if decl := scan.FindMethod(f.ast, typeName(owner), name); decl != nil {
			return methodSource{decl: decl, path: path, digest: f.digest, status: sourceFound}
		}
	}
	if len(searched) > 0 {
		return methodSource{
			status: sourceUndeclared,
			reason: "no declaration found in " + strings.Join(searched, ", "),
		}
	}
	return methodSource{status: sourceUnavailable}
}

// methodOwners returns base followed by the embedded types that supply
// name, shallowest first.
func methodOwners(base reflect.Type, name string) []reflect.Type {
	owners := []reflect.Type{base}
	seen := map[reflect.Type]bool{base: true}
	level := []reflect.Type{base}
	for len(level) > 0 {
		var next []reflect.Type
		for _, t := range level {
			if t.Kind() != reflect.Struct {
				continue
			}
			for i := 0; i < t.NumField(); i++ {
				f := t.Field(i)
				if !f.Anonymous {
					continue
				}
				ft := f.Type
				if ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				if seen[ft] || !hasMethod(ft, name) {
					continue
				}
				seen[ft] = true
				owners = append(owners, ft)
				next = append(next, ft)
			}
		}
		level = next
	}
	return owners
}

func hasMethod(t reflect.Type, name string) bool {
	if t.Kind() != reflect.Interface {
		t = reflect.PointerTo(t)
	}
	_, ok := t.MethodByName(name)
	return ok
}

// methodFile resolves the file declaring a method through the runtime symbol
// table. Wrappers generated by the compiler report "<autogenerated>" and are skipped.
func methodFile(base reflect.Type, name string) (string, bool) {
	for _, t := range []reflect.Type{base, reflect.PointerTo(base)} {
		m, ok := t.MethodByName(name)
		if !ok {
			continue
		}
		fn := runtime.FuncForPC(m.Func.Pointer())
		if fn == nil {
			continue
		}
		file, _ := fn.FileLine(fn.Entry())
		if file == "" || strings.HasPrefix(file, "<") {
			continue
		}
		return file, true
	}
	return "", false
}

// typeName strips type arguments from an instantiated generic type name.
func typeName(t reflect.Type) string {
	name := t.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}
