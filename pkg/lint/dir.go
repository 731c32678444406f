package lint

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"sort"

	"github.com/aretw0/teamwork/pkg/domain"
	"golang.org/x/tools/go/packages"
)

// CheckDir loads the packages matching patterns (default "./...") under dir
// and returns every violation, sorted by position.
func CheckDir(ctx context.Context, dir string, patterns []string, opts ...Option) ([]domain.Violation, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}

	var loadErrs []error
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			loadErrs = append(loadErrs, e)
		}
	})
	if len(loadErrs) > 0 {
		return nil, fmt.Errorf("load %s: %w", dir, errors.Join(loadErrs...))
	}

	type located struct {
		pos token.Position
		v   domain.Violation
	}
	s := newSettings(opts)
	var found []located
	for _, p := range pkgs {
		c := &checker{settings: s, files: p.Syntax, pkg: p.Types}
		for _, f := range c.run() {
			pos := p.Fset.Position(f.pos)
			v := f.violation
			v.Position = pos.String()
			found = append(found, located{pos: pos, v: v})
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i].pos, found[j].pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	out := make([]domain.Violation, len(found))
	for i, f := range found {
		out[i] = f.v
	}
	return out, nil
}
