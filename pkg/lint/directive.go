package lint

import (
	"go/ast"
	"strings"

	"github.com/aretw0/teamwork/pkg/domain"
)

const directivePrefix = "//team:"

type directive struct {
	kind     domain.Kind
	boundary []string
}

// parseDirective finds a //team:<kind> line in doc.
func parseDirective(doc *ast.CommentGroup) (directive, bool) {
	if doc == nil {
		return directive{}, false
	}
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, directivePrefix)
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		d := directive{kind: domain.Kind(fields[0])}
		for _, f := range fields[1:] {
			if names, ok := strings.CutPrefix(f, "boundary="); ok {
				d.boundary = append(d.boundary, strings.Split(names, ",")...)
			}
		}
		return d, true
	}
	return directive{}, false
}
