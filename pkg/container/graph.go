package container

import "github.com/aretw0/teamwork/pkg/domain"

// checkClosure walks every binding reachable from root and reports the first
// missing binding or cycle. Nothing is constructed. Callers hold c.mu.
func (c *Container) checkClosure(root domain.Ref) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[domain.Ref]int)
	var stack []domain.Ref

	var visit func(ref domain.Ref, parent *domain.Ref) error
	visit = func(ref domain.Ref, parent *domain.Ref) error {
		b, ok := c.bindings[ref]
		if !ok {
			return &domain.UnresolvedDependencyError{Ref: ref, RequiredBy: parent}
		}

		color[ref] = gray
		stack = append(stack, ref)
		for _, dep := range b.deps {
			switch color[dep] {
			case white:
				owner := ref
				if err := visit(dep, &owner); err != nil {
					return err
				}
			case gray:
				// Back edge: the cycle is the stack suffix starting at dep.
				start := 0
				for i, r := range stack {
					if r == dep {
						start = i
						break
					}
				}
				path := append([]domain.Ref(nil), stack[start:]...)
				return &domain.CyclicDependencyError{Path: append(path, dep)}
			}
		}
		stack = stack[:len(stack)-1]
		color[ref] = black
		return nil
	}

	return visit(root, nil)
}
