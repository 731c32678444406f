package http

import (
	"github.com/aretw0/teamwork/pkg/container"
	"github.com/aretw0/teamwork/pkg/domain"
)

// Component is the wire form of a container binding.
type Component struct {
	Ref          string             `json:"ref"`
	Kind         domain.Kind        `json:"kind"`
	Name         string             `json:"name"`
	Type         string             `json:"type,omitempty"`
	Lifecycle    domain.Lifecycle   `json:"lifecycle"`
	Dependencies []string           `json:"dependencies"`
	Violations   []domain.Violation `json:"violations,omitempty"`
}

func componentFromBinding(b container.Binding) Component {
	c := Component{
		Ref:          b.Ref.String(),
		Kind:         b.Ref.Kind,
		Name:         b.Ref.Name,
		Lifecycle:    b.Lifecycle,
		Dependencies: make([]string, 0, len(b.Dependencies)),
		Violations:   b.Violations,
	}
	if b.Type != nil {
		c.Type = b.Type.String()
	}
	for _, d := range b.Dependencies {
		c.Dependencies = append(c.Dependencies, d.String())
	}
	return c
}
