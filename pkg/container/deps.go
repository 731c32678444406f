package container

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/aretw0/teamwork/pkg/domain"
)

// ErrUndeclaredDependency is returned when a provider asks for a ref it did not declare.
var ErrUndeclaredDependency = errors.New("dependency not declared")

// Deps gives a provider access to its constructed dependencies.
type Deps struct {
	owner  domain.Ref
	values map[domain.Ref]any
}

// Get returns the instance bound to kind:name.
func (d Deps) Get(kind domain.Kind, name string) (any, error) {
	ref := domain.Ref{Kind: kind, Name: name}
	v, ok := d.values[ref]
	if !ok {
		return nil, fmt.Errorf("%s requested %s: %w", d.owner, ref, ErrUndeclaredDependency)
	}
	return v, nil
}

// Dep returns the dependency kind:name as a T.
func Dep[T any](d Deps, kind domain.Kind, name string) (T, error) {
	var zero T
	v, err := d.Get(kind, name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s requested %s:%s as %s, got %T", d.owner, kind, name, reflect.TypeFor[T](), v)
	}
	return t, nil
}
