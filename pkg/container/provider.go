package container

import (
	"context"
	"fmt"
	"reflect"

	"github.com/aretw0/teamwork/pkg/contract"
	"github.com/aretw0/teamwork/pkg/domain"
)

// Provider knows the type of a component, what it depends on and how to build it.
type Provider interface {
	// Type is the component type validated against the role contract.
	Type() reflect.Type
	// Dependencies lists the refs Provide may request.
	Dependencies() []domain.Ref
	// Provide builds one instance.
	Provide(ctx context.Context, deps Deps) (any, error)
}

type instanceProvider struct {
	value any
}

// Instance binds an already constructed value. It is always a singleton.
func Instance(v any) Provider {
	return instanceProvider{value: v}
}

func (p instanceProvider) Type() reflect.Type         { return reflect.TypeOf(p.value) }
func (p instanceProvider) Dependencies() []domain.Ref { return nil }

func (p instanceProvider) Provide(context.Context, Deps) (any, error) {
	return p.value, nil
}

type factoryProvider[T any] struct {
	fn   func(context.Context, Deps) (T, error)
	deps []domain.Ref
}

// Factory binds a constructor function. deps are the only refs fn may resolve.
func Factory[T any](fn func(ctx context.Context, deps Deps) (T, error), deps ...domain.Ref) Provider {
	return factoryProvider[T]{fn: fn, deps: append([]domain.Ref(nil), deps...)}
}

func (p factoryProvider[T]) Type() reflect.Type         { return reflect.TypeFor[T]() }
func (p factoryProvider[T]) Dependencies() []domain.Ref { return p.deps }

func (p factoryProvider[T]) Provide(ctx context.Context, deps Deps) (any, error) {
	return p.fn(ctx, deps)
}

type structProvider[T any] struct {
	fields []contract.TaggedField
	err    error
}

// Struct builds a zero T and injects every `team` tagged field.
// T may be a struct or a pointer to a struct.
func Struct[T any]() Provider {
	fields, err := contract.TaggedFields(reflect.TypeFor[T]())
	return structProvider[T]{fields: fields, err: err}
}

func (p structProvider[T]) Type() reflect.Type { return reflect.TypeFor[T]() }

func (p structProvider[T]) Dependencies() []domain.Ref {
	refs := make([]domain.Ref, 0, len(p.fields))
	for _, f := range p.fields {
		refs = append(refs, f.Ref)
	}
	return refs
}

func (p structProvider[T]) Provide(_ context.Context, deps Deps) (any, error) {
	if p.err != nil {
		return nil, p.err
	}
	t := reflect.TypeFor[T]()
	ptr := t.Kind() == reflect.Pointer
	if ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot build %s: not a struct", t)
	}

	rv := reflect.New(t).Elem()
	for _, f := range p.fields {
		dep, err := deps.Get(f.Ref.Kind, f.Ref.Name)
		if err != nil {
			return nil, err
		}
		field := rv.FieldByIndex(f.Index)
		dv := reflect.ValueOf(dep)
		if !dv.IsValid() || !dv.Type().AssignableTo(field.Type()) {
			return nil, fmt.Errorf("cannot inject %s into %s.%s: %T is not assignable to %s",
				f.Ref, t.Name(), f.Name, dep, field.Type())
		}
		field.Set(dv)
	}
	if ptr {
		return rv.Addr().Interface(), nil
	}
	return rv.Interface(), nil
}
