package contract

import (
	"fmt"
	"reflect"

	"github.com/aretw0/teamwork/pkg/domain"
)

// TagName is the struct tag declaring a dependency: `team:"worker:email"`.
const TagName = "team"

// TaggedField is a struct field declaring a dependency.
type TaggedField struct {
	Name  string
	Index []int
	Ref   domain.Ref
}

// TaggedFields returns the dependency fields of t (or of the struct t points to).
// Tagged fields must be exported so the container can inject them.
func TaggedFields(t reflect.Type) ([]TaggedField, error) {
	if t == nil {
		return nil, nil
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, nil
	}

	var out []TaggedField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup(TagName)
		if !ok || tag == "" || tag == "-" {
			continue
		}
		ref, err := domain.ParseRef(tag)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name(), f.Name, err)
		}
		if !f.IsExported() {
			return nil, fmt.Errorf("%s.%s: dependency field must be exported", t.Name(), f.Name)
		}
		out = append(out, TaggedField{Name: f.Name, Index: f.Index, Ref: ref})
	}
	return out, nil
}

// Dependencies returns the refs declared by t's struct tags.
func Dependencies(t reflect.Type) ([]domain.Ref, error) {
	fields, err := TaggedFields(t)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.Ref, 0, len(fields))
	for _, f := range fields {
		refs = append(refs, f.Ref)
	}
	return refs, nil
}
