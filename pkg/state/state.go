// Package state implements the immutable state contract: every transition
// returns a new value and never alters its input.
//
// A state is a plain Go struct passed by value. Reference-typed fields
// (maps, slices, pointers) are what make a shallow copy unsafe, so every
// operation here works on a deep copy.
package state

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/mitchellh/mapstructure"
	"github.com/tiendc/go-deepcopy"
)

// Copy returns a deep copy of s, unexported fields included.
//
// A struct with unexported fields stored directly as a map key or value
// cannot be copied without losing those fields and is rejected.
func Copy[S any](s S) (S, error) {
	var out S
	if err := copyable(reflect.TypeOf(&s).Elem()); err != nil {
		return out, fmt.Errorf("state: copy %T: %w", s, err)
	}
	// The source must be addressable for unexported fields to be copied.
	if err := deepcopy.Copy(&out, &s); err != nil {
		return out, fmt.Errorf("state: copy %T: %w", s, err)
	}
	return out, nil
}

var copyableTypes sync.Map // reflect.Type -> error

func copyable(t reflect.Type) error {
	if v, ok := copyableTypes.Load(t); ok {
		err, _ := v.(error)
		return err
	}
	err := checkCopyable(t, false, make(map[copyKey]bool))
	copyableTypes.Store(t, err)
	return err
}

type copyKey struct {
	t     reflect.Type
	inMap bool
}

// checkCopyable walks t looking for unexported fields that would be read
// from a non-addressable value. Map entries are the only such values:
// pointers and slices dereference to addressable memory.
func checkCopyable(t reflect.Type, inMap bool, seen map[copyKey]bool) error {
	key := copyKey{t, inMap}
	if seen[key] {
		return nil
	}
	seen[key] = true

	switch t.Kind() {
	case reflect.Pointer, reflect.Slice:
		return checkCopyable(t.Elem(), false, seen)
	case reflect.Array:
		return checkCopyable(t.Elem(), inMap, seen)
	case reflect.Map:
		if err := checkCopyable(t.Key(), true, seen); err != nil {
			return err
		}
		return checkCopyable(t.Elem(), true, seen)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if inMap && !f.IsExported() {
				return fmt.Errorf("map entry %s has unexported field %s", t, f.Name)
			}
			if err := checkCopyable(f.Type, inMap, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clone is like Copy but panics when s holds a value that cannot be copied
// (channels, functions). Such values are not valid states.
func Clone[S any](s S) S {
	out, err := Copy(s)
	if err != nil {
		panic(err)
	}
	return out
}

// With returns a copy of s with fn applied to it. s is left untouched.
func With[S any](s S, fn func(*S)) S {
	out := Clone(s)
	fn(&out)
	return out
}

// WithOverrides returns a copy of s with the given fields replaced.
// Keys are matched against json tags, then field names (case-insensitive).
// Overridden maps and slices are replaced, not merged. An unknown key or an incompatible value is an error and s is returned
// unchanged.
func WithOverrides[S any](s S, overrides map[string]any) (S, error) {
	out, err := Copy(s)
	if err != nil {
		return s, err
	}
	if len(overrides) == 0 {
		return out, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &out,
		TagName:     "json",
		ErrorUnused: true,
		ZeroFields:  true,
		Squash:      true,
	})
	if err != nil {
		return s, fmt.Errorf("state: override %T: %w", s, err)
	}
	if err := decoder.Decode(overrides); err != nil {
		return s, fmt.Errorf("state: override %T: %w", s, err)
	}
	return out, nil
}

// Equal reports whether a and b are structurally equal, unexported fields
// included.
func Equal[S any](a, b S, opts ...cmp.Option) bool {
	return cmp.Equal(a, b, append(opts, allFields)...)
}

// Diff renders the difference between a and b, or "" when they are equal.
func Diff[S any](a, b S, opts ...cmp.Option) string {
	return cmp.Diff(a, b, append(opts, allFields)...)
}

var allFields = cmp.Exporter(func(reflect.Type) bool { return true })
