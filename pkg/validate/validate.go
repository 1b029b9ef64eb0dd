// Package validate provides the value validators used by property and
// aggregation descriptors.
//
// A validator is a predicate: it returns true to accept a value. Rejection
// is not an error; the runtime simply ignores a rejected write.
//
//	validate.OfType[string]()
//	validate.All(validate.NotNil, validate.MustTag("min=1,max=80"))
package validate

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Func reports whether value is acceptable.
type Func func(value any) bool

// Any accepts every value, including nil.
func Any(any) bool { return true }

// NotNil rejects nil and typed nil pointers, maps, slices, funcs and
// channels.
func NotNil(value any) bool {
	if value == nil {
		return false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// OfType accepts values whose dynamic type is T (or implements T when T is
// an interface).
func OfType[T any]() Func {
	return func(value any) bool {
		_, ok := value.(T)
		return ok
	}
}

// OneOf accepts values equal to one of allowed.
func OneOf(allowed ...any) Func {
	return func(value any) bool {
		for _, a := range allowed {
			if reflect.DeepEqual(a, value) {
				return true
			}
		}
		return false
	}
}

// All accepts a value only if every non-nil fn accepts it.
func All(fns ...Func) Func {
	return func(value any) bool {
		for _, fn := range fns {
			if fn != nil && !fn(value) {
				return false
			}
		}
		return true
	}
}

// OrAny returns fn, or Any if fn is nil.
func OrAny(fn Func) Func {
	if fn == nil {
		return Any
	}
	return fn
}

var (
	engineOnce sync.Once
	engine     *validator.Validate
)

// Engine returns the shared go-playground validator instance.
func Engine() *validator.Validate {
	engineOnce.Do(func() {
		engine = validator.New(validator.WithRequiredStructEnabled())
	})
	return engine
}

// Tag builds a validator from a go-playground tag such as "required,min=3".
// The tag is checked eagerly; an unknown validation name is an error.
func Tag(tag string) (Func, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Any, nil
	}
	v := Engine()
	if r, _ := safeVar(v, "", tag); r != nil {
		if msg := fmt.Sprint(r); strings.Contains(msg, "Undefined validation function") {
			return nil, fmt.Errorf("invalid validation tag %q: %s", tag, msg)
		}
	}
	return func(value any) bool {
		r, err := safeVar(v, value, tag)
		return r == nil && err == nil
	}, nil
}

// safeVar runs v.Var and also returns the recovered panic value, if any.
// Some validations (dive on a scalar, for example) panic instead of
// returning an error.
func safeVar(v *validator.Validate, value any, tag string) (panicked any, err error) {
	defer func() { panicked = recover() }()
	return nil, v.Var(value, tag)
}

// MustTag is like Tag but panics on an invalid tag.
func MustTag(tag string) Func {
	fn, err := Tag(tag)
	if err != nil {
		panic(err)
	}
	return fn
}

// Kind returns a validator for a named value kind: "any", "string", "bool",
// "int", "float", "number", "list" or "map". The empty name means "any".
func Kind(name string) (Func, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "any":
		return Any, nil
	case "string":
		return OfType[string](), nil
	case "bool", "boolean":
		return OfType[bool](), nil
	case "int", "integer":
		return isKind(reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64), nil
	case "float":
		return isKind(reflect.Float32, reflect.Float64), nil
	case "number":
		return isKind(reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64), nil
	case "list":
		return isKind(reflect.Slice, reflect.Array), nil
	case "map":
		return isKind(reflect.Map), nil
	}
	return nil, fmt.Errorf("unknown kind %q", name)
}

func isKind(kinds ...reflect.Kind) Func {
	return func(value any) bool {
		if value == nil {
			return false
		}
		k := reflect.TypeOf(value).Kind()
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
		return false
	}
}
