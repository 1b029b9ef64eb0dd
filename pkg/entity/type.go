package entity

import (
	"fmt"
	"maps"

	"github.com/go-drift/liteclass/pkg/errors"
	"github.com/go-drift/liteclass/pkg/validate"
)

// Type is a composed record schema. Types are immutable once created.
type Type struct {
	name      string
	parent    *Type
	rt        *Runtime
	own       Schema
	merged    Schema
	methods   map[string]Method
	statics   map[string]any
	init      func(r *Record, s Settings) error
	construct func(r *Record, s Settings, parent func(Settings) error) error
}

// Extend composes a subtype of t from def. Descriptors are normalized (nil
// validators accept everything) and merged with the ancestors' tables, with
// def's declarations taking precedence by name.
func (t *Type) Extend(def Definition) (*Type, error) {
	name := def.Name
	if name == "" {
		name = t.name + "Subtype"
	}
	fail := func(field string, format string, args ...any) error {
		return errors.Report(&errors.RecordError{
			Op:    "entity.Extend",
			Kind:  errors.KindSchema,
			Type:  name,
			Field: field,
			Err:   fmt.Errorf(format, args...),
		})
	}

	ownProps := make(map[string]Property, len(def.Properties))
	for field, p := range def.Properties {
		if err := checkFieldName(field); err != nil {
			return nil, fail(field, "%w", err)
		}
		if _, dup := def.Aggregations[field]; dup {
			return nil, fail(field, "declared as both property and aggregation")
		}
		if _, inherited := t.merged.aggregations[field]; inherited {
			return nil, fail(field, "property overrides an inherited aggregation")
		}
		p.Validator = validate.OrAny(p.Validator)
		ownProps[field] = p
	}
	ownAggs := make(map[string]Aggregation, len(def.Aggregations))
	for field, a := range def.Aggregations {
		if err := checkFieldName(field); err != nil {
			return nil, fail(field, "%w", err)
		}
		if _, inherited := t.merged.properties[field]; inherited {
			return nil, fail(field, "aggregation overrides an inherited property")
		}
		a.Validator = validate.OrAny(a.Validator)
		ownAggs[field] = a
	}

	mergedProps := maps.Clone(t.merged.properties)
	maps.Copy(mergedProps, ownProps)
	mergedAggs := maps.Clone(t.merged.aggregations)
	maps.Copy(mergedAggs, ownAggs)

	return &Type{
		name:      name,
		parent:    t,
		rt:        t.rt,
		own:       newSchema(ownProps, ownAggs),
		merged:    newSchema(mergedProps, mergedAggs),
		methods:   maps.Clone(def.Methods),
		statics:   maps.Clone(def.Statics),
		init:      def.Init,
		construct: def.Construct,
	}, nil
}

// MustExtend is like Extend but panics on error.
func (t *Type) MustExtend(def Definition) *Type {
	sub, err := t.Extend(def)
	if err != nil {
		panic(err)
	}
	return sub
}

func checkFieldName(field string) error {
	switch field {
	case "":
		return fmt.Errorf("empty field name")
	case IDKey:
		return fmt.Errorf("field name %q is reserved", IDKey)
	}
	return nil
}

// Name returns the type name.
func (t *Type) Name() string { return t.name }

// Parent returns the parent type, or nil for a Base type.
func (t *Type) Parent() *Type { return t.parent }

// Runtime returns the runtime the type belongs to.
func (t *Type) Runtime() *Runtime { return t.rt }

// Schema returns the merged descriptor table, ancestors included.
func (t *Type) Schema() Schema { return t.merged }

// OwnSchema returns only the descriptors declared by this type.
func (t *Type) OwnSchema() Schema { return t.own }

// Property returns the merged descriptor of the named property.
func (t *Type) Property(name string) (Property, bool) { return t.merged.Property(name) }

// Aggregation returns the merged descriptor of the named aggregation.
func (t *Type) Aggregation(name string) (Aggregation, bool) { return t.merged.Aggregation(name) }

// PropertyNames returns every property name visible to the type.
func (t *Type) PropertyNames() []string { return t.merged.PropertyNames() }

// AggregationNames returns every aggregation name visible to the type.
func (t *Type) AggregationNames() []string { return t.merged.AggregationNames() }

// Is reports whether t is ancestor or derives from it.
func (t *Type) Is(ancestor *Type) bool {
	for cur := t; cur != nil; cur = cur.parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Method returns the nearest method named name in the type chain.
func (t *Type) Method(name string) (Method, bool) {
	for cur := t; cur != nil; cur = cur.parent {
		if m, ok := cur.methods[name]; ok && m != nil {
			return m, true
		}
	}
	return nil, false
}

// Static returns the nearest static member named name in the type chain.
func (t *Type) Static(name string) (any, bool) {
	for cur := t; cur != nil; cur = cur.parent {
		if v, ok := cur.statics[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Lookup returns the live record registered under id in the type's runtime,
// provided it is an instance of t.
func (t *Type) Lookup(id string) (*Record, bool) {
	r, ok := t.rt.Lookup(id)
	if !ok || !r.Is(t) {
		return nil, false
	}
	return r, true
}

// IDOf returns the id of r, or "" for nil.
func IDOf(r *Record) string {
	if r == nil {
		return ""
	}
	return r.id
}

// InstanceOf returns a validator accepting live records of t or its
// subtypes.
func InstanceOf(t *Type) validate.Func {
	return func(value any) bool {
		r, ok := value.(*Record)
		return ok && r != nil && !r.destroyed && r.Is(t)
	}
}
