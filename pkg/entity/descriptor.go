package entity

import (
	"maps"
	"slices"

	"github.com/go-drift/liteclass/pkg/validate"
)

// IDKey is the reserved settings key carrying a preferred record id.
const IDKey = "#"

// Settings is a batch of field assignments keyed by field name.
type Settings map[string]any

// Property describes a validated scalar field.
type Property struct {
	// Default is the initial value. Nil is the empty value. Slice and map
	// defaults are copied one level deep into each record; their elements
	// are shared.
	Default any
	// Validator accepts or rejects written values. Nil accepts everything.
	Validator validate.Func
}

// Aggregation describes an ordered, validated collection field.
type Aggregation struct {
	// Validator accepts or rejects individual items. Nil accepts everything.
	Validator validate.Func
}

// Method is an instance behavior attached to a type.
type Method func(r *Record, args ...any) (any, error)

// Definition declares a new type.
type Definition struct {
	// Name identifies the type in errors and logs.
	Name string
	// Properties declares the scalar fields added or overridden by the type.
	Properties map[string]Property
	// Aggregations declares the collection fields added or overridden by the type.
	Aggregations map[string]Aggregation
	// Methods are instance behaviors, looked up through the type chain by Record.Call.
	Methods map[string]Method
	// Statics are type-level values, looked up through the type chain by Type.Static.
	Statics map[string]any
	// Init runs after the record's state for this type level is initialized.
	Init func(r *Record, s Settings) error
	// Construct, if set, replaces the parent construction step. It must call
	// parent with the same settings so that ancestor state and hooks run.
	Construct func(r *Record, s Settings, parent func(Settings) error) error
}

// Schema is a read-only view of a descriptor table.
type Schema struct {
	properties   map[string]Property
	aggregations map[string]Aggregation
}

func newSchema(props map[string]Property, aggs map[string]Aggregation) Schema {
	if props == nil {
		props = map[string]Property{}
	}
	if aggs == nil {
		aggs = map[string]Aggregation{}
	}
	return Schema{properties: props, aggregations: aggs}
}

// Property returns the descriptor of the named property.
func (s Schema) Property(name string) (Property, bool) {
	p, ok := s.properties[name]
	return p, ok
}

// Aggregation returns the descriptor of the named aggregation.
func (s Schema) Aggregation(name string) (Aggregation, bool) {
	a, ok := s.aggregations[name]
	return a, ok
}

// PropertyNames returns the declared property names in sorted order.
func (s Schema) PropertyNames() []string {
	return slices.Sorted(maps.Keys(s.properties))
}

// AggregationNames returns the declared aggregation names in sorted order.
func (s Schema) AggregationNames() []string {
	return slices.Sorted(maps.Keys(s.aggregations))
}

// Declares reports whether name is a property or an aggregation.
func (s Schema) Declares(name string) bool {
	_, p := s.properties[name]
	_, a := s.aggregations[name]
	return p || a
}
