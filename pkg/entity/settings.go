package entity

import (
	"maps"
	"reflect"
	"slices"
)

// ApplyOption configures ApplySettings.
type ApplyOption func(*applyOptions)

type applyOptions struct {
	initializeFirst bool
	suppressEvent   bool
	schema          *Schema
}

// InitializeFirst resets every field of the applied schema to its default
// (aggregations to empty) before the settings are written. The reset never
// emits events.
func InitializeFirst() ApplyOption {
	return func(o *applyOptions) {
		o.initializeFirst = true
	}
}

// SuppressEvent skips the consolidated "change" / "change:update" pair.
func SuppressEvent() ApplyOption {
	return func(o *applyOptions) {
		o.suppressEvent = true
	}
}

// WithSchema restricts ApplySettings to the fields of s, typically the
// OwnSchema of an ancestor type. Every field of s must be declared by the
// record's type.
func WithSchema(s Schema) ApplyOption {
	return func(o *applyOptions) {
		o.schema = &s
	}
}

// ApplySettings writes a batch of fields. Property keys are written as by
// SetProperty; aggregation keys append the value, or each element of the
// value when it is a slice or array of any element type, in order. A
// []byte and a string are single items. A nil aggregation value adds
// nothing. Unknown keys and the IDKey are ignored. Individual writes emit
// nothing; unless SuppressEvent is given, one "change" and one
// "change:update" event are emitted for the whole batch.
func (r *Record) ApplySettings(settings Settings, opts ...ApplyOption) error {
	if err := r.checkAlive("entity.ApplySettings", ""); err != nil {
		return err
	}
	var o applyOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return r.apply(settings, o)
}

func (r *Record) apply(settings Settings, o applyOptions) error {
	schema := r.typ.merged
	if o.schema != nil {
		schema = *o.schema
		for name := range schema.properties {
			if _, ok := r.typ.merged.properties[name]; !ok {
				return r.unknown("property", name)
			}
		}
		for name := range schema.aggregations {
			if _, ok := r.typ.merged.aggregations[name]; !ok {
				return r.unknown("aggregation", name)
			}
		}
	}

	if o.initializeFirst {
		r.resetState(schema)
	}

	for _, name := range slices.Sorted(maps.Keys(settings)) {
		value := settings[name]
		if p, ok := schema.properties[name]; ok {
			r.setProperty(name, p, value, true)
			continue
		}
		a, ok := schema.aggregations[name]
		if !ok {
			continue
		}
		for _, item := range expand(value) {
			if a.Validator(item) {
				r.aggs[name] = append(r.list(name), item)
			}
		}
	}

	if !o.suppressEvent {
		r.emit(Change{action: ActionUpdate, kind: NoField, index: -1})
	}
	return nil
}

// expand turns a settings value into the items to add to an aggregation.
func expand(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []byte:
		return []any{v}
	}
	rv := reflect.ValueOf(value)
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return []any{value}
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items
}
