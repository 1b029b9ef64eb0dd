package entity

import (
	"reflect"
	"slices"
)

// MutationOption adjusts a single write.
type MutationOption func(*mutation)

type mutation struct {
	silent bool
}

// Silent suppresses the change events of a write.
func Silent() MutationOption {
	return func(m *mutation) {
		m.silent = true
	}
}

func isSilent(opts []MutationOption) bool {
	var m mutation
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m.silent
}

// GetProperty returns the current value of the named property. It reports
// false if the property is not declared.
func (r *Record) GetProperty(name string) (any, bool) {
	if r.destroyed {
		return nil, false
	}
	desc, ok := r.typ.merged.properties[name]
	if !ok {
		return nil, false
	}
	if v, set := r.props[name]; set {
		return v, true
	}
	return desc.Default, true
}

// GetAggregation returns the live item sequence of the named aggregation.
// It reports false if the aggregation is not declared. The returned slice
// shares storage with the record and must not be modified.
func (r *Record) GetAggregation(name string) ([]any, bool) {
	if r.destroyed {
		return nil, false
	}
	if _, ok := r.typ.merged.aggregations[name]; !ok {
		return nil, false
	}
	return r.list(name), true
}

// Get returns a property value or an aggregation sequence by name.
func (r *Record) Get(name string) (any, bool) {
	if v, ok := r.GetProperty(name); ok {
		return v, true
	}
	if list, ok := r.GetAggregation(name); ok {
		return list, true
	}
	return nil, false
}

// GetAggregationAt returns the item at index, or nil if index is out of
// range.
func (r *Record) GetAggregationAt(name string, index int) (any, error) {
	list, _, err := r.aggregation("entity.GetAggregationAt", name)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(list) {
		return nil, nil
	}
	return list[index], nil
}

// IndexOfAggregation returns the position of the first item equal to item,
// or -1.
func (r *Record) IndexOfAggregation(name string, item any) (int, error) {
	list, _, err := r.aggregation("entity.IndexOfAggregation", name)
	if err != nil {
		return -1, err
	}
	return indexOf(list, item), nil
}

// AggregationAsSet returns the aggregation items as a set for membership
// tests. Items that cannot be map keys (slices, maps, funcs) are left out.
func (r *Record) AggregationAsSet(name string) (map[any]bool, error) {
	list, _, err := r.aggregation("entity.AggregationAsSet", name)
	if err != nil {
		return nil, err
	}
	set := make(map[any]bool, len(list))
	for _, item := range list {
		if item == nil || reflect.ValueOf(item).Comparable() {
			set[item] = true
		}
	}
	return set, nil
}

// SetProperty writes value to the named property. A value rejected by the
// validator, or equal to the current value, is ignored without an event.
func (r *Record) SetProperty(name string, value any, opts ...MutationOption) error {
	if err := r.checkAlive("entity.SetProperty", name); err != nil {
		return err
	}
	desc, ok := r.typ.merged.properties[name]
	if !ok {
		return r.unknown("property", name)
	}
	r.setProperty(name, desc, value, isSilent(opts))
	return nil
}

func (r *Record) setProperty(name string, desc Property, value any, silent bool) {
	if !desc.Validator(value) {
		return
	}
	old, set := r.props[name]
	if !set {
		old = desc.Default
	} else if equal(old, value) {
		return
	}
	r.props[name] = value
	if !silent {
		r.emit(Change{action: ActionSet, kind: PropertyField, field: name, oldValue: old, newValue: value, index: -1})
	}
}

// AddAggregation appends item to the named aggregation.
func (r *Record) AddAggregation(name string, item any, opts ...MutationOption) error {
	list, desc, err := r.aggregation("entity.AddAggregation", name)
	if err != nil {
		return err
	}
	if !desc.Validator(item) {
		return nil
	}
	r.aggs[name] = append(list, item)
	if !isSilent(opts) {
		r.emit(Change{action: ActionAdd, kind: AggregationField, field: name, value: item, index: -1})
	}
	return nil
}

// AddFirstAggregation prepends item to the named aggregation.
func (r *Record) AddFirstAggregation(name string, item any, opts ...MutationOption) error {
	list, desc, err := r.aggregation("entity.AddFirstAggregation", name)
	if err != nil {
		return err
	}
	if !desc.Validator(item) {
		return nil
	}
	r.aggs[name] = slices.Insert(list, 0, item)
	if !isSilent(opts) {
		r.emit(Change{action: ActionAddFirst, kind: AggregationField, field: name, value: item, index: -1})
	}
	return nil
}

// InsertAggregationAt inserts item before position index. An index outside
// [0, len) appends the item.
func (r *Record) InsertAggregationAt(name string, index int, item any, opts ...MutationOption) error {
	list, desc, err := r.aggregation("entity.InsertAggregationAt", name)
	if err != nil {
		return err
	}
	if !desc.Validator(item) {
		return nil
	}
	if index < 0 || index >= len(list) {
		index = len(list)
	}
	r.aggs[name] = slices.Insert(list, index, item)
	if !isSilent(opts) {
		r.emit(Change{action: ActionInsertAt, kind: AggregationField, field: name, value: item, index: index})
	}
	return nil
}

// RemoveFirstAggregation removes and returns the first item. On an empty
// aggregation it returns nil; the event is emitted either way.
func (r *Record) RemoveFirstAggregation(name string, opts ...MutationOption) (any, error) {
	list, _, err := r.aggregation("entity.RemoveFirstAggregation", name)
	if err != nil {
		return nil, err
	}
	var value any
	if len(list) > 0 {
		value = list[0]
		r.aggs[name] = slices.Delete(list, 0, 1)
	}
	if !isSilent(opts) {
		r.emit(Change{action: ActionRemoveFirst, kind: AggregationField, field: name, value: value, index: -1})
	}
	return value, nil
}

// RemoveLastAggregation removes and returns the last item. On an empty
// aggregation it returns nil; the event is emitted either way.
func (r *Record) RemoveLastAggregation(name string, opts ...MutationOption) (any, error) {
	list, _, err := r.aggregation("entity.RemoveLastAggregation", name)
	if err != nil {
		return nil, err
	}
	var value any
	if n := len(list); n > 0 {
		value = list[n-1]
		r.aggs[name] = slices.Delete(list, n-1, n)
	}
	if !isSilent(opts) {
		r.emit(Change{action: ActionRemoveLast, kind: AggregationField, field: name, value: value, index: -1})
	}
	return value, nil
}

// RemoveAggregation removes the first item equal to item and returns it.
// If no item matches it returns nil and emits nothing.
func (r *Record) RemoveAggregation(name string, item any, opts ...MutationOption) (any, error) {
	list, _, err := r.aggregation("entity.RemoveAggregation", name)
	if err != nil {
		return nil, err
	}
	i := indexOf(list, item)
	if i < 0 {
		return nil, nil
	}
	value := list[i]
	r.aggs[name] = slices.Delete(list, i, i+1)
	if !isSilent(opts) {
		r.emit(Change{action: ActionRemove, kind: AggregationField, field: name, value: value, index: i})
	}
	return value, nil
}

// RemoveAggregationAt removes and returns the item at index. Index 0 is the
// first item. An index outside [0, len) is a no-op returning nil.
func (r *Record) RemoveAggregationAt(name string, index int, opts ...MutationOption) (any, error) {
	list, _, err := r.aggregation("entity.RemoveAggregationAt", name)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(list) {
		return nil, nil
	}
	value := list[index]
	r.aggs[name] = slices.Delete(list, index, index+1)
	if !isSilent(opts) {
		r.emit(Change{action: ActionRemoveAt, kind: AggregationField, field: name, value: value, index: index})
	}
	return value, nil
}

// RemoveAllAggregation empties the aggregation and returns the removed
// items in order.
func (r *Record) RemoveAllAggregation(name string, opts ...MutationOption) ([]any, error) {
	list, _, err := r.aggregation("entity.RemoveAllAggregation", name)
	if err != nil {
		return nil, err
	}
	r.aggs[name] = []any{}
	if !isSilent(opts) {
		r.emit(Change{action: ActionRemoveAll, kind: AggregationField, field: name, value: slices.Clone(list), index: -1})
	}
	return list, nil
}

// aggregation resolves a declared aggregation for the strict operations.
func (r *Record) aggregation(op, name string) ([]any, Aggregation, error) {
	if err := r.checkAlive(op, name); err != nil {
		return nil, Aggregation{}, err
	}
	desc, ok := r.typ.merged.aggregations[name]
	if !ok {
		return nil, Aggregation{}, r.unknown("aggregation", name)
	}
	return r.list(name), desc, nil
}

func (r *Record) list(name string) []any {
	list, ok := r.aggs[name]
	if !ok || list == nil {
		list = []any{}
		r.aggs[name] = list
	}
	return list
}

// emit stamps c and dispatches it on the three event tiers.
func (r *Record) emit(c Change) {
	c.source = r
	c.timestamp = r.typ.rt.clock.Now()
	r.typ.rt.metrics.recordChange(c.action)

	r.events.Emit(EventChange, c)
	if c.kind == NoField {
		r.events.Emit(FieldEvent(string(c.action)), c)
		return
	}
	r.events.Emit(FieldEvent(c.field), c)
	r.events.Emit(ActionEvent(c.field, c.action), c)
}

func indexOf(list []any, item any) int {
	for i, v := range list {
		if equal(v, item) {
			return i
		}
	}
	return -1
}

// equal compares comparable values with == (records by identity) and
// everything else structurally.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
