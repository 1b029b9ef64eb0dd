package entity

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-drift/liteclass/pkg/errors"
)

// ToPlainObject returns the current value of every property and the current
// sequence of every aggregation declared along the type chain. Aggregation
// slices are shared with the record, not copied. A destroyed record yields
// nil.
func (r *Record) ToPlainObject() map[string]any {
	if r.destroyed {
		return nil
	}
	out := make(map[string]any, len(r.typ.merged.properties)+len(r.typ.merged.aggregations))
	for name := range r.typ.merged.properties {
		out[name], _ = r.GetProperty(name)
	}
	for name := range r.typ.merged.aggregations {
		out[name] = r.list(name)
	}
	return out
}

// MarshalJSON encodes ToPlainObject with nested records expanded in place,
// including records held inside slices, arrays and string-keyed maps. A
// record that is reachable from itself fails with a KindCycle error. The
// same record may appear more than once as long as it does not contain
// itself.
func (r *Record) MarshalJSON() ([]byte, error) {
	tree, err := r.tree(make(map[*Record]bool))
	if err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

// tree converts r to plain maps and slices. visiting holds the records on
// the current path.
func (r *Record) tree(visiting map[*Record]bool) (any, error) {
	if r == nil || r.destroyed {
		return nil, nil
	}
	if visiting[r] {
		return nil, &errors.RecordError{
			Op:   "entity.MarshalJSON",
			Kind: errors.KindCycle,
			Type: r.typ.name,
			Err:  fmt.Errorf("record %s contains itself", r.id),
		}
	}
	visiting[r] = true
	defer delete(visiting, r)

	obj := r.ToPlainObject()
	for name, v := range obj {
		tv, err := treeValue(v, visiting)
		if err != nil {
			return nil, err
		}
		obj[name] = tv
	}
	return obj, nil
}

func treeValue(v any, visiting map[*Record]bool) (any, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case *Record:
		return v.tree(visiting)
	case []byte, json.Marshaler:
		return v, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return v, nil
		}
		items := make([]any, rv.Len())
		for i := range items {
			item, err := treeValue(rv.Index(i).Interface(), visiting)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return items, nil
	case reflect.Map:
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
			return v, nil
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			item, err := treeValue(iter.Value().Interface(), visiting)
			if err != nil {
				return nil, err
			}
			m[iter.Key().String()] = item
		}
		return m, nil
	}
	return v, nil
}

// Clone constructs a new record of the same type from ToPlainObject. The
// clone gets its own id and aggregation storage; property values are shared.
func (r *Record) Clone() (*Record, error) {
	if err := r.checkAlive("entity.Clone", ""); err != nil {
		return nil, err
	}
	return r.typ.New(Settings(r.ToPlainObject()))
}
