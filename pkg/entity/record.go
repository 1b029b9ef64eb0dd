package entity

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/go-drift/liteclass/pkg/errors"
	"github.com/go-drift/liteclass/pkg/event"
)

// Destroyer is implemented by values torn down together with the record
// that holds them.
type Destroyer interface {
	Destroy()
}

// Record is an instance of a Type.
//
// Record is NOT safe for concurrent use.
type Record struct {
	id        string
	typ       *Type
	props     map[string]any
	aggs      map[string][]any
	events    *event.Emitter[Change]
	disposers []func()
	destroyed bool
}

// New constructs a record of type t.
//
// A string under IDKey in settings is used as the record id when it is not
// already live. The remaining settings are applied level by level, ancestor
// first: each level resets its own fields to their defaults, applies the
// settings it declares, and runs its Init hook. Settings naming undeclared
// fields are ignored. Construction emits no change events.
func (t *Type) New(settings Settings) (*Record, error) {
	preferred := ""
	s := make(Settings, len(settings))
	for k, v := range settings {
		if k == IDKey {
			if id, ok := v.(string); ok {
				preferred = id
			}
			continue
		}
		s[k] = v
	}

	r := &Record{
		typ:    t,
		props:  make(map[string]any, len(t.merged.properties)),
		aggs:   make(map[string][]any, len(t.merged.aggregations)),
		events: event.NewEmitter[Change](),
	}
	r.id = t.rt.registry.Register(r, preferred)
	r.resetState(t.merged)

	if err := t.constructLevel(r, s); err != nil {
		r.teardown()
		return nil, errors.Report(&errors.RecordError{
			Op:   "entity.New",
			Kind: errors.KindInit,
			Type: t.name,
			Err:  err,
		})
	}

	t.rt.metrics.recordCreated()
	t.rt.logger().Debug("record created", zap.String("type", t.name), zap.String("id", r.id))
	return r, nil
}

// MustNew is like New but panics on error.
func (t *Type) MustNew(settings Settings) *Record {
	r, err := t.New(settings)
	if err != nil {
		panic(err)
	}
	return r
}

func (t *Type) constructLevel(r *Record, s Settings) error {
	if t.parent != nil {
		parent := func(s Settings) error {
			return t.parent.constructLevel(r, s)
		}
		var err error
		if t.construct != nil {
			err = t.construct(r, s, parent)
		} else {
			err = parent(s)
		}
		if err != nil {
			return err
		}
	}
	if err := r.apply(s, applyOptions{
		initializeFirst: true,
		suppressEvent:   true,
		schema:          &t.own,
	}); err != nil {
		return err
	}
	if t.init != nil {
		return t.init(r, s)
	}
	return nil
}

// resetState sets every property of schema to its default and every
// aggregation to an empty sequence, without events.
func (r *Record) resetState(schema Schema) {
	for name, p := range schema.properties {
		r.props[name] = freshDefault(p.Default)
	}
	for name := range schema.aggregations {
		r.aggs[name] = []any{}
	}
}

// freshDefault returns d, or a one-level copy of d when it is a non-nil
// slice or map, so that records never share default storage.
func freshDefault(d any) any {
	rv := reflect.ValueOf(d)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return d
		}
		c := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(c, rv)
		return c.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return d
		}
		c := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			c.SetMapIndex(iter.Key(), iter.Value())
		}
		return c.Interface()
	}
	return d
}

// ID returns the record's unique identifier.
func (r *Record) ID() string { return r.id }

// Type returns the record's type.
func (r *Record) Type() *Type { return r.typ }

// Is reports whether the record is an instance of t or one of its subtypes.
func (r *Record) Is(t *Type) bool { return r.typ.Is(t) }

// Destroyed reports whether Destroy has been called.
func (r *Record) Destroyed() bool { return r.destroyed }

// Call invokes the nearest instance method named name.
func (r *Record) Call(name string, args ...any) (any, error) {
	if err := r.checkAlive("entity.Call", name); err != nil {
		return nil, err
	}
	m, ok := r.typ.Method(name)
	if !ok {
		return nil, &errors.RecordError{
			Op:    "entity.Call",
			Kind:  errors.KindMethod,
			Type:  r.typ.name,
			Field: name,
			Err:   fmt.Errorf("method not defined"),
		}
	}
	return m(r, args...)
}

// OnDestroy registers fn to run when the record is destroyed. Functions run
// in reverse registration order. The returned function unregisters fn. If
// the record is already destroyed, fn runs immediately.
func (r *Record) OnDestroy(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	if r.destroyed {
		fn()
		return func() {}
	}
	index := len(r.disposers)
	r.disposers = append(r.disposers, fn)
	return func() {
		if index < len(r.disposers) {
			r.disposers[index] = nil
		}
	}
}

// Destroy tears the record down: listeners are removed, OnDestroy functions
// run, held values implementing Destroyer are destroyed, and the id is
// released. Destroy is idempotent. After Destroy, reads report absence and
// writes fail with a KindDestroyed error.
func (r *Record) Destroy() {
	if r.destroyed {
		return
	}
	r.teardown()
	r.typ.rt.metrics.recordDestroyed()
	r.typ.rt.logger().Debug("record destroyed", zap.String("type", r.typ.name), zap.String("id", r.id))
}

func (r *Record) teardown() {
	r.destroyed = true
	r.events.OffAll()

	for i := len(r.disposers) - 1; i >= 0; i-- {
		if fn := r.disposers[i]; fn != nil {
			runDisposer(fn)
		}
	}
	r.disposers = nil

	props, aggs := r.props, r.aggs
	r.props, r.aggs = nil, nil
	for _, v := range props {
		destroyValue(v)
	}
	for _, list := range aggs {
		for _, item := range list {
			destroyValue(item)
		}
	}

	if cur, ok := r.typ.rt.registry.Lookup(r.id); ok && cur == r {
		r.typ.rt.registry.Release(r.id)
	}
}

func runDisposer(fn func()) {
	defer errors.Recover("entity.Destroy")
	fn()
}

func destroyValue(v any) {
	if d, ok := v.(Destroyer); ok && d != nil {
		if r, isRecord := d.(*Record); isRecord && r == nil {
			return
		}
		d.Destroy()
	}
}

func (r *Record) checkAlive(op, field string) error {
	if !r.destroyed {
		return nil
	}
	return &errors.RecordError{
		Op:    op,
		Kind:  errors.KindDestroyed,
		Type:  r.typ.name,
		Field: field,
		Err:   fmt.Errorf("record %s has been destroyed", r.id),
	}
}

func (r *Record) unknown(namespace, field string) error {
	return &errors.UnknownFieldError{Type: r.typ.name, Namespace: namespace, Field: field}
}
