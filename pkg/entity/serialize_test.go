package entity_test

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/go-drift/liteclass/pkg/entity"
	"github.com/go-drift/liteclass/pkg/errors"
)

func TestToPlainObject(t *testing.T) {
	f := newFixture(t)
	task := f.item.MustExtend(entity.Definition{
		Name:         "Task",
		Properties:   map[string]entity.Property{"priority": {Default: 1}},
		Aggregations: map[string]entity.Aggregation{"notes": {}},
	})
	r := mustNew(t, task, entity.Settings{"title": "t", "notes": []string{"n1"}})

	obj := r.ToPlainObject()
	if len(obj) != 4 {
		t.Errorf("keys = %d, want 4: %v", len(obj), obj)
	}
	if obj["done"] != false || obj["title"] != "t" || obj["priority"] != 1 {
		t.Errorf("properties = %v", obj)
	}
	notes := obj["notes"].([]any)
	if !slices.Equal(notes, []any{"n1"}) {
		t.Errorf("notes = %v", notes)
	}

	// Aggregations are shared, not copied.
	live := aggregation(t, r, "notes")
	if &live[0] != &notes[0] {
		t.Error("aggregation sequence was copied")
	}
}

func TestRoundTrip(t *testing.T) {
	f := newFixture(t)
	a := mustNew(t, f.item, entity.Settings{"title": "a"})
	b := mustNew(t, f.item, entity.Settings{"title": "b", "done": true})
	orig := mustNew(t, f.list, entity.Settings{
		"name":  "weekend",
		"items": []any{a, b},
		"tags":  []string{"x", "y", "x"},
	})

	dup := mustNew(t, f.list, entity.Settings(orig.ToPlainObject()))

	for _, name := range f.list.PropertyNames() {
		want, _ := orig.GetProperty(name)
		got, _ := dup.GetProperty(name)
		if got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
	for _, name := range f.list.AggregationNames() {
		want := aggregation(t, orig, name)
		got := aggregation(t, dup, name)
		if !slices.Equal(got, want) {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
	if dup.ID() == orig.ID() {
		t.Error("round trip reused the id")
	}
}

func TestRoundTrip_Fresh(t *testing.T) {
	f := newFixture(t)
	orig := mustNew(t, f.list, nil)
	dup := mustNew(t, f.list, entity.Settings(orig.ToPlainObject()))
	if v, _ := dup.GetProperty("name"); v != "untitled" {
		t.Errorf("name = %v", v)
	}
	if got := aggregation(t, dup, "items"); len(got) != 0 {
		t.Errorf("items = %v", got)
	}
}

func TestClone(t *testing.T) {
	f := newFixture(t)
	orig := mustNew(t, f.list, entity.Settings{"tags": []string{"a"}})
	clone, err := orig.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if clone.ID() == orig.ID() || clone.Type() != f.list {
		t.Error("clone should be a new record of the same type")
	}
	_ = clone.AddAggregation("tags", "b")
	if got := aggregation(t, orig, "tags"); len(got) != 1 {
		t.Errorf("original tags = %v, want [a]", got)
	}
}

func TestMarshalJSON(t *testing.T) {
	f := newFixture(t)
	it := mustNew(t, f.item, entity.Settings{"title": "milk"})
	l := mustNew(t, f.list, entity.Settings{"name": "shop", "items": it})

	data, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got["name"] != "shop" {
		t.Errorf("name = %v", got["name"])
	}
	items, _ := got["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items = %v", got["items"])
	}
	first, _ := items[0].(map[string]any)
	if first["title"] != "milk" || first["done"] != false {
		t.Errorf("nested item = %v", first)
	}
}

func TestMarshalJSON_SelfReference(t *testing.T) {
	f := newFixture(t)
	typ := f.rt.Base().MustExtend(entity.Definition{
		Name:       "Node",
		Properties: map[string]entity.Property{"self": {}},
	})
	r := mustNew(t, typ, nil)
	_ = r.SetProperty("self", r)

	_, err := r.MarshalJSON()
	if !errors.IsKind(err, errors.KindCycle) {
		t.Errorf("MarshalJSON error = %v, want cycle error", err)
	}
	if _, err := json.Marshal(r); !errors.IsKind(err, errors.KindCycle) {
		t.Errorf("json.Marshal error = %v, want cycle error", err)
	}
}

func TestMarshalJSON_MutualReference(t *testing.T) {
	f := newFixture(t)
	typ := f.rt.Base().MustExtend(entity.Definition{
		Name:         "Node",
		Properties:   map[string]entity.Property{"peer": {}},
		Aggregations: map[string]entity.Aggregation{"children": {}},
	})
	a := mustNew(t, typ, nil)
	b := mustNew(t, typ, nil)
	_ = a.SetProperty("peer", b)
	_ = b.AddAggregation("children", a)

	for _, r := range []*entity.Record{a, b} {
		if _, err := r.MarshalJSON(); !errors.IsKind(err, errors.KindCycle) {
			t.Errorf("MarshalJSON(%s) error = %v, want cycle error", r.ID(), err)
		}
	}

	// Breaking the loop makes both encodable again.
	_, _ = b.RemoveAllAggregation("children")
	if _, err := a.MarshalJSON(); err != nil {
		t.Errorf("MarshalJSON after unlinking: %v", err)
	}
}

func TestMarshalJSON_NestedContainers(t *testing.T) {
	f := newFixture(t)
	typ := f.rt.Base().MustExtend(entity.Definition{
		Name: "Holder",
		Properties: map[string]entity.Property{
			"list":  {},
			"index": {},
			"raw":   {},
		},
		Aggregations: map[string]entity.Aggregation{"loop": {}},
	})
	shared := mustNew(t, f.item, entity.Settings{"title": "shared"})
	h := mustNew(t, typ, entity.Settings{
		"list":  []*entity.Record{shared, shared},
		"index": map[string]*entity.Record{"first": shared},
		"raw":   []byte("hi"),
	})

	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got struct {
		List  []map[string]any          `json:"list"`
		Index map[string]map[string]any `json:"index"`
		Raw   string                    `json:"raw"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got.List) != 2 || got.List[1]["title"] != "shared" {
		t.Errorf("list = %v", got.List)
	}
	if got.Index["first"]["title"] != "shared" {
		t.Errorf("index = %v", got.Index)
	}
	if got.Raw != "aGk=" {
		t.Errorf("raw = %q, want base64 of hi", got.Raw)
	}

	_ = h.AddAggregation("loop", []any{h})
	if _, err := json.Marshal(h); !errors.IsKind(err, errors.KindCycle) {
		t.Errorf("error = %v, want cycle error for a record inside a nested slice", err)
	}
}
