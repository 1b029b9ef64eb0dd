package entity_test

import (
	"testing"

	"github.com/go-drift/liteclass/pkg/entity"
	entitytest "github.com/go-drift/liteclass/pkg/testing"
	"github.com/go-drift/liteclass/pkg/validate"
)

// fixture holds the Item/List pair most tests work with.
type fixture struct {
	rt    *entity.Runtime
	clock *entitytest.FakeClock
	item  *entity.Type
	list  *entity.Type
}

func newFixture(t *testing.T, opts ...entity.Option) *fixture {
	t.Helper()
	clk := entitytest.NewFakeClock()
	rt := entity.NewRuntime(append([]entity.Option{entity.WithClock(clk)}, opts...)...)

	item, err := rt.Base().Extend(entity.Definition{
		Name: "Item",
		Properties: map[string]entity.Property{
			"done":  {Default: false, Validator: validate.OfType[bool]()},
			"title": {Default: "", Validator: validate.OfType[string]()},
		},
	})
	if err != nil {
		t.Fatalf("Extend(Item): %v", err)
	}
	list, err := rt.Base().Extend(entity.Definition{
		Name: "List",
		Properties: map[string]entity.Property{
			"name": {Default: "untitled"},
		},
		Aggregations: map[string]entity.Aggregation{
			"items": {Validator: entity.InstanceOf(item)},
			"tags":  {},
		},
	})
	if err != nil {
		t.Fatalf("Extend(List): %v", err)
	}
	return &fixture{rt: rt, clock: clk, item: item, list: list}
}

func mustNew(t *testing.T, typ *entity.Type, s entity.Settings) *entity.Record {
	t.Helper()
	r, err := typ.New(s)
	if err != nil {
		t.Fatalf("New(%s): %v", typ.Name(), err)
	}
	return r
}

func aggregation(t *testing.T, r *entity.Record, name string) []any {
	t.Helper()
	list, ok := r.GetAggregation(name)
	if !ok {
		t.Fatalf("GetAggregation(%q) reported undeclared", name)
	}
	return list
}
