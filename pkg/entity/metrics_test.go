package entity_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/go-drift/liteclass/pkg/entity"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := newFixture(t, entity.WithMetrics(entity.NewMetrics(reg)))

	a := mustNew(t, f.item, nil)
	mustNew(t, f.item, nil)
	_ = a.SetProperty("done", true)
	_ = a.SetProperty("title", "x")
	_ = a.ApplySettings(entity.Settings{"title": "y"})
	a.Destroy()

	if n, err := testutil.GatherAndCount(reg); err != nil || n != 5 {
		t.Errorf("GatherAndCount = %d, %v; want 5 series", n, err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, l := range m.GetLabel() {
				key += "/" + l.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				values[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[key] = m.GetGauge().GetValue()
			}
		}
	}

	want := map[string]float64{
		"liteclass_records_created_total":   2,
		"liteclass_records_destroyed_total": 1,
		"liteclass_records_live":            1,
		"liteclass_changes_total/set":       2,
		"liteclass_changes_total/update":    1,
	}
	for k, v := range want {
		if values[k] != v {
			t.Errorf("%s = %v, want %v", k, values[k], v)
		}
	}
}

func TestMetrics_Nil(t *testing.T) {
	f := newFixture(t)
	r := mustNew(t, f.item, nil)
	_ = r.SetProperty("done", true)
	r.Destroy()
}
