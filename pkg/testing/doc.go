// Package testing provides helpers for testing code built on pkg/entity.
//
// # Recording Changes
//
// Capture the events dispatched by a record and assert on them:
//
//	func TestToggle(t *testing.T) {
//	    item := Item.MustNew(nil)
//	    rec := entitytest.RecordField(item, "done", entity.ActionSet)
//
//	    item.SetProperty("done", true)
//
//	    if rec.Count(entity.ActionEvent("done", entity.ActionSet)) != 1 {
//	        t.Error("expected one change:done:set event")
//	    }
//	}
//
// # Deterministic Time
//
// FakeClock satisfies entity.Clock. Inject it into a runtime to control
// change timestamps:
//
//	clk := entitytest.NewFakeClock()
//	rt := entity.NewRuntime(entity.WithClock(clk))
package testing
