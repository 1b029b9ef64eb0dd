package testing

import (
	"github.com/go-drift/liteclass/pkg/entity"
	"github.com/go-drift/liteclass/pkg/event"
)

// Emission is one recorded dispatch.
type Emission struct {
	// Event is the event name the change was dispatched under.
	Event string
	// Change is the dispatched payload.
	Change entity.Change
}

// ChangeRecorder captures the change events of a record, in dispatch order.
type ChangeRecorder struct {
	record    *entity.Record
	subs      []event.Subscription
	emissions []Emission
}

// Record subscribes to the named events of r. With no names it listens to
// "change" only.
func Record(r *entity.Record, names ...string) *ChangeRecorder {
	if len(names) == 0 {
		names = []string{entity.EventChange}
	}
	rec := &ChangeRecorder{record: r}
	for _, name := range names {
		rec.subs = append(rec.subs, r.On(name, func(c entity.Change) {
			rec.emissions = append(rec.emissions, Emission{Event: name, Change: c})
		}))
	}
	return rec
}

// RecordField listens to the three tiers of one field: "change",
// "change:<field>" and every "change:<field>:<action>" in actions.
func RecordField(r *entity.Record, field string, actions ...entity.Action) *ChangeRecorder {
	names := []string{entity.EventChange, entity.FieldEvent(field)}
	for _, a := range actions {
		names = append(names, entity.ActionEvent(field, a))
	}
	return Record(r, names...)
}

// Emissions returns a copy of everything recorded so far.
func (rec *ChangeRecorder) Emissions() []Emission {
	return append([]Emission(nil), rec.emissions...)
}

// Events returns the recorded event names in order.
func (rec *ChangeRecorder) Events() []string {
	names := make([]string, len(rec.emissions))
	for i, e := range rec.emissions {
		names[i] = e.Event
	}
	return names
}

// Count returns how many times the named event was recorded.
func (rec *ChangeRecorder) Count(name string) int {
	n := 0
	for _, e := range rec.emissions {
		if e.Event == name {
			n++
		}
	}
	return n
}

// Last returns the most recent change recorded under name.
func (rec *ChangeRecorder) Last(name string) (entity.Change, bool) {
	for i := len(rec.emissions) - 1; i >= 0; i-- {
		if rec.emissions[i].Event == name {
			return rec.emissions[i].Change, true
		}
	}
	return entity.Change{}, false
}

// Reset discards the recorded emissions.
func (rec *ChangeRecorder) Reset() {
	rec.emissions = nil
}

// Stop unsubscribes the recorder.
func (rec *ChangeRecorder) Stop() {
	for _, sub := range rec.subs {
		rec.record.Off(sub)
	}
	rec.subs = nil
}
