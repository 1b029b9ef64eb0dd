package entity

import "github.com/go-drift/liteclass/pkg/event"

// On registers fn for the named event ("change", "change:<field>",
// "change:<field>:<action>" or "change:update").
func (r *Record) On(name string, fn event.Listener[Change]) event.Subscription {
	return r.events.On(name, fn)
}

// Once registers fn for the next emission of the named event.
func (r *Record) Once(name string, fn event.Listener[Change]) event.Subscription {
	return r.events.Once(name, fn)
}

// Off removes one subscription.
func (r *Record) Off(sub event.Subscription) bool {
	return r.events.Off(sub)
}

// OffEvent removes every listener of the named event.
func (r *Record) OffEvent(name string) int {
	return r.events.OffEvent(name)
}

// OffAll removes every listener of the record.
func (r *Record) OffAll() {
	r.events.OffAll()
}

// ListenerCount returns the number of listeners for the named event.
func (r *Record) ListenerCount(name string) int {
	return r.events.ListenerCount(name)
}
