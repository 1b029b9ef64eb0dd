// Package event provides a synchronous, named-event emitter.
//
// Listeners are registered per event name and called in registration order.
// Emit takes a snapshot of the listener list before dispatch, so a listener
// may subscribe, unsubscribe or emit again (re-entrantly) without corrupting
// the iteration in progress. A panicking listener is recovered and reported
// through pkg/errors; the remaining listeners still run.
package event

import (
	"sync"

	"github.com/google/uuid"

	"github.com/go-drift/liteclass/pkg/errors"
)

// Listener handles one payload.
type Listener[T any] func(payload T)

// Subscription identifies a registered listener.
type Subscription struct {
	// ID uniquely identifies this subscription.
	ID string
	// Event is the event name the listener is registered for.
	Event string
}

type entry[T any] struct {
	id    string
	fn    Listener[T]
	once  bool
	fired bool
}

// Emitter dispatches named events to listeners.
//
// Thread Safety: the listener table is guarded by a mutex. Dispatch runs on
// the emitting goroutine.
type Emitter[T any] struct {
	mu        sync.Mutex
	listeners map[string][]*entry[T]
}

// NewEmitter creates an emitter with no listeners.
func NewEmitter[T any]() *Emitter[T] {
	return &Emitter[T]{listeners: make(map[string][]*entry[T])}
}

// On registers fn for the named event.
func (e *Emitter[T]) On(name string, fn Listener[T]) Subscription {
	return e.add(name, fn, false)
}

// Once registers fn for the next emission of the named event only.
func (e *Emitter[T]) Once(name string, fn Listener[T]) Subscription {
	return e.add(name, fn, true)
}

func (e *Emitter[T]) add(name string, fn Listener[T], once bool) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[string][]*entry[T])
	}
	ent := &entry[T]{id: uuid.NewString(), fn: fn, once: once}
	e.listeners[name] = append(e.listeners[name], ent)
	return Subscription{ID: ent.id, Event: name}
}

// Off removes a single subscription. It reports whether it was found.
func (e *Emitter[T]) Off(sub Subscription) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removeLocked(sub.Event, sub.ID)
}

func (e *Emitter[T]) removeLocked(name, id string) bool {
	list := e.listeners[name]
	for i, ent := range list {
		if ent.id != id {
			continue
		}
		// Copy so that snapshots held by in-flight emits stay intact.
		next := make([]*entry[T], 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(e.listeners, name)
		} else {
			e.listeners[name] = next
		}
		return true
	}
	return false
}

// OffEvent removes every listener of the named event and returns how many
// were removed.
func (e *Emitter[T]) OffEvent(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := len(e.listeners[name])
	delete(e.listeners, name)
	return n
}

// OffAll removes every listener.
func (e *Emitter[T]) OffAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = make(map[string][]*entry[T])
}

// ListenerCount returns the number of listeners registered for name.
func (e *Emitter[T]) ListenerCount(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[name])
}

// EventNames returns the names that currently have listeners.
func (e *Emitter[T]) EventNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.listeners))
	for name := range e.listeners {
		names = append(names, name)
	}
	return names
}

// Emit calls every listener registered for name with payload and returns
// the number of listeners invoked.
func (e *Emitter[T]) Emit(name string, payload T) int {
	e.mu.Lock()
	snapshot := e.listeners[name]
	for _, ent := range snapshot {
		if ent.once && !ent.fired {
			e.removeLocked(name, ent.id)
		}
	}
	var calls []*entry[T]
	for _, ent := range snapshot {
		if ent.once {
			if ent.fired {
				continue
			}
			ent.fired = true
		}
		calls = append(calls, ent)
	}
	e.mu.Unlock()

	for _, ent := range calls {
		e.invoke(name, ent.fn, payload)
	}
	return len(calls)
}

func (e *Emitter[T]) invoke(name string, fn Listener[T], payload T) {
	defer errors.Recover("event.Emit " + name)
	fn(payload)
}
