package entity

import (
	"fmt"
	"time"
)

// Action tags the kind of mutation a Change describes.
type Action string

// Mutation actions.
const (
	ActionSet         Action = "set"
	ActionAdd         Action = "add"
	ActionAddFirst    Action = "addFirst"
	ActionInsertAt    Action = "insertAt"
	ActionRemoveFirst Action = "removeFirst"
	ActionRemoveLast  Action = "removeLast"
	ActionRemove      Action = "remove"
	ActionRemoveAt    Action = "removeAt"
	ActionRemoveAll   Action = "removeAll"
	ActionUpdate      Action = "update"
)

// FieldKind tells which namespace a Change refers to.
type FieldKind int

const (
	// NoField marks batch changes (ActionUpdate).
	NoField FieldKind = iota
	// PropertyField marks a property change.
	PropertyField
	// AggregationField marks an aggregation change.
	AggregationField
)

func (k FieldKind) String() string {
	switch k {
	case PropertyField:
		return "property"
	case AggregationField:
		return "aggregation"
	default:
		return "none"
	}
}

// EventChange is the event emitted for every mutation.
const EventChange = "change"

// FieldEvent returns the event name scoped to one field: "change:<field>".
// With field "update" it names the batch event of ApplySettings.
func FieldEvent(field string) string {
	return EventChange + ":" + field
}

// ActionEvent returns the event name scoped to one field and action:
// "change:<field>:<action>".
func ActionEvent(field string, action Action) string {
	return EventChange + ":" + field + ":" + string(action)
}

// Change describes one mutation. It has no setters; every listener of the
// three dispatch tiers receives the same values.
type Change struct {
	source    *Record
	action    Action
	kind      FieldKind
	field     string
	oldValue  any
	newValue  any
	value     any
	index     int
	timestamp time.Time
}

// Source returns the mutated record.
func (c Change) Source() *Record { return c.source }

// Action returns the mutation action.
func (c Change) Action() Action { return c.action }

// Kind returns the namespace of Field.
func (c Change) Kind() FieldKind { return c.kind }

// Field returns the property or aggregation name, or "" for ActionUpdate.
func (c Change) Field() string { return c.field }

// OldValue returns the previous value of a property.
func (c Change) OldValue() any { return c.oldValue }

// NewValue returns the value written to a property.
func (c Change) NewValue() any { return c.newValue }

// Value returns the item added to or removed from an aggregation. For
// ActionRemoveAll it is a []any holding the removed items.
func (c Change) Value() any { return c.value }

// Index returns the position of positional aggregation changes.
func (c Change) Index() (int, bool) { return c.index, c.index >= 0 }

// Timestamp returns when the change was applied.
func (c Change) Timestamp() time.Time { return c.timestamp }

func (c Change) String() string {
	id := ""
	if c.source != nil {
		id = c.source.id
	}
	if c.field == "" {
		return fmt.Sprintf("%s %s", id, c.action)
	}
	return fmt.Sprintf("%s %s:%s", id, c.field, c.action)
}
