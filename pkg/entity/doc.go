// Package entity provides schema-validated records with change notification.
//
// A Type declares typed scalar fields (properties) and typed ordered
// collections (aggregations). Records created from a type accept only
// declared fields, run every write through the field's validator, and
// broadcast each accepted mutation to listeners.
//
// # Declaring Types
//
// Types are composed from a parent. The root of every chain is the runtime's
// Base type:
//
//	Item := entity.MustExtend(entity.Definition{
//	    Name: "Item",
//	    Properties: map[string]entity.Property{
//	        "title": {Default: "", Validator: validate.OfType[string]()},
//	        "done":  {Default: false, Validator: validate.OfType[bool]()},
//	    },
//	})
//
//	List := entity.MustExtend(entity.Definition{
//	    Name: "List",
//	    Aggregations: map[string]entity.Aggregation{
//	        "items": {Validator: entity.InstanceOf(Item)},
//	    },
//	})
//
// A subtype sees every descriptor of its ancestors unless it redeclares the
// name. Descriptor tables are flattened once, when the type is composed.
//
// # Records
//
//	item, err := Item.New(entity.Settings{"title": "write docs"})
//	item.SetProperty("done", true)
//	done, _ := item.GetProperty("done")
//
// Writes to undeclared names return an *errors.UnknownFieldError. Values
// rejected by a validator are ignored silently: no state change, no event.
//
// # Change Events
//
// Each accepted write emits three events sharing one immutable Change:
// "change", "change:<field>" and "change:<field>:<action>". A bulk
// ApplySettings emits "change" and "change:update" once for the batch.
//
//	item.On(entity.ActionEvent("done", entity.ActionSet), func(c entity.Change) {
//	    fmt.Println(c.OldValue(), "->", c.NewValue())
//	})
//
// Listeners run synchronously and may mutate records re-entrantly.
//
// # Concurrency
//
// Records are not safe for concurrent use; confine each record (and its
// listeners) to one goroutine. The identity registry shared by a Runtime is
// safe for concurrent use.
package entity
