// Package errors provides structured error handling for the liteclass runtime.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindField indicates a reference to a field not declared by a type.
	KindField
	// KindSchema indicates an invalid type definition.
	KindSchema
	// KindDestroyed indicates use of a record after Destroy.
	KindDestroyed
	// KindInit indicates a failure inside a construction or init hook.
	KindInit
	// KindMethod indicates a call to an instance method that does not exist.
	KindMethod
	// KindConfig indicates an invalid configuration document.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindCycle indicates a record graph that refers back to itself where a
	// tree is required.
	KindCycle
)

func (k ErrorKind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindSchema:
		return "schema"
	case KindDestroyed:
		return "destroyed"
	case KindInit:
		return "init"
	case KindMethod:
		return "method"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	case KindCycle:
		return "cycle"
	default:
		return "unknown"
	}
}

// RecordError represents a structured error raised by the runtime.
type RecordError struct {
	// Op is the operation that failed (e.g., "entity.Extend").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Type is the record type name, if applicable.
	Type string
	// Field is the property or aggregation name, if applicable.
	Field string
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *RecordError) Error() string {
	switch {
	case e.Type != "" && e.Field != "":
		return fmt.Sprintf("%s [%s] %s.%s: %v", e.Op, e.Kind, e.Type, e.Field, e.Err)
	case e.Type != "":
		return fmt.Sprintf("%s [%s] %s: %v", e.Op, e.Kind, e.Type, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// UnknownFieldError reports a write (or a strict read) against a name that
// is absent from the merged descriptor set of a type.
type UnknownFieldError struct {
	// Type is the name of the record type.
	Type string
	// Namespace is "property" or "aggregation".
	Namespace string
	// Field is the undeclared name.
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s %q is not declared by type %s", e.Namespace, e.Field, e.Type)
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "event.Emit change:done").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the runtime.
type ErrorHandler interface {
	// HandleError is called when an error is reported.
	HandleError(err *RecordError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}

// IsKind reports whether any RecordError in err's chain has the given kind.
// An UnknownFieldError anywhere in the chain counts as KindField.
func IsKind(err error, kind ErrorKind) bool {
	if kind == KindField && IsUnknownField(err) {
		return true
	}
	var re *RecordError
	if !stderrors.As(err, &re) {
		return false
	}
	for re != nil {
		if re.Kind == kind {
			return true
		}
		if !stderrors.As(re.Err, &re) {
			return false
		}
	}
	return false
}

// IsUnknownField reports whether err is or wraps an UnknownFieldError.
func IsUnknownField(err error) bool {
	var ufe *UnknownFieldError
	return stderrors.As(err, &ufe)
}
