// Package identity assigns and tracks process-unique identifiers.
//
// A Registry maps identifiers to live values. Identifiers are generated from
// a time-ordered UUID (version 7), so they carry a timestamp prefix and a
// random suffix. Registration never fails: a preferred identifier that is
// already live is silently replaced by a fresh one, and generation retries
// until it finds an identifier that is not live.
//
//	reg := identity.New[*Widget]()
//	id := reg.Register(w, "")
//	got, ok := reg.Lookup(id)
//	reg.Release(id)
//
// Registry is safe for concurrent use.
package identity

import (
	"sync"

	"github.com/google/uuid"
)

// Generator produces candidate identifiers.
type Generator func() string

// NewV7 generates a time-ordered UUID string. It falls back to a random
// (version 4) UUID if the version 7 source fails.
func NewV7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	generate   Generator
	onFallback func(preferred, assigned string)
}

// WithGenerator replaces the identifier generator.
func WithGenerator(g Generator) Option {
	return func(o *options) {
		if g != nil {
			o.generate = g
		}
	}
}

// WithFallbackHook installs a callback invoked when a preferred identifier
// was already live and another one was assigned instead.
func WithFallbackHook(fn func(preferred, assigned string)) Option {
	return func(o *options) {
		o.onFallback = fn
	}
}

// Registry is a table of live identifiers. The zero value is not usable;
// create one with New.
type Registry[T any] struct {
	mu   sync.RWMutex
	live map[string]T
	opts options
}

// New creates an empty registry.
func New[T any](opts ...Option) *Registry[T] {
	r := &Registry[T]{
		live: make(map[string]T),
		opts: options{generate: NewV7},
	}
	for _, opt := range opts {
		opt(&r.opts)
	}
	return r
}

// Generate returns an identifier that is not currently live. A non-empty
// preferred identifier is returned as is when it is free. Generate does not
// reserve the identifier; use Register for that.
func (r *Registry[T]) Generate(preferred string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.freshLocked(preferred)
}

func (r *Registry[T]) freshLocked(preferred string) string {
	id := preferred
	if id == "" {
		id = r.opts.generate()
	}
	for {
		if _, taken := r.live[id]; !taken && id != "" {
			return id
		}
		id = r.opts.generate()
	}
}

// Register stores v under a fresh identifier and returns it. If preferred is
// non-empty and free it is used; otherwise a new identifier is generated.
// Callers must use the returned identifier.
func (r *Registry[T]) Register(v T, preferred string) string {
	r.mu.Lock()
	id := r.freshLocked(preferred)
	r.live[id] = v
	hook := r.opts.onFallback
	r.mu.Unlock()

	if hook != nil && preferred != "" && id != preferred {
		hook(preferred, id)
	}
	return id
}

// Lookup returns the value registered under id.
func (r *Registry[T]) Lookup(id string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.live[id]
	return v, ok
}

// Release removes id from the live set. The identifier may be reused later.
// Releasing an unknown identifier is a no-op.
func (r *Registry[T]) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, id)
}

// Len returns the number of live identifiers.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.live)
}
