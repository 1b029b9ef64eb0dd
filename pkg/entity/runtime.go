package entity

import (
	"time"

	"go.uber.org/zap"

	"github.com/go-drift/liteclass/pkg/identity"
)

// Clock provides timestamps for change events. Tests can inject a fake
// clock through WithClock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Runtime owns the identity registry and the ambient services shared by all
// types composed from its Base type.
type Runtime struct {
	registry *identity.Registry[*Record]
	clock    Clock
	log      *zap.Logger
	metrics  *Metrics
	base     *Type
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithRegistry uses reg instead of a private registry.
func WithRegistry(reg *identity.Registry[*Record]) Option {
	return func(rt *Runtime) {
		rt.registry = reg
	}
}

// WithClock sets the clock used for change timestamps.
func WithClock(c Clock) Option {
	return func(rt *Runtime) {
		if c != nil {
			rt.clock = c
		}
	}
}

// WithLogger sets the logger. By default the runtime logs through zap's
// global logger.
func WithLogger(l *zap.Logger) Option {
	return func(rt *Runtime) {
		rt.log = l
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(rt *Runtime) {
		rt.metrics = m
	}
}

// NewRuntime creates a runtime with its own Base type.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{clock: systemClock{}}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.registry == nil {
		rt.registry = identity.New[*Record](identity.WithFallbackHook(func(preferred, assigned string) {
			rt.logger().Debug("preferred record id in use",
				zap.String("preferred", preferred),
				zap.String("assigned", assigned),
			)
		}))
	}
	rt.base = &Type{
		name:   "Base",
		rt:     rt,
		own:    newSchema(nil, nil),
		merged: newSchema(nil, nil),
	}
	return rt
}

func (rt *Runtime) logger() *zap.Logger {
	if rt.log != nil {
		return rt.log
	}
	return zap.L()
}

// Base returns the root type of this runtime.
func (rt *Runtime) Base() *Type {
	return rt.base
}

// Lookup returns the live record registered under id.
func (rt *Runtime) Lookup(id string) (*Record, bool) {
	return rt.registry.Lookup(id)
}

// Live returns the number of records that have not been destroyed.
func (rt *Runtime) Live() int {
	return rt.registry.Len()
}

var defaultRuntime = NewRuntime()

// Default returns the process-wide runtime.
func Default() *Runtime {
	return defaultRuntime
}

// Base returns the root type of the default runtime.
func Base() *Type {
	return defaultRuntime.base
}

// Extend composes a new type directly under the default runtime's Base.
func Extend(def Definition) (*Type, error) {
	return defaultRuntime.base.Extend(def)
}

// MustExtend is like Extend but panics on error.
func MustExtend(def Definition) *Type {
	return defaultRuntime.base.MustExtend(def)
}

// Lookup resolves id in the default runtime.
func Lookup(id string) (*Record, bool) {
	return defaultRuntime.Lookup(id)
}
