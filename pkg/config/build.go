package config

import (
	"fmt"
	"strings"

	"github.com/go-drift/liteclass/pkg/entity"
	"github.com/go-drift/liteclass/pkg/errors"
	"github.com/go-drift/liteclass/pkg/logging"
	"github.com/go-drift/liteclass/pkg/validate"
)

// recordKindPrefix introduces a kind referring to a declared type.
const recordKindPrefix = "record:"

// Build composes the declared types on rt, parents first, and returns them
// by name. It fails on unknown parents, inheritance cycles, unknown kinds,
// invalid validation tags and defaults rejected by their own validators.
func Build(rt *entity.Runtime, cfg *Config) (map[string]*entity.Type, error) {
	b := &builder{
		rt:    rt,
		decls: make(map[string]*TypeConfig, len(cfg.Types)),
		types: make(map[string]*entity.Type, len(cfg.Types)),
		state: make(map[string]int, len(cfg.Types)),
	}
	for i := range cfg.Types {
		b.decls[cfg.Types[i].Name] = &cfg.Types[i]
	}
	for _, t := range cfg.Types {
		if err := b.build(t.Name); err != nil {
			return nil, err
		}
	}
	return b.types, nil
}

// NewRuntime builds the configured logger, a runtime using it, and the
// declared types.
func NewRuntime(cfg *Config, opts ...entity.Option) (*entity.Runtime, map[string]*entity.Type, error) {
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, errors.Report(&errors.RecordError{Op: "config.NewRuntime", Kind: errors.KindConfig, Err: err})
	}
	rt := entity.NewRuntime(append([]entity.Option{entity.WithLogger(log)}, opts...)...)
	types, err := Build(rt, cfg)
	if err != nil {
		return nil, nil, err
	}
	return rt, types, nil
}

const (
	unvisited = iota
	visiting
	done
)

type builder struct {
	rt    *entity.Runtime
	decls map[string]*TypeConfig
	types map[string]*entity.Type
	state map[string]int
}

func (b *builder) fail(typ, field string, err error) error {
	return errors.Report(&errors.RecordError{
		Op:    "config.Build",
		Kind:  errors.KindConfig,
		Type:  typ,
		Field: field,
		Err:   err,
	})
}

func (b *builder) build(name string) error {
	switch b.state[name] {
	case done:
		return nil
	case visiting:
		return b.fail(name, "", fmt.Errorf("inheritance cycle"))
	}
	b.state[name] = visiting

	decl := b.decls[name]
	parent := b.rt.Base()
	if decl.Extends != "" {
		if _, ok := b.decls[decl.Extends]; !ok {
			return b.fail(name, "", fmt.Errorf("unknown parent type %q", decl.Extends))
		}
		if err := b.build(decl.Extends); err != nil {
			return err
		}
		parent = b.types[decl.Extends]
	}

	def := entity.Definition{
		Name:         name,
		Properties:   make(map[string]entity.Property, len(decl.Properties)),
		Aggregations: make(map[string]entity.Aggregation, len(decl.Aggregations)),
	}
	for field, p := range decl.Properties {
		fn, err := b.validator(p.Kind, p.Validate)
		if err != nil {
			return b.fail(name, field, err)
		}
		if p.Default != nil && fn != nil && !fn(p.Default) {
			return b.fail(name, field, fmt.Errorf("default %v rejected by its validator", p.Default))
		}
		def.Properties[field] = entity.Property{Default: p.Default, Validator: fn}
	}
	for field, a := range decl.Aggregations {
		fn, err := b.validator(a.Kind, a.Validate)
		if err != nil {
			return b.fail(name, field, err)
		}
		def.Aggregations[field] = entity.Aggregation{Validator: fn}
	}

	typ, err := parent.Extend(def)
	if err != nil {
		return err
	}
	b.types[name] = typ
	b.state[name] = done
	return nil
}

// validator combines a kind and a tag. It returns nil when neither
// constrains the value.
func (b *builder) validator(kind, tag string) (validate.Func, error) {
	var fns []validate.Func
	if target, ok := strings.CutPrefix(kind, recordKindPrefix); ok {
		if _, declared := b.decls[target]; !declared {
			return nil, fmt.Errorf("unknown record type %q", target)
		}
		// The target may be the type itself or declared further down.
		fns = append(fns, func(v any) bool {
			t, ok := b.types[target]
			return ok && entity.InstanceOf(t)(v)
		})
	} else if kind != "" {
		fn, err := validate.Kind(kind)
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	if tag != "" {
		fn, err := validate.Tag(tag)
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	switch len(fns) {
	case 0:
		return nil, nil
	case 1:
		return fns[0], nil
	}
	return validate.All(fns...), nil
}
