// Package config loads liteclass.yaml: logger settings plus declarative
// record types that Build composes into a runtime.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/liteclass/pkg/logging"
	"github.com/go-drift/liteclass/pkg/validate"
)

// FileName is the file LoadOptional looks for.
const FileName = "liteclass.yaml"

// FormatVersion is the newest configuration format understood by this
// package. Files declaring another major version are rejected.
const FormatVersion = "v1.0.0"

// Config represents the optional liteclass.yaml configuration.
type Config struct {
	Version string         `yaml:"version,omitempty"`
	Logging logging.Config `yaml:"logging"`
	Types   []TypeConfig   `yaml:"types,omitempty" validate:"dive"`
}

// TypeConfig declares one record type.
type TypeConfig struct {
	Name string `yaml:"name" validate:"required"`
	// Extends names another declared type; empty means the runtime's Base.
	Extends      string                       `yaml:"extends,omitempty"`
	Properties   map[string]PropertyConfig    `yaml:"properties,omitempty" validate:"dive,keys,required,excludes=#,endkeys"`
	Aggregations map[string]AggregationConfig `yaml:"aggregations,omitempty" validate:"dive,keys,required,excludes=#,endkeys"`
}

// PropertyConfig declares a property.
//
// Kind is a value kind understood by validate.Kind, or "record:<Type>" for
// live instances of a declared type. Validate is a go-playground tag. Both
// must accept a value for it to be written.
type PropertyConfig struct {
	Default  any    `yaml:"default,omitempty"`
	Kind     string `yaml:"kind,omitempty"`
	Validate string `yaml:"validate,omitempty"`
}

// AggregationConfig declares an aggregation. Kind and Validate apply to
// each item.
type AggregationConfig struct {
	Kind     string `yaml:"kind,omitempty"`
	Validate string `yaml:"validate,omitempty"`
}

// Parse decodes and checks a configuration document. LITECLASS_LOG_MODE and
// LITECLASS_LOG_LEVEL, when set, override the logging section.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	if err := parseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// LoadOptional reads liteclass.yaml from dir if present. A missing file
// yields an empty configuration with environment overrides applied.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return Parse(nil)
	}
	return cfg, err
}

func parseEnv(cfg *Config) error {
	if err := env.Parse(&cfg.Logging); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the structure of cfg. Type references are resolved later
// by Build.
func (c *Config) Validate() error {
	if c.Version != "" {
		if !semver.IsValid(c.Version) {
			return fmt.Errorf("invalid version %q", c.Version)
		}
		if semver.Major(c.Version) != semver.Major(FormatVersion) {
			return fmt.Errorf("unsupported version %s (this build reads %s)", c.Version, semver.Major(FormatVersion))
		}
	}
	if err := validate.Engine().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	seen := make(map[string]bool, len(c.Types))
	for _, t := range c.Types {
		if seen[t.Name] {
			return fmt.Errorf("type %q declared twice", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}
