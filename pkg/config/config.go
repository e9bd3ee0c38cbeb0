// Package config holds the immutable runtime configuration of a component
// tree.
//
// A Config is a plain value. ComponentTree and LithoView copy it at
// construction, so changing a Config afterwards never affects a computation
// already in flight.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the optional configuration file.
const FileName = "litho.yaml"

// SchemaVersion is the configuration schema understood by this module.
const SchemaVersion = "v1.0.0"

// RecyclingMode controls how mount content pools are used.
type RecyclingMode string

const (
	// RecyclingDefault acquires content from pools and reuses it.
	RecyclingDefault RecyclingMode = "default"
	// RecyclingNoViewReuse drains pools but always creates fresh content.
	RecyclingNoViewReuse RecyclingMode = "no_view_reuse"
	// RecyclingNoPooling never touches pools.
	RecyclingNoPooling RecyclingMode = "no_pooling"
)

// Config is the full runtime configuration.
type Config struct {
	Schema string `yaml:"schema"`

	// Reconciliation enables reuse of the previous internal node tree on
	// state updates.
	Reconciliation bool `yaml:"reconciliation"`
	// ReuseInternalNodes returns unchanged subtrees as-is instead of
	// shallow-copying them.
	ReuseInternalNodes bool `yaml:"reuse_internal_nodes"`
	// LayoutCaching reuses previous measurements of reused nodes.
	LayoutCaching bool `yaml:"layout_caching"`
	// IncrementalMount mounts only content intersecting the visible rect.
	IncrementalMount bool `yaml:"incremental_mount"`
	// LayoutThreads bounds concurrent background layouts. Zero runs
	// layouts inline on the requesting goroutine.
	LayoutThreads int `yaml:"layout_threads"`
	// CancelSupersededLayouts abandons in-flight layouts once a newer
	// request for the same tree arrives.
	CancelSupersededLayouts bool `yaml:"cancel_superseded_layouts"`

	RecyclingMode   RecyclingMode `yaml:"recycling_mode"`
	DefaultPoolSize int           `yaml:"default_pool_size"`

	Extensions Extensions `yaml:"extensions"`

	Debug bool `yaml:"debug"`
}

// Extensions toggles the stock mount extensions.
type Extensions struct {
	// Enabled gates every mount extension. When false, registering an
	// extension on a host is a configuration error.
	Enabled      bool `yaml:"enabled"`
	Visibility   bool `yaml:"visibility"`
	Transitions  bool `yaml:"transitions"`
	DynamicProps bool `yaml:"dynamic_props"`
	Tracing      bool `yaml:"tracing"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Schema:                  SchemaVersion,
		Reconciliation:          true,
		LayoutCaching:           true,
		IncrementalMount:        true,
		LayoutThreads:           1,
		CancelSupersededLayouts: true,
		RecyclingMode:           RecyclingDefault,
		DefaultPoolSize:         3,
		Extensions: Extensions{
			Enabled:      true,
			Visibility:   true,
			Transitions:  true,
			DynamicProps: true,
		},
	}
}

// Parse decodes YAML configuration on top of the defaults and validates it.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// LoadOptional reads litho.yaml from dir if present, otherwise returns the
// defaults.
func LoadOptional(dir string) (Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	return Parse(data)
}

// Validate checks field ranges and the schema version.
func (c Config) Validate() error {
	if !semver.IsValid(c.Schema) {
		return fmt.Errorf("config: invalid schema version %q", c.Schema)
	}
	if semver.Major(c.Schema) != semver.Major(SchemaVersion) {
		return fmt.Errorf("config: unsupported schema %s (want %s.x)", c.Schema, semver.Major(SchemaVersion))
	}
	if semver.Compare(c.Schema, SchemaVersion) > 0 {
		return fmt.Errorf("config: schema %s is newer than supported %s", c.Schema, SchemaVersion)
	}
	if c.LayoutThreads < 0 {
		return fmt.Errorf("config: layout_threads must be >= 0, got %d", c.LayoutThreads)
	}
	if c.DefaultPoolSize < 0 {
		return fmt.Errorf("config: default_pool_size must be >= 0, got %d", c.DefaultPoolSize)
	}
	switch c.RecyclingMode {
	case RecyclingDefault, RecyclingNoViewReuse, RecyclingNoPooling:
	default:
		return fmt.Errorf("config: unknown recycling_mode %q", c.RecyclingMode)
	}
	return nil
}

// UsesPools reports whether content pools are consulted at all.
func (c Config) UsesPools() bool {
	return c.RecyclingMode != RecyclingNoPooling
}

// ReusesPooledContent reports whether content taken from a pool may be
// mounted again.
func (c Config) ReusesPooledContent() bool {
	return c.RecyclingMode == RecyclingDefault
}
