// Package config loads and defaults the store-level configuration knobs
// that sit outside spec.md's language-neutral core API but are needed to
// construct a store: Bloom filter sizing, traversal depth cap, query
// deadline, and logging.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// BloomConfig controls the Bloom Index's sizing, per spec.md §4.B.
type BloomConfig struct {
	ExpectedItems     int     `yaml:"expected_items"`
	FalsePositiveRate float64 `yaml:"false_positive_rate"`
}

// GraphConfig controls traversal bounds, per spec.md §4.C.
type GraphConfig struct {
	MaxTraversalDepth int `yaml:"max_traversal_depth"`
	MaxResultRows     int `yaml:"max_result_rows"`
}

// QueryConfig controls the Query Engine's soft deadline, per spec.md §4.F/§5.
type QueryConfig struct {
	SoftDeadline time.Duration `yaml:"soft_deadline"`
}

// LoggingConfig mirrors internal/logging's expectations.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
}

// Config is the top-level store configuration.
type Config struct {
	StorePath string        `yaml:"store_path"`
	Bloom     BloomConfig   `yaml:"bloom"`
	Graph     GraphConfig   `yaml:"graph"`
	Query     QueryConfig   `yaml:"query"`
	Logging   LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration, matching the bounds
// named in spec.md §4.B (n=10,000,000, p=0.001), §4.C (depth cap 5,
// result cap 100), and §4.F/§5 (500ms soft deadline).
func DefaultConfig() *Config {
	return &Config{
		StorePath: ".codectx/store.db",
		Bloom: BloomConfig{
			ExpectedItems:     10_000_000,
			FalsePositiveRate: 0.001,
		},
		Graph: GraphConfig{
			MaxTraversalDepth: 5,
			MaxResultRows:     100,
		},
		Query: QueryConfig{
			SoftDeadline: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load reads a YAML config file at path, falling back to DefaultConfig
// for any field the file omits by unmarshaling onto the default.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories as needed.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
