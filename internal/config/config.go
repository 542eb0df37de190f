// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config provides the TOML configuration of an enrichment
// analysis.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/kortschak/enrich/internal/calculation"
)

// Config is the configuration of an enrichment analysis.
type Config struct {
	// Input paths. Files may be gzip or zstd
	// compressed. If Population is empty, all
	// genes with associations are used.
	Ontology     string   `toml:"ontology"`
	Associations string   `toml:"associations"`
	Population   string   `toml:"population"`
	Studies      []string `toml:"studies"`

	Method   string   `toml:"method"`   // "term-for-term" or "topology-weighted"
	Alpha    float64  `toml:"alpha"`    // significance level
	Evidence []string `toml:"evidence"` // evidence codes to use; empty uses all

	// Permutation null of the minimum p-value.
	// Only used by term-for-term.
	Permutations int    `toml:"permutations"` // 0 disables
	Seed         uint64 `toml:"seed"`
	Threads      int    `toml:"threads"` // 0 = NumCPU

	// Output.
	Out   string `toml:"out"`   // directory for result tables
	Dot   bool   `toml:"dot"`   // write DOT graphs of significant terms
	Plots bool   `toml:"plots"` // write p-value plots

	CacheSize int `toml:"cache_size"` // number of loaded work sets held
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		Method:    "term-for-term",
		Alpha:     0.05,
		Seed:      1,
		Out:       ".",
		CacheSize: 2,
	}
}

// Load loads a configuration from the TOML file at path over the
// default configuration and validates it.
func Load(path string) (*Config, error) {
	c, err := Read(path)
	if err != nil {
		return nil, err
	}
	err = c.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// Read reads a configuration from the TOML file at path over the
// default configuration without validating it. It allows a caller
// to complete the configuration before validation.
func Read(path string) (*Config, error) {
	c := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	_, err = toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return c, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Ontology == "" {
		return errors.New("ontology is required")
	}
	if c.Associations == "" {
		return errors.New("associations is required")
	}
	if len(c.Studies) == 0 {
		return errors.New("at least one study is required")
	}
	if _, err := calculation.ByName(c.Method, nil); err != nil {
		return fmt.Errorf("unknown method: %q", c.Method)
	}
	if !(0 < c.Alpha && c.Alpha < 1) {
		return fmt.Errorf("alpha out of range: %v", c.Alpha)
	}
	if c.Permutations < 0 {
		return fmt.Errorf("negative permutations: %d", c.Permutations)
	}
	if c.Threads < 0 {
		return fmt.Errorf("negative threads: %d", c.Threads)
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("cache_size must be positive: %d", c.CacheSize)
	}
	return nil
}
