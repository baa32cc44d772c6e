// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds tunable search parameters.
type Config struct {
	// DefaultLimit caps search hits when the caller does not set a limit.
	DefaultLimit int `yaml:"default_limit"`

	// SmallSystemThreshold is the concept-count ceiling under which a
	// single-system query with zero hits falls back to listing the entire
	// vocabulary.
	SmallSystemThreshold int `yaml:"small_system_threshold"`

	// BigSystemThreshold is the concept count above which a system is
	// reported as big in capability summaries.
	BigSystemThreshold int `yaml:"big_system_threshold"`

	// FuzzyFloor and FuzzyFactor tune system-name fuzzy matching: a
	// candidate is accepted when the edit distance between code segments
	// is at most max(floor, ceil(factor * min(len(a), len(b)))).
	FuzzyFloor  int     `yaml:"fuzzy_floor"`
	FuzzyFactor float64 `yaml:"fuzzy_factor"`
}

// DefaultConfig returns the default search configuration.
func DefaultConfig() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// LoadConfig reads a search configuration from a YAML file, fills defaults,
// and validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 20
	}
	if c.SmallSystemThreshold <= 0 {
		c.SmallSystemThreshold = 150
	}
	if c.BigSystemThreshold <= 0 {
		c.BigSystemThreshold = 500
	}
	if c.FuzzyFloor <= 0 {
		c.FuzzyFloor = defaultFuzzyFloor
	}
	if c.FuzzyFactor <= 0 {
		c.FuzzyFactor = defaultFuzzyFactor
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.SmallSystemThreshold > c.BigSystemThreshold {
		return fmt.Errorf("small_system_threshold %d must not exceed big_system_threshold %d",
			c.SmallSystemThreshold, c.BigSystemThreshold)
	}
	if c.FuzzyFactor >= 1 {
		return fmt.Errorf("fuzzy_factor must be below 1, got %v", c.FuzzyFactor)
	}
	return nil
}
