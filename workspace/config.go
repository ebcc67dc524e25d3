package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultObserver = "slog"

// VariableConfig seeds one variable. An empty ID draws a generated one.
type VariableConfig struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
}

// Config holds workspace initialization parameters.
type Config struct {
	ID               string           `json:"id,omitempty" yaml:"id,omitempty"`
	Observer         string           `json:"observer,omitempty" yaml:"observer,omitempty"` // observability registry name
	BlockDefinitions []string         `json:"block_definitions,omitempty" yaml:"block_definitions,omitempty"`
	Variables        []VariableConfig `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// DefaultConfig returns a configuration that logs through slog.Default and
// starts with no variables.
func DefaultConfig() Config {
	return Config{
		Observer: defaultObserver,
	}
}

// Merge applies non-zero values from source into c. Slices replace rather
// than append.
func (c *Config) Merge(source *Config) {
	if source.ID != "" {
		c.ID = source.ID
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
	if len(source.BlockDefinitions) > 0 {
		c.BlockDefinitions = source.BlockDefinitions
	}
	if len(source.Variables) > 0 {
		c.Variables = source.Variables
	}
}

// LoadConfig reads a JSON or YAML (.yaml, .yml) config file and merges it
// over DefaultConfig. Relative block definition paths are resolved against
// the config file's directory.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	dir := filepath.Dir(filename)
	for i, p := range loaded.BlockDefinitions {
		if !filepath.IsAbs(p) {
			loaded.BlockDefinitions[i] = filepath.Join(dir, p)
		}
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
