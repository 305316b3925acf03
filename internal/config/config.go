package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mwhite/xml2jsonl/internal/errors"
	"github.com/mwhite/xml2jsonl/internal/formatter"
)

// Config represents the complete configuration for xml2jsonl
type Config struct {
	// IncludeRoot emits the document root itself as the first unit,
	// without its children.
	IncludeRoot bool `yaml:"include_root"`
	// IncludeAll emits every direct child of the root as a unit.
	IncludeAll bool `yaml:"include_all"`
	// Tags lists element names to extract at any depth; setting tags in a
	// config file turns IncludeAll off unless it is set explicitly too.
	Tags []string `yaml:"tags"`
	// Simplify applies the simplifying transform to every emitted unit.
	Simplify bool `yaml:"simplify"`
	// Keys re-cases output keys: none, snake, camel or kebab.
	Keys string `yaml:"keys"`
	// Dev contains development/debug options.
	Dev DevConfig `yaml:"dev"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		IncludeRoot: false,
		IncludeAll:  true,
		Simplify:    false,
		Keys:        string(formatter.KeyStyleNone),
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(
			fmt.Sprintf("failed to read config file '%s'", path), err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(
			fmt.Sprintf("failed to parse config file '%s'", path), err)
	}

	if _, err := formatter.ParseKeyStyle(cfg.Keys); err != nil {
		return nil, err
	}
	if len(cfg.Tags) > 0 && !explicitlyEnablesAll(data) {
		cfg.IncludeAll = false
	}

	return cfg, nil
}

// explicitlyEnablesAll reports whether the YAML document itself sets
// include_all, as opposed to inheriting the default.
func explicitlyEnablesAll(data []byte) bool {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return false
	}
	_, ok := raw["include_all"]
	return ok
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".xml2jsonl.yml", ".xml2jsonl.yaml", "xml2jsonl.yml", "xml2jsonl.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}
