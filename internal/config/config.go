// Package config loads decisioncore configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/joeycumines/decisioncore/internal/blackboard"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "DECISIONCORE_"

const maxConfigFileSize = 1024 * 1024 // 1MB

// Config is the application configuration.
type Config struct {
	Log        LogConfig        `koanf:"log"`
	Sim        SimConfig        `koanf:"sim"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Tree       TreeConfig       `koanf:"tree"`
	Blackboard BlackboardConfig `koanf:"blackboard"`
}

// LogConfig selects the slog handler and its destination.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is text or json.
	Format string `koanf:"format"`
	// File, if set, receives the log instead of stderr. It is rotated once
	// it reaches MaxSizeMB, keeping MaxFiles backups.
	File      string `koanf:"file"`
	MaxSizeMB int    `koanf:"max_size_mb"`
	MaxFiles  int    `koanf:"max_files"`
}

// SimConfig controls the simulate command.
type SimConfig struct {
	Ticks    int           `koanf:"ticks"`
	Interval time.Duration `koanf:"interval"`
	Seed     uint64        `koanf:"seed"`
	Agents   int           `koanf:"agents"`

	// Report, if set, is the JSON file describing a run once it ends.
	Report string `koanf:"report"`
}

// MetricsConfig controls the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// TreeConfig points at a tree document replacing the built-in tree, and at
// a script loaded into every agent. Experts names script objects joining the
// owner's experts; they need a script.
type TreeConfig struct {
	Path    string   `koanf:"path"`
	Script  string   `koanf:"script"`
	Experts []string `koanf:"experts"`
}

// BlackboardConfig holds initial values seeded into every agent.
type BlackboardConfig struct {
	Entries []blackboard.Entry `koanf:"entries"`
}

// NewConfig returns the defaults.
func NewConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:     "info",
			Format:    "text",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
		Sim: SimConfig{
			Ticks:    100,
			Interval: 50 * time.Millisecond,
			Agents:   1,
		},
	}
}

// Load reads the YAML file at path, if path is not empty, then applies
// environment overrides.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (DECISIONCORE_SIM_TICKS, DECISIONCORE_LOG_LEVEL, ...)
//  2. YAML config file
//  3. Defaults
//
// Environment variables map to keys by dropping the prefix, lowercasing and
// splitting section from field on the first underscore:
//
//	DECISIONCORE_SIM_TICKS    -> sim.ticks
//	DECISIONCORE_METRICS_ADDR -> metrics.addr
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// keys absent from both sources keep their defaults
	cfg := NewConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// envKey maps DECISIONCORE_SECTION_FIELD_NAME to section.field_name, so
// DECISIONCORE_LOG_MAX_FILES sets log.max_files.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: invalid level %q (expected debug, info, warn or error)", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: invalid format %q (expected text or json)", c.Log.Format)
	}
	if c.Log.MaxSizeMB < 1 {
		return fmt.Errorf("log.max_size_mb: must be at least 1, got %d", c.Log.MaxSizeMB)
	}
	if c.Log.MaxFiles < 0 {
		return fmt.Errorf("log.max_files: must not be negative, got %d", c.Log.MaxFiles)
	}
	if c.Sim.Ticks <= 0 {
		return fmt.Errorf("sim.ticks: must be positive, got %d", c.Sim.Ticks)
	}
	if c.Sim.Agents <= 0 {
		return fmt.Errorf("sim.agents: must be positive, got %d", c.Sim.Agents)
	}
	if c.Sim.Interval < 0 {
		return fmt.Errorf("sim.interval: must not be negative, got %v", c.Sim.Interval)
	}
	if len(c.Tree.Experts) > 0 && c.Tree.Script == "" {
		return errors.New("tree.experts: script experts need tree.script")
	}
	for i, e := range c.Blackboard.Entries {
		if e.Name == "" {
			return fmt.Errorf("blackboard.entries[%d]: missing name", i)
		}
		if _, err := blackboard.ConvertValue(e.Type, e.Value); err != nil {
			return fmt.Errorf("blackboard.entries[%d] (%s): %w", i, e.Name, err)
		}
	}
	return nil
}
