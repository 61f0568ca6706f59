// Package config handles reading and writing the bw configuration file (~/.bw/config.toml).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds bw configuration settings.
type Config struct {
	DBPath        string `toml:"db_path,omitempty" json:"db_path,omitempty"`
	KnowledgePath string `toml:"knowledge_path,omitempty" json:"knowledge_path,omitempty"`
	PatternsPath  string `toml:"patterns_path,omitempty" json:"patterns_path,omitempty"`
	DefaultFormat string `toml:"default_format,omitempty" json:"default_format,omitempty"`
	StoreMode     string `toml:"store_mode,omitempty" json:"store_mode,omitempty"`
	RemoteURL     string `toml:"remote_url,omitempty" json:"remote_url,omitempty"`
	LogLevel      string `toml:"log_level,omitempty" json:"log_level,omitempty"`
	LogFormat     string `toml:"log_format,omitempty" json:"log_format,omitempty"`
	LogFile       string `toml:"log_file,omitempty" json:"log_file,omitempty"`
	RecordHistory *bool  `toml:"record_history,omitempty" json:"record_history,omitempty"`
}

// validKeys lists the allowed configuration keys.
var validKeys = map[string]bool{
	"db_path":        true,
	"knowledge_path": true,
	"patterns_path":  true,
	"default_format": true,
	"store_mode":     true,
	"remote_url":     true,
	"log_level":      true,
	"log_format":     true,
	"log_file":       true,
	"record_history": true,
}

// allowed restricts keys to a fixed set of values. The empty string always
// resets a key to its default.
var allowed = map[string][]string{
	"default_format": {"text", "pictoblox", "blocks"},
	"store_mode":     {"local", "remote"},
	"log_level":      {"debug", "info", "warn", "error"},
	"log_format":     {"text", "json"},
}

// ValidKeys returns the sorted list of valid configuration keys.
func ValidKeys() []string {
	return []string{
		"db_path", "default_format", "knowledge_path", "log_file", "log_format",
		"log_level", "patterns_path", "record_history", "remote_url", "store_mode",
	}
}

// Dir returns the bw data directory (~/.bw).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".bw")
	}
	return filepath.Join(home, ".bw")
}

// Path returns the default config file path (~/.bw/config.toml).
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// LoadFrom reads the config from a specific path. Returns an empty Config if
// the file does not exist. Supports both TOML and JSON formats (detected by
// file extension; defaults to TOML).
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = toml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// SaveTo writes the config to a specific path, creating parent directories as
// needed. Paths ending in .json are written as JSON, all others as TOML.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	var (
		data []byte
		err  error
	)
	if filepath.Ext(path) == ".json" {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = toml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Recording reports whether generations should be saved to history.
// Recording is on unless record_history is explicitly false.
func (c *Config) Recording() bool {
	return c.RecordHistory == nil || *c.RecordHistory
}

// Get returns the string value of a configuration key.
func (c *Config) Get(key string) (string, error) {
	if !validKeys[key] {
		return "", fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(ValidKeys(), ", "))
	}
	switch key {
	case "db_path":
		return c.DBPath, nil
	case "knowledge_path":
		return c.KnowledgePath, nil
	case "patterns_path":
		return c.PatternsPath, nil
	case "default_format":
		return c.DefaultFormat, nil
	case "store_mode":
		return c.StoreMode, nil
	case "remote_url":
		return c.RemoteURL, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "log_file":
		return c.LogFile, nil
	case "record_history":
		if c.RecordHistory == nil {
			return "", nil
		}
		return strconv.FormatBool(*c.RecordHistory), nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// Set assigns a value to a configuration key.
func (c *Config) Set(key, value string) error {
	if !validKeys[key] {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(ValidKeys(), ", "))
	}
	if opts, ok := allowed[key]; ok && value != "" && !contains(opts, value) {
		return fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(opts, ", "), value)
	}
	switch key {
	case "db_path":
		c.DBPath = value
	case "knowledge_path":
		c.KnowledgePath = value
	case "patterns_path":
		c.PatternsPath = value
	case "default_format":
		c.DefaultFormat = value
	case "store_mode":
		c.StoreMode = value
	case "remote_url":
		c.RemoteURL = value
	case "log_level":
		c.LogLevel = value
	case "log_format":
		c.LogFormat = value
	case "log_file":
		c.LogFile = value
	case "record_history":
		if value == "" {
			c.RecordHistory = nil
			return nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("record_history must be true or false, got %q", value)
		}
		c.RecordHistory = &b
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
