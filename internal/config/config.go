// Package config loads kvflowd's YAML configuration file into a typed
// struct. The parser is a small hand-rolled subset of YAML (see parser.go)
// rather than a full implementation — 2-space indentation-based mappings
// of scalars and nested mappings, which is everything the config schema
// below needs. Sequences are rejected as a parse error.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the root configuration for kvflowd.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Dir       string          `json:"dir"`
	DBFile    string          `json:"dbfilename"`
	RateLimit RateLimitConfig `json:"rateLimit"`
	Metrics   MetricsConfig   `json:"metrics"`
	Logging   LoggingConfig   `json:"logging"`

	path string
}

// ServerConfig describes the RESP listener.
type ServerConfig struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

// RateLimitConfig bounds the number of commands a single connection may
// issue per second. Zero disables the limiter.
type RateLimitConfig struct {
	CommandsPerSecond float64 `json:"commandsPerSecond"`
}

// MetricsConfig configures the optional admin HTTP mux. An empty Address
// disables it.
type MetricsConfig struct {
	Address    string `json:"address"`
	ShardCount int    `json:"shardCount"`
}

// LoggingConfig configures the file+console logger.
type LoggingConfig struct {
	Dir   string `json:"dir"`
	Level string `json:"level"`
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: path is empty")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve path: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	raw, err := parseYAML(file)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("config: re-encode: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	cfg.path = absPath
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a Config populated entirely from defaults, useful when no
// config file is supplied and all settings come from CLI flags.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in zero-valued fields. Open Question (spec.md §9):
// the two source variants disagree on the default dbfilename ("redis.db"
// vs "dump.db"); "dump.db" is chosen here as the more common Redis
// default — see DESIGN.md.
func (c *Config) ApplyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 6379
	}
	if c.Dir == "" {
		c.Dir = "data"
	}
	if c.DBFile == "" {
		c.DBFile = "dump.db"
	}
	if c.Metrics.ShardCount <= 0 {
		c.Metrics.ShardCount = 32
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = "logs"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate ensures the config is usable.
func (c *Config) Validate() error {
	var errs []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be in 1-65535")
	}
	if c.RateLimit.CommandsPerSecond < 0 {
		errs = append(errs, "rateLimit.commandsPerSecond must be >= 0")
	}
	if c.Metrics.ShardCount <= 0 {
		errs = append(errs, "metrics.shardCount must be > 0")
	}
	if len(errs) > 0 {
		return &ValidationError{Path: c.path, Errors: errs}
	}
	return nil
}

// SnapshotPath returns the resolved RDB file path. REDESIGN FLAG (see
// SPEC_FULL.md §9): unlike the original source, this joins Dir and DBFile
// rather than opening DBFile alone in the working directory.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.Dir, c.DBFile)
}

// Addr returns the host:port the RESP listener should bind.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// ValidationError collects configuration issues.
type ValidationError struct {
	Path   string
	Errors []string
}

func (e *ValidationError) Error() string {
	msg := "invalid configuration"
	if e.Path != "" {
		msg += ": " + e.Path
	}
	for _, err := range e.Errors {
		msg += "\n - " + err
	}
	return msg
}
