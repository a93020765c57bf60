// Package config defines the daemon's runtime configuration (spec §6's
// "runtime" section): everything around the Director core's own contract —
// where to read input files, where to write output and the archive, and
// whether to serve the MCP introspection surface. The Director's own
// event_weights/focus/commentary/threads/director sections are a separate
// concern, loaded by director.Load.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the daemon's runtime configuration.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Runtime RuntimeConfig `yaml:"runtime"`
	MCP     MCPConfig     `yaml:"mcp"`
}

// InputConfig names the directory the ingestion tailer watches for
// events.jsonl, tensions.json, and snapshot.json.
type InputConfig struct {
	Dir string `yaml:"dir"`
}

// RuntimeConfig holds the ambient daemon concerns outside the Director's own
// contract: where to persist output and the archive, and how verbosely to
// log.
type RuntimeConfig struct {
	DirectorConfigPath string `yaml:"director_config_path"`
	OutputDir          string `yaml:"output_dir"`
	DBPath             string `yaml:"db_path"`
	LogLevel           string `yaml:"log_level"`
}

// MCPConfig controls the optional introspection server.
type MCPConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Transport string `yaml:"transport"` // "stdio" or "http"
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
}

// Load reads configuration from an optional YAML file (path from
// DIRECTOR_RUNTIME_CONFIG_PATH, if set) and environment variable overrides,
// the same defaults-then-file-then-env precedence the Director's own
// config.Load uses.
func Load() (Config, error) {
	cfg := Config{
		Input: InputConfig{
			Dir: "./run",
		},
		Runtime: RuntimeConfig{
			OutputDir: "./run/output",
			DBPath:    "./run/archive.db",
			LogLevel:  "info",
		},
		MCP: MCPConfig{
			Enabled:   true,
			Transport: "stdio",
			Host:      "0.0.0.0",
			Port:      8090,
		},
	}

	if path := os.Getenv("DIRECTOR_RUNTIME_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if dir := os.Getenv("DIRECTOR_INPUT_DIR"); dir != "" {
		cfg.Input.Dir = dir
	}
	if dir := os.Getenv("DIRECTOR_OUTPUT_DIR"); dir != "" {
		cfg.Runtime.OutputDir = dir
	}
	if path := os.Getenv("DIRECTOR_DB_PATH"); path != "" {
		cfg.Runtime.DBPath = path
	}
	if level := os.Getenv("DIRECTOR_LOG_LEVEL"); level != "" {
		cfg.Runtime.LogLevel = level
	}
	if mode := os.Getenv("DIRECTOR_MCP_TRANSPORT"); mode != "" {
		cfg.MCP.Transport = mode
	}
	if enabled := os.Getenv("DIRECTOR_MCP_ENABLED"); enabled != "" {
		value, err := strconv.ParseBool(enabled)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DIRECTOR_MCP_ENABLED: %w", err)
		}
		cfg.MCP.Enabled = value
	}
	if portStr := os.Getenv("DIRECTOR_MCP_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DIRECTOR_MCP_PORT: %w", err)
		}
		cfg.MCP.Port = port
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
