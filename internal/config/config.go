// Package config loads the YAML configuration file and applies defaults
// and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// HomeDir is the data directory, default ~/.taskforge.
	HomeDir string `yaml:"-"`

	// DBPath overrides the SQLite file location. Empty means
	// <home>/taskforge.db.
	DBPath string `yaml:"db_path"`

	LogLevel string `yaml:"log_level"`

	// Quiet routes logs to file only, keeping command output clean.
	// Defaults to true; set quiet: false to mirror logs to stderr.
	Quiet bool `yaml:"quiet"`

	// DefaultPriority is applied to new tasks created without one.
	DefaultPriority int `yaml:"default_priority"`
}

func defaultHomeDir() string {
	if env := os.Getenv("TASKFORGE_HOME"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".taskforge")
}

func ConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}

// Load reads <home>/config.yaml if present and fills in defaults. A missing
// file is not an error; the defaults stand.
func Load() (*Config, error) {
	cfg := &Config{
		HomeDir:         defaultHomeDir(),
		LogLevel:        "info",
		Quiet:           true,
		DefaultPriority: 5,
	}

	path := ConfigPath(cfg.HomeDir)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	if cfg.DefaultPriority < 0 || cfg.DefaultPriority > 10 {
		cfg.DefaultPriority = 5
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if env := os.Getenv("TASKFORGE_DB"); env != "" {
		cfg.DBPath = env
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.HomeDir, "taskforge.db")
	}
}

// Save writes the config back as YAML, creating the home directory first.
func Save(cfg *Config) error {
	if err := os.MkdirAll(cfg.HomeDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(ConfigPath(cfg.HomeDir), b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
