// Package config loads engine-wide settings from an optional YAML file,
// overridden by environment variables, the way linear-fuse's config loader
// does.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is every engine setting that does not belong to a specific task
// graph: where tasks stage their working directories, whether file change
// detection is skipped, how verbosely the run logs, and where its manifest
// lives on disk.
type Config struct {
	WorkingDir    string `yaml:"working_dir"`
	SkipChecksums bool   `yaml:"skip_checksums"`
	LogLevel      string `yaml:"log_level"`
	ManifestPath  string `yaml:"manifest_path"`
}

// DefaultConfig returns the settings a run uses when no file and no
// environment override is present: an engine-assigned temp working
// directory, checksums enabled, info-level logging, and a manifest named
// scriptweaver.manifest.json in the current directory.
func DefaultConfig() *Config {
	return &Config{
		WorkingDir:    "",
		SkipChecksums: false,
		LogLevel:      "info",
		ManifestPath:  "scriptweaver.manifest.json",
	}
}

// Load loads configuration using the real process environment.
func Load() (*Config, error) {
	return LoadWithEnv(os.Getenv)
}

// LoadWithEnv loads configuration using the supplied environment lookup,
// so tests can exercise override behavior without touching the real
// environment.
func LoadWithEnv(getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPathWithEnv(getenv)
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %q: %w", configPath, err)
		}
	}

	if wd := getenv("SCRIPTWEAVER_WORKING_DIR"); wd != "" {
		cfg.WorkingDir = wd
	}
	if lvl := getenv("SCRIPTWEAVER_LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if mp := getenv("SCRIPTWEAVER_MANIFEST"); mp != "" {
		cfg.ManifestPath = mp
	}
	if sk := getenv("SCRIPTWEAVER_SKIP_CHECKSUMS"); sk == "1" || sk == "true" {
		cfg.SkipChecksums = true
	}

	return cfg, nil
}

func getConfigPathWithEnv(getenv func(string) string) string {
	if explicit := getenv("SCRIPTWEAVER_CONFIG"); explicit != "" {
		return explicit
	}
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scriptweaver", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "scriptweaver", "config.yaml")
}

// SlogLevel parses LogLevel into a slog.Level, defaulting to Info for an
// empty or unrecognized string rather than failing the run over a typo'd
// setting.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
