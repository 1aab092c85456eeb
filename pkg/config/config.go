// Package config loads the devkit configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds user settings from ~/.devkit/config.yaml. Every field has a
// default; a missing config file is not an error.
type Config struct {
	// Install settings
	Install InstallConfig `yaml:"install"`

	// Version bump settings
	Version VersionConfig `yaml:"version"`

	// Launch agent settings
	Daemon DaemonConfig `yaml:"daemon"`

	// LogLevel sets the logger level: debug, info, warn, error
	LogLevel string `yaml:"log_level"`
}

// InstallConfig configures the binary installer.
type InstallConfig struct {
	// BinDir is the default destination directory for installed binaries
	BinDir string `yaml:"bin_dir"`
}

// VersionConfig configures the version bumper.
type VersionConfig struct {
	// TagPrefix is prepended to version numbers when tagging (default "v")
	TagPrefix string `yaml:"tag_prefix"`
}

// DaemonConfig configures launch agent management.
type DaemonConfig struct {
	// LabelPrefix namespaces launch agent labels (default "com.devkit")
	LabelPrefix string `yaml:"label_prefix"`

	// LogDir is where agent stdout/stderr logs are written
	LogDir string `yaml:"log_dir"`
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".devkit", "config.yaml"), nil
}

// Load reads the config file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadDefault loads the config from the standard location.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// applyDefaults fills in any unset fields.
func (c *Config) applyDefaults() {
	if c.Install.BinDir == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			c.Install.BinDir = filepath.Join(homeDir, ".local", "bin")
		}
	}
	if c.Version.TagPrefix == "" {
		c.Version.TagPrefix = "v"
	}
	if c.Daemon.LabelPrefix == "" {
		c.Daemon.LabelPrefix = "com.devkit"
	}
	if c.Daemon.LogDir == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			c.Daemon.LogDir = filepath.Join(homeDir, ".devkit", "logs")
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
