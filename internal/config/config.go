// Package config provides configuration management for mcpkit using Viper.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/thoreinstein/mcpkit/internal/errors"
	"github.com/thoreinstein/mcpkit/internal/paths"
)

// EnvPrefix is the prefix for environment variable overrides
// (MCPKIT_DEFAULT_AGENT, MCPKIT_CATALOG_VERSION, ...).
const EnvPrefix = "MCPKIT"

// Defaults.
const (
	DefaultCatalogRepo    = "rohitsoni007/mcp-kit"
	DefaultCatalogVersion = "latest"
	DefaultPageSize       = 10
	DefaultRetention      = 5
)

// Config represents the top-level configuration structure.
type Config struct {
	Version      int            `mapstructure:"version" yaml:"version"`
	DefaultAgent string         `mapstructure:"default_agent" yaml:"default_agent,omitempty"`
	Catalog      CatalogConfig  `mapstructure:"catalog" yaml:"catalog"`
	Selector     SelectorConfig `mapstructure:"selector" yaml:"selector"`
	Backup       BackupConfig   `mapstructure:"backup" yaml:"backup"`
}

// CatalogConfig controls where the server catalog comes from.
type CatalogConfig struct {
	// Repo is the GitHub owner/name publishing catalog releases.
	Repo string `mapstructure:"repo" yaml:"repo"`
	// Version is a release tag or "latest".
	Version string `mapstructure:"version" yaml:"version"`
	// File is an optional local catalog (JSON, YAML or TOML) used when
	// the download fails.
	File string `mapstructure:"file" yaml:"file,omitempty"`
}

// SelectorConfig tunes the interactive picker.
type SelectorConfig struct {
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
}

// BackupConfig controls backups taken before agent documents are rewritten.
type BackupConfig struct {
	Disabled  bool `mapstructure:"disabled" yaml:"disabled"`
	Retention int  `mapstructure:"retention" yaml:"retention"`
}

// Init resets Viper and installs defaults, search paths and env binding.
// Call this once at application startup before accessing config values.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(Dir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("version", 1)
	viper.SetDefault("default_agent", "")
	viper.SetDefault("catalog.repo", DefaultCatalogRepo)
	viper.SetDefault("catalog.version", DefaultCatalogVersion)
	viper.SetDefault("catalog.file", "")
	viper.SetDefault("selector.page_size", DefaultPageSize)
	viper.SetDefault("backup.disabled", false)
	viper.SetDefault("backup.retention", DefaultRetention)
}

// Dir returns the directory holding config.yaml. MCPKIT_CONFIG_DIR
// overrides the XDG location.
func Dir() string {
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir
	}
	return paths.ConfigDir()
}

// FilePath returns the config file Viper loaded, or the default location
// new settings are written to.
func FilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when no file exists.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// implicit load, defaults apply
		case errors.As(err, &notFound), os.IsNotExist(err):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "validating config")
	}

	return &cfg, nil
}

// Current unmarshals the live Viper state without touching the file system.
func Current() *Config {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Default()
	}
	return &cfg
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Version:  1,
		Catalog:  CatalogConfig{Repo: DefaultCatalogRepo, Version: DefaultCatalogVersion},
		Selector: SelectorConfig{PageSize: DefaultPageSize},
		Backup:   BackupConfig{Retention: DefaultRetention},
	}
}

// Keys lists the settable configuration keys in display order.
func Keys() []string {
	return []string{
		"version",
		"default_agent",
		"catalog.repo",
		"catalog.version",
		"catalog.file",
		"selector.page_size",
		"backup.disabled",
		"backup.retention",
	}
}
