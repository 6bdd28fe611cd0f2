// Package config loads and persists the stacklens configuration stored at
// .stacklens/config.json under the workspace root.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"stacklens/internal/errors"
)

// Config represents the complete stacklens configuration (v1 schema)
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Repository RepositoryConfig `json:"repository" mapstructure:"repository"`
	Cache      CacheConfig      `json:"cache" mapstructure:"cache"`
	Analysis   AnalysisConfig   `json:"analysis" mapstructure:"analysis"`
	Storage    StorageConfig    `json:"storage" mapstructure:"storage"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`
}

// RepositoryConfig identifies the repository whose sources are fetched
type RepositoryConfig struct {
	Owner         string `json:"owner" mapstructure:"owner"`
	Name          string `json:"name" mapstructure:"name"`
	DefaultBranch string `json:"defaultBranch" mapstructure:"defaultBranch"`
	// TokenEnv names the environment variable holding the API token. The
	// token itself is never written to the config file.
	TokenEnv string `json:"tokenEnv" mapstructure:"tokenEnv"`
	BaseURL  string `json:"baseUrl,omitempty" mapstructure:"baseUrl"`
}

// CacheConfig bounds the in-memory file cache
type CacheConfig struct {
	MaxBytes   int64 `json:"maxBytes" mapstructure:"maxBytes"`
	MaxEntries int   `json:"maxEntries" mapstructure:"maxEntries"`
	TtlSeconds int   `json:"ttlSeconds" mapstructure:"ttlSeconds"`
}

// AnalysisConfig tunes trace interpretation and window assembly
type AnalysisConfig struct {
	ContextHalfWidth  int      `json:"contextHalfWidth" mapstructure:"contextHalfWidth"`
	MaxCandidateFiles int      `json:"maxCandidateFiles" mapstructure:"maxCandidateFiles"`
	StripPrefixes     []string `json:"stripPrefixes" mapstructure:"stripPrefixes"`
	ExcludeTokens     []string `json:"excludeTokens" mapstructure:"excludeTokens"`
}

// StorageConfig locates the diagnostics journal
type StorageConfig struct {
	Path          string `json:"path" mapstructure:"path"`
	RetentionDays int    `json:"retentionDays" mapstructure:"retentionDays"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Repository: RepositoryConfig{
			DefaultBranch: "main",
			TokenEnv:      "GITHUB_TOKEN",
		},
		Cache: CacheConfig{
			MaxBytes:   50 * 1024 * 1024,
			MaxEntries: 1000,
			TtlSeconds: 1800,
		},
		Analysis: AnalysisConfig{
			ContextHalfWidth:  10,
			MaxCandidateFiles: 10,
			StripPrefixes:     []string{},
			ExcludeTokens:     []string{},
		},
		Storage: StorageConfig{
			Path:          ".stacklens/stacklens.db",
			RetentionDays: 30,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .stacklens/config.json
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".stacklens"))

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; run on defaults.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, errors.New(errors.ConfigInvalid, "could not read config file", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "could not parse config file", err)
	}

	return cfg, nil
}

// Token resolves the repository API token from the configured environment
// variable. Empty when unset, which means unauthenticated access.
func (c *Config) Token() string {
	if c.Repository.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.Repository.TokenEnv)
}

// Save writes the configuration to .stacklens/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".stacklens")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return errors.New(errors.ConfigInvalid, "unsupported config version", nil).
			WithDetails(map[string]interface{}{"version": c.Version})
	}
	if c.Cache.MaxBytes <= 0 {
		return errors.New(errors.ConfigInvalid, "cache.maxBytes must be positive", nil)
	}
	if c.Cache.MaxEntries <= 0 {
		return errors.New(errors.ConfigInvalid, "cache.maxEntries must be positive", nil)
	}
	if c.Cache.TtlSeconds <= 0 {
		return errors.New(errors.ConfigInvalid, "cache.ttlSeconds must be positive", nil)
	}
	if c.Analysis.ContextHalfWidth <= 0 {
		return errors.New(errors.ConfigInvalid, "analysis.contextHalfWidth must be positive", nil)
	}
	if c.Analysis.MaxCandidateFiles <= 0 {
		return errors.New(errors.ConfigInvalid, "analysis.maxCandidateFiles must be positive", nil)
	}
	return nil
}
