// Package config loads the stepvault configuration file.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config represents the stepvault configuration
type Config struct {
	DatabasePath     string `json:"databasePath,omitempty"`  // SQLite database holding variables and references
	CacheSize        int    `json:"cacheSize,omitempty"`     // variable cache capacity per execution
	SuggestionTTLSec int    `json:"suggestionTTL,omitempty"` // suggestion cache lifetime in seconds
	SearchLimit      int    `json:"searchLimit,omitempty"`   // default cap on search results
	ExploreDepth     int    `json:"exploreDepth,omitempty"`  // default property exploration depth
	NoColor          *bool  `json:"noColor,omitempty"`
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// SuggestionTTL returns the suggestion cache lifetime as a duration.
func (c *Config) SuggestionTTL() time.Duration {
	return time.Duration(c.SuggestionTTLSec) * time.Second
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".stepvault.config.json",
	"stepvault.config.json",
	".stepvaultrc",
	".stepvaultrc.json",
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:     "stepvault.db",
		CacheSize:        1000,
		SuggestionTTLSec: 30,
		SearchLimit:      10,
		ExploreDepth:     3,
	}
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}
	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.DatabasePath != "" {
		result.DatabasePath = other.DatabasePath
	}
	if other.CacheSize > 0 {
		result.CacheSize = other.CacheSize
	}
	if other.SuggestionTTLSec > 0 {
		result.SuggestionTTLSec = other.SuggestionTTLSec
	}
	if other.SearchLimit > 0 {
		result.SearchLimit = other.SearchLimit
	}
	if other.ExploreDepth > 0 {
		result.ExploreDepth = other.ExploreDepth
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
