// Package config resolves CLI settings from files, the environment and flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// GlobalConfigDir is the name of the global config directory in home
	GlobalConfigDir = ".codevf"

	// GlobalConfigFileName is the name of the global config file
	GlobalConfigFileName = "config.toml"
)

// APISettings holds connection settings that may appear in either config file.
// Zero values mean "not set".
type APISettings struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries *int
}

// GlobalConfig represents the user-level configuration from ~/.codevf/config.toml
type GlobalConfig struct {
	API APISettings
}

// globalConfigFile represents the raw TOML structure for global config
type globalConfigFile struct {
	API apiSection `toml:"api"`
}

// apiSection represents the [api] section in TOML
type apiSection struct {
	Key        string `toml:"key"`
	BaseURL    string `toml:"base_url"`
	Timeout    string `toml:"timeout"`
	MaxRetries *int   `toml:"max_retries"`
}

// settings validates the raw section and converts it.
func (s apiSection) settings() (APISettings, error) {
	out := APISettings{
		APIKey:     s.Key,
		BaseURL:    s.BaseURL,
		MaxRetries: s.MaxRetries,
	}

	if s.Timeout != "" {
		d, err := parseTimeout(s.Timeout)
		if err != nil {
			return APISettings{}, err
		}
		out.Timeout = d
	}
	if s.MaxRetries != nil {
		if err := validateMaxRetries(*s.MaxRetries); err != nil {
			return APISettings{}, err
		}
	}

	return out, nil
}

// LoadGlobalConfig loads the global configuration from ~/.codevf/config.toml.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return LoadGlobalConfigFromDir(homeDir)
}

// LoadGlobalConfigFromDir loads global config using the specified directory as home.
func LoadGlobalConfigFromDir(homeDir string) (*GlobalConfig, error) {
	configPath := filepath.Join(homeDir, GlobalConfigDir, GlobalConfigFileName)

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return &GlobalConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read global config: %w", err)
	}

	var rawConfig globalConfigFile
	if _, err := toml.Decode(string(data), &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse global config TOML: %w", err)
	}

	api, err := rawConfig.API.settings()
	if err != nil {
		return nil, fmt.Errorf("invalid global config %s: %w", configPath, err)
	}

	return &GlobalConfig{API: api}, nil
}

// parseTimeout accepts a Go duration ("45s", "2m") or a whole number of seconds.
func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		secs, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, fmt.Errorf("invalid timeout %q: use a duration like 30s", s)
		}
		d = time.Duration(secs) * time.Second
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid timeout %q: must be positive", s)
	}
	return d, nil
}

// validateMaxRetries checks that the retry count is not negative
func validateMaxRetries(n int) error {
	if n < 0 {
		return fmt.Errorf("invalid max_retries %d: cannot be negative", n)
	}
	return nil
}
