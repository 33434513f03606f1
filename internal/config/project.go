package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/codevf/codevf-go/pkg/codevf"
)

// ConfigFileName is the name of the project configuration file
const ConfigFileName = "codevf.toml"

// ErrNoProjectConfig is returned by DiscoverProjectConfig when no codevf.toml
// exists in the working directory or any of its parents.
var ErrNoProjectConfig = errors.New("no codevf.toml found")

// ProjectConfig represents the project-level configuration from codevf.toml
type ProjectConfig struct {
	// Path is the file the config was read from.
	Path      string
	ProjectID int64
	Tier      codevf.Tier
	API       APISettings
}

// projectConfigFile represents the raw TOML structure
type projectConfigFile struct {
	ProjectID int64      `toml:"project_id"`
	Tier      string     `toml:"tier"`
	API       apiSection `toml:"api"`
}

// DiscoverProjectConfig finds and parses the codevf.toml file by traversing
// up the directory tree from the current working directory.
func DiscoverProjectConfig() (*ProjectConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	return DiscoverProjectConfigFrom(cwd)
}

// DiscoverProjectConfigFrom searches for codevf.toml starting from the given directory
func DiscoverProjectConfigFrom(startDir string) (*ProjectConfig, error) {
	dir := startDir

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return ParseProjectConfig(configPath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNoProjectConfig
		}
		dir = parent
	}
}

// ParseProjectConfig parses the codevf.toml file at the given path
func ParseProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var rawConfig projectConfigFile
	if _, err := toml.Decode(string(data), &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	if rawConfig.ProjectID < 0 {
		return nil, fmt.Errorf("invalid project_id %d: must be positive", rawConfig.ProjectID)
	}

	cfg := &ProjectConfig{
		Path:      path,
		ProjectID: rawConfig.ProjectID,
	}

	if rawConfig.Tier != "" {
		tier, err := codevf.ParseTier(rawConfig.Tier)
		if err != nil {
			return nil, fmt.Errorf("invalid tier in %s: %w", path, err)
		}
		cfg.Tier = tier
	}

	cfg.API, err = rawConfig.API.settings()
	if err != nil {
		return nil, fmt.Errorf("invalid project config %s: %w", path, err)
	}

	return cfg, nil
}
