package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/codevf/codevf-go/pkg/codevf"
)

// Overrides carries values given on the command line. Zero values are ignored.
type Overrides struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries *int
	ProjectID  int64
	Tier       string
}

// ResolvedConfig represents the final merged configuration with all
// precedence rules applied. Precedence order (highest to lowest):
// 1. Command-line overrides
// 2. Environment variables
// 3. .env in the working directory
// 4. Project config (codevf.toml)
// 5. Global config (~/.codevf/config.toml)
// 6. Built-in defaults
type ResolvedConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	ProjectID  int64
	Tier       codevf.Tier

	// ProjectFile is the codevf.toml that was applied, empty if none was found.
	ProjectFile string
}

// ClientOptions converts the resolved settings into SDK client options.
func (c *ResolvedConfig) ClientOptions() []codevf.ClientOption {
	opts := []codevf.ClientOption{
		codevf.WithTimeout(c.Timeout),
		codevf.WithMaxRetries(c.MaxRetries),
		codevf.WithBaseURL(c.BaseURL),
	}
	if c.APIKey != "" {
		opts = append(opts, codevf.WithAPIKey(c.APIKey))
	}
	return opts
}

// ResolveConfig resolves configuration for the current user and working directory.
func ResolveConfig(o Overrides) (*ResolvedConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return ResolveConfigWithDirs(homeDir, workDir, o)
}

// ResolveConfigWithDirs resolves config using the given home and working directories.
func ResolveConfigWithDirs(homeDir, workDir string, o Overrides) (*ResolvedConfig, error) {
	resolved := &ResolvedConfig{
		BaseURL:    codevf.DefaultBaseURL,
		Timeout:    codevf.DefaultTimeout,
		MaxRetries: codevf.DefaultMaxRetries,
		Tier:       codevf.TierStandard,
	}

	globalCfg, err := LoadGlobalConfigFromDir(homeDir)
	if err != nil {
		return nil, err
	}
	resolved.applyAPI(globalCfg.API)

	projectCfg, err := DiscoverProjectConfigFrom(workDir)
	switch {
	case errors.Is(err, ErrNoProjectConfig):
	case err != nil:
		return nil, err
	default:
		resolved.ProjectFile = projectCfg.Path
		resolved.applyAPI(projectCfg.API)
		if projectCfg.ProjectID != 0 {
			resolved.ProjectID = projectCfg.ProjectID
		}
		if projectCfg.Tier != "" {
			resolved.Tier = projectCfg.Tier
		}
	}

	env, err := loadEnv(workDir)
	if err != nil {
		return nil, err
	}
	if err := resolved.applyEnv(env); err != nil {
		return nil, err
	}

	if err := resolved.applyOverrides(o); err != nil {
		return nil, err
	}

	return resolved, nil
}

func (c *ResolvedConfig) applyAPI(s APISettings) {
	if s.APIKey != "" {
		c.APIKey = s.APIKey
	}
	if s.BaseURL != "" {
		c.BaseURL = s.BaseURL
	}
	if s.Timeout != 0 {
		c.Timeout = s.Timeout
	}
	if s.MaxRetries != nil {
		c.MaxRetries = *s.MaxRetries
	}
}

func (c *ResolvedConfig) applyEnv(env map[string]string) error {
	if v, ok := env[EnvAPIKey]; ok {
		c.APIKey = v
	}
	if v, ok := env[EnvBaseURL]; ok {
		c.BaseURL = v
	}
	if v, ok := env[EnvTimeout]; ok {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v, ok := env[EnvMaxRetries]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid number %q", EnvMaxRetries, v)
		}
		if err := validateMaxRetries(n); err != nil {
			return fmt.Errorf("%s: %w", EnvMaxRetries, err)
		}
		c.MaxRetries = n
	}
	if v, ok := env[EnvProjectID]; ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("%s: invalid project id %q", EnvProjectID, v)
		}
		c.ProjectID = id
	}
	if v, ok := env[EnvTier]; ok {
		tier, err := codevf.ParseTier(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTier, err)
		}
		c.Tier = tier
	}
	return nil
}

func (c *ResolvedConfig) applyOverrides(o Overrides) error {
	if o.APIKey != "" {
		c.APIKey = o.APIKey
	}
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s: must be positive", o.Timeout)
	}
	if o.Timeout > 0 {
		c.Timeout = o.Timeout
	}
	if o.MaxRetries != nil {
		if err := validateMaxRetries(*o.MaxRetries); err != nil {
			return err
		}
		c.MaxRetries = *o.MaxRetries
	}
	if o.ProjectID < 0 {
		return fmt.Errorf("invalid project id %d: must be positive", o.ProjectID)
	}
	if o.ProjectID > 0 {
		c.ProjectID = o.ProjectID
	}
	if o.Tier != "" {
		tier, err := codevf.ParseTier(o.Tier)
		if err != nil {
			return err
		}
		c.Tier = tier
	}
	return nil
}
