package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/codevf/codevf-go/pkg/codevf"
)

// Environment variables consulted during resolution.
const (
	EnvAPIKey     = codevf.APIKeyEnv
	EnvBaseURL    = codevf.BaseURLEnv
	EnvTimeout    = "CODEVF_TIMEOUT"
	EnvMaxRetries = "CODEVF_MAX_RETRIES"
	EnvProjectID  = "CODEVF_PROJECT_ID"
	EnvTier       = "CODEVF_TIER"
)

// DotEnvFileName is read from the working directory when present.
const DotEnvFileName = ".env"

var envKeys = []string{EnvAPIKey, EnvBaseURL, EnvTimeout, EnvMaxRetries, EnvProjectID, EnvTier}

// loadEnv returns the CODEVF_* settings from workDir/.env overlaid with the
// process environment. Variables that are set to an empty string count as unset.
// The process environment is never modified.
func loadEnv(workDir string) (map[string]string, error) {
	values := make(map[string]string, len(envKeys))

	path := filepath.Join(workDir, DotEnvFileName)
	if _, err := os.Stat(path); err == nil {
		dotenv, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for _, key := range envKeys {
			if v := dotenv[key]; v != "" {
				values[key] = v
			}
		}
	}

	for _, key := range envKeys {
		if v := os.Getenv(key); v != "" {
			values[key] = v
		}
	}

	return values, nil
}
