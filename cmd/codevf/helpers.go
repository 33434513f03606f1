package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/codevf/codevf-go/internal/config"
	"github.com/codevf/codevf-go/pkg/codevf"
)

// configError marks failures to load or resolve configuration.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// globalOverrides collects the persistent flags that were set explicitly.
func globalOverrides() config.Overrides {
	o := config.Overrides{
		APIKey:  apiKeyFlag,
		BaseURL: baseURLFlag,
		Timeout: timeoutFlag,
	}
	if rootCmd.PersistentFlags().Changed("max-retries") {
		n := maxRetriesFlag
		o.MaxRetries = &n
	}
	return o
}

// loadConfig resolves configuration with the given overrides applied on top.
func loadConfig(o config.Overrides) (*config.ResolvedConfig, error) {
	cfg, err := config.ResolveConfig(o)
	if err != nil {
		return nil, &configError{err: err}
	}
	return cfg, nil
}

// newClient builds an SDK client from resolved configuration.
func newClient(cfg *config.ResolvedConfig) (*codevf.Client, error) {
	opts := append(cfg.ClientOptions(), codevf.WithLogger(newLogger()))
	return codevf.NewClient(opts...)
}

// getClient creates a client from the resolved config and global flags
func getClient() (*codevf.Client, error) {
	cfg, err := loadConfig(globalOverrides())
	if err != nil {
		return nil, err
	}
	return newClient(cfg)
}

// mapErrorToExitCode maps an error to the appropriate exit code
func mapErrorToExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeout
	}

	var cfgErr *configError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}

	switch codevf.KindOf(err) {
	case "":
		return ExitGeneralError
	case codevf.KindConnection:
		return ExitConnectionError
	case codevf.KindAuthentication:
		return ExitConfigError
	case codevf.KindNotFound:
		return ExitNotFound
	case codevf.KindRateLimit:
		return ExitRateLimited
	case codevf.KindServer:
		return ExitServerError
	case codevf.KindInsufficientCredits:
		return ExitInsufficientCredits
	case codevf.KindAPI:
		return ExitGeneralError
	default:
		// Local validation, payload too large and the 400 family.
		return ExitValidationError
	}
}

// handleError handles an error by printing it and exiting with the appropriate code
func handleError(err error) {
	if err == nil {
		return
	}

	printError(os.Stderr, err, jsonOutput)
	os.Exit(mapErrorToExitCode(err))
}

// parseMeta parses key=value pairs into task metadata. Values that look like
// integers, decimals or booleans keep that type; everything else is a string.
func parseMeta(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	meta := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata %q: expected key=value", pair)
		}
		meta[key] = parseMetaValue(value)
	}
	return meta, nil
}

func parseMetaValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if strings.TrimLeft(s, "+-0123456789.eE") == "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
