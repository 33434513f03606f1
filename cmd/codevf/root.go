package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "codevf",
	Short: "CodeVF command-line client",
	Long: `Submit engineering tasks to CodeVF, track their progress and inspect
credits and expertise tags.

Settings are read from ~/.codevf/config.toml, the nearest codevf.toml,
a .env file in the working directory and CODEVF_* environment variables.
Flags override all of them.`,
}

// Global flags
var (
	jsonOutput     bool
	verbose        bool
	apiKeyFlag     string
	baseURLFlag    string
	timeoutFlag    time.Duration
	maxRetriesFlag int
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&jsonOutput, "json", false, "Output as JSON")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
	flags.StringVar(&apiKeyFlag, "api-key", "", "API key (overrides CODEVF_API_KEY)")
	flags.StringVar(&baseURLFlag, "base-url", "", "API base URL")
	flags.DurationVar(&timeoutFlag, "timeout", 0, "Per-request timeout, e.g. 30s")
	flags.IntVar(&maxRetriesFlag, "max-retries", 0, "Retries for 502/503/504 responses")
}

// newLogger returns the logger handed to the SDK. Without --verbose only
// warnings reach stderr.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitGeneralError)
	}
}
