// Command codevf-fakeapi runs an in-memory CodeVF API for local development.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/codevf/codevf-go/internal/fakeapi"
	"github.com/codevf/codevf-go/internal/server"
)

const (
	envBind   = "CODEVF_FAKEAPI_BIND"
	envAPIKey = "CODEVF_FAKEAPI_KEY"

	defaultAPIKey = "sk-local"
)

var rootCmd = &cobra.Command{
	Use:   "codevf-fakeapi",
	Short: "Run a local CodeVF API",
	Long: `Serve the CodeVF API from memory. Tasks, projects and credit holds
live for the lifetime of the process.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		bind, _ := cmd.Flags().GetString("bind")
		apiKey, _ := cmd.Flags().GetString("api-key")
		credits, _ := cmd.Flags().GetString("credits")
		autoAdvance, _ := cmd.Flags().GetBool("auto-advance")
		verbose, _ := cmd.Flags().GetBool("verbose")

		return run(bind, apiKey, credits, autoAdvance, verbose)
	},
}

func init() {
	rootCmd.Flags().String("bind", envOr(envBind, server.DefaultAddress), "Address to bind the server to")
	rootCmd.Flags().String("api-key", envOr(envAPIKey, defaultAPIKey), "Bearer token clients must present")
	rootCmd.Flags().String("credits", fakeapi.DefaultCredits.String(), "Starting available credits")
	rootCmd.Flags().Bool("auto-advance", true, "Advance tasks one status per poll until completed")
	rootCmd.Flags().BoolP("verbose", "v", false, "Log at debug level")
}

func run(bind, apiKey, credits string, autoAdvance, verbose bool) error {
	balance, err := decimal.NewFromString(credits)
	if err != nil {
		return fmt.Errorf("invalid --credits %q: %w", credits, err)
	}
	if balance.IsNegative() {
		return fmt.Errorf("invalid --credits %q: must not be negative", credits)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []fakeapi.Option{fakeapi.WithCredits(balance)}
	if autoAdvance {
		opts = append(opts, fakeapi.WithAutoAdvance())
	}

	router := fakeapi.NewRouter(fakeapi.NewStore(opts...), apiKey, logger)
	srv := server.New(bind, router, logger)

	logger.Info("starting codevf fake api", "base_path", fakeapi.BasePath, "auto_advance", autoAdvance)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
