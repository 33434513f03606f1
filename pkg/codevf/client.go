package codevf

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Version is the SDK version reported in the User-Agent header.
const Version = "0.1.0"

// Default configuration values.
const (
	// DefaultBaseURL is the production API base URL.
	DefaultBaseURL = "https://codevf.com/api/v1/"

	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of transport retries for 502/503/504.
	DefaultMaxRetries = 3

	// APIKeyEnv is the environment variable consulted when no API key is given.
	APIKeyEnv = "CODEVF_API_KEY"

	// BaseURLEnv is the environment variable consulted when no base URL is given.
	BaseURLEnv = "CODEVF_BASE_URL"
)

// Client is an HTTP client for the CodeVF API.
//
// A Client holds only immutable configuration and is safe for concurrent use
// as long as the underlying *http.Client is.
type Client struct {
	baseURL   *url.URL
	apiKey    string
	userAgent string
	http      *http.Client
	logger    *slog.Logger
}

// NewClient creates a new CodeVF API client.
//
// Options:
//   - WithAPIKey: API key (default: $CODEVF_API_KEY, required)
//   - WithBaseURL: API base URL (default: $CODEVF_BASE_URL or DefaultBaseURL)
//   - WithTimeout: per-request timeout (default: 60s)
//   - WithMaxRetries: transport retries for 502/503/504 (default: 3)
//   - WithHTTPClient: replace the transport
//   - WithLogger: debug logging of requests and responses
//
// Example:
//
//	client, err := codevf.NewClient(codevf.WithAPIKey("sk-..."))
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.apiKey == "" {
		cfg.apiKey = os.Getenv(APIKeyEnv)
	}
	if cfg.apiKey == "" {
		return nil, newLocalError(KindAuthentication,
			"API key must be provided via WithAPIKey or the "+APIKeyEnv+" environment variable", nil)
	}

	if cfg.baseURL == "" {
		cfg.baseURL = os.Getenv(BaseURLEnv)
	}
	if cfg.baseURL == "" {
		cfg.baseURL = DefaultBaseURL
	}
	baseURL, err := parseBaseURL(cfg.baseURL)
	if err != nil {
		return nil, err
	}

	if cfg.timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", cfg.timeout)
	}
	if cfg.maxRetries < 0 {
		return nil, fmt.Errorf("max retries cannot be negative, got %d", cfg.maxRetries)
	}

	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = newTransport(cfg)
	}

	return &Client{
		baseURL:   baseURL,
		apiKey:    cfg.apiKey,
		userAgent: "codevf-go/" + Version,
		http:      httpClient,
		logger:    cfg.logger,
	}, nil
}

// BaseURL returns the normalized base URL, always ending in a slash.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// parseBaseURL validates the base URL and enforces a trailing slash so that
// relative endpoint paths resolve beneath it.
func parseBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", raw)
	}
	return u, nil
}
