package codevf

import (
	"log/slog"
	"net/http"
	"time"
)

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

// clientConfig holds the configuration for a Client.
type clientConfig struct {
	apiKey       string
	baseURL      string
	timeout      time.Duration
	maxRetries   int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
}

// defaultConfig returns the default client configuration.
func defaultConfig() *clientConfig {
	return &clientConfig{
		timeout:      DefaultTimeout,
		maxRetries:   DefaultMaxRetries,
		retryWaitMin: time.Second,
		retryWaitMax: 30 * time.Second,
	}
}

// WithAPIKey sets the API key. When omitted, CODEVF_API_KEY is used.
func WithAPIKey(key string) ClientOption {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithBaseURL overrides the API base URL. A trailing slash is added if missing.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout forwarded to the transport.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithMaxRetries sets how many times the transport retries 502, 503 and 504
// responses. Zero disables retries.
func WithMaxRetries(n int) ClientOption {
	return func(c *clientConfig) {
		c.maxRetries = n
	}
}

// WithRetryWait sets the minimum and maximum backoff between transport retries.
func WithRetryWait(minWait, maxWait time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.retryWaitMin = minWait
		c.retryWaitMax = maxWait
	}
}

// WithHTTPClient replaces the transport entirely. The SDK adds no retries on
// top of a caller-supplied client and does not override its timeout.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithLogger sets the logger used for debug request/response records.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// ProjectOption configures a CreateProject call.
type ProjectOption func(*projectOptions)

// projectOptions holds options for creating a project.
type projectOptions struct {
	description *string
}

// WithDescription sets the project description.
func WithDescription(desc string) ProjectOption {
	return func(o *projectOptions) {
		o.description = &desc
	}
}
