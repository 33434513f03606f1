package codevf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// newRequest creates a new HTTP request with common headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", path, err)
	}
	reqURL := c.baseURL.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	return req, nil
}

// newJSONRequest creates a new HTTP request with JSON body.
func (c *Client) newJSONRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := c.newRequest(ctx, method, path, &buf)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

// send performs the request and returns the raw body of a 2xx response.
// Transport failures become KindConnection errors; non-2xx responses are
// mapped through parseErrorResponse.
func (c *Client) send(req *http.Request) ([]byte, error) {
	ctx := req.Context()
	start := time.Now()
	c.logger.DebugContext(ctx, "codevf request", "method", req.Method, "url", req.URL.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newConnectionError(req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newConnectionError(req.Method, req.URL.Path, fmt.Errorf("failed to read response: %w", err))
	}

	c.logger.DebugContext(ctx, "codevf response",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	return body, nil
}

// parseErrorResponse parses an error response from the API and returns the
// appropriate error kind.
func parseErrorResponse(statusCode int, raw []byte) error {
	body := decodeErrorBody(raw)
	message, code, status := extractErrorPayload(body, statusCode)
	return newResponseError(status, code, message, body)
}

// decodeErrorBody decodes a response body as JSON, falling back to the raw
// text. An empty body decodes to nil.
func decodeErrorBody(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return string(raw)
	}
	return v
}

// extractErrorPayload pulls the message, service error code and status out of
// an error body. The status embedded in the body wins over the HTTP status
// when it is an integer.
func extractErrorPayload(body any, fallbackStatus int) (message, code string, status int) {
	message = fmt.Sprintf("request failed with status %d", fallbackStatus)
	status = fallbackStatus

	switch v := body.(type) {
	case map[string]any:
		switch errVal := v["error"].(type) {
		case map[string]any:
			if s, ok := errVal["code"].(string); ok {
				code = s
			}
			if s, ok := errVal["message"].(string); ok && s != "" {
				message = s
			}
			status = statusOrFallback(errVal["status"], fallbackStatus)
		case string:
			message = errVal
			status = statusOrFallback(v["status"], fallbackStatus)
		default:
			if s, ok := v["message"].(string); ok && s != "" {
				message = s
			}
		}
	case string:
		if v != "" {
			message = v
		}
	}

	return message, code, status
}

// statusOrFallback converts a JSON status value to an int.
func statusOrFallback(v any, fallback int) int {
	switch s := v.(type) {
	case json.Number:
		if n, err := s.Int64(); err == nil && n > 0 {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
