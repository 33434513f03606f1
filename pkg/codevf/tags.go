package codevf

import (
	"context"
	"net/http"
)

// ListTags retrieves the available expertise tags.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "tags", nil)
	if err != nil {
		return nil, err
	}

	body, err := c.send(req)
	if err != nil {
		return nil, err
	}

	return decodeTags(body)
}
