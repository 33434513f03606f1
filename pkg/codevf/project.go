package codevf

import (
	"context"
	"net/http"
)

// CreateProject creates a project, or returns the existing one when a project
// with the same name already exists.
func (c *Client) CreateProject(ctx context.Context, name string, opts ...ProjectOption) (*Project, error) {
	if name == "" {
		return nil, newValidationError("project name must be provided")
	}

	options := &projectOptions{}
	for _, opt := range opts {
		opt(options)
	}

	body := createProjectRequest{
		Name:        name,
		Description: options.description,
	}

	req, err := c.newJSONRequest(ctx, http.MethodPost, "projects/create", body)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}

	return decodeProject(resp)
}
