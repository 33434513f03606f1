package codevf

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// DefaultPollInterval is used by WaitForTask when no interval is given.
const DefaultPollInterval = 2 * time.Second

// CreateTask validates the request and submits it.
//
// Validation failures are returned before any request is sent. When the
// request carries a ResponseSchema the result is always decoded as a
// *StructuredResult.
func (c *Client) CreateTask(ctx context.Context, r TaskCreateRequest) (*TaskResponse, error) {
	payload, err := BuildTaskPayload(r)
	if err != nil {
		return nil, err
	}

	req, err := c.newJSONRequest(ctx, http.MethodPost, "tasks/create", payload)
	if err != nil {
		return nil, err
	}
	if payload.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", payload.IdempotencyKey)
	}

	body, err := c.send(req)
	if err != nil {
		return nil, err
	}

	return decodeTaskResponse(body, payload.ResponseSchema != nil)
}

// GetTask retrieves the latest status and result of a task.
func (c *Client) GetTask(ctx context.Context, id string) (*TaskResponse, error) {
	if id == "" {
		return nil, newValidationError("task ID must be provided")
	}

	req, err := c.newRequest(ctx, http.MethodGet, "tasks/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	body, err := c.send(req)
	if err != nil {
		return nil, err
	}

	return decodeTaskResponse(body, false)
}

// CancelTask cancels a pending or processing task and returns the service's
// cancellation body.
func (c *Client) CancelTask(ctx context.Context, id string) (CancelResult, error) {
	if id == "" {
		return nil, newValidationError("task ID must be provided")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "tasks/"+url.PathEscape(id)+"/cancel", nil)
	if err != nil {
		return nil, err
	}

	body, err := c.send(req)
	if err != nil {
		return nil, err
	}

	return decodeCancelResult(body)
}

// WaitForTask polls GetTask until the task reaches a terminal status or ctx
// is done. Each poll is an ordinary request; errors end the wait.
func (c *Client) WaitForTask(ctx context.Context, id string, interval time.Duration) (*TaskResponse, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		task, err := c.GetTask(ctx, id)
		if err != nil {
			return nil, err
		}
		if task.Status.Terminal() {
			return task, nil
		}

		c.logger.DebugContext(ctx, "codevf task not finished", "task_id", id, "status", string(task.Status))

		select {
		case <-ctx.Done():
			return task, ctx.Err()
		case <-ticker.C:
		}
	}
}
