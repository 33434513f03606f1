package codevf

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// TaskStatus represents the current state of a task. The set is open; values
// not listed here are passed through unchanged.
type TaskStatus string

const (
	// StatusPending indicates the task is queued.
	StatusPending TaskStatus = "pending"
	// StatusProcessing indicates the task is being worked on.
	StatusProcessing TaskStatus = "processing"
	// StatusCompleted indicates the task finished and carries a result.
	StatusCompleted TaskStatus = "completed"
	// StatusCancelled indicates the task was cancelled.
	StatusCancelled TaskStatus = "cancelled"
)

// Terminal reports whether the task will not change status again.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// TaskCreateRequest describes a task to submit.
type TaskCreateRequest struct {
	// Prompt is the work request, 10 to 10,000 characters.
	Prompt string
	// MaxCredits is the spending ceiling for the task.
	MaxCredits int64
	// ProjectID is the ID returned by CreateProject.
	ProjectID int64
	// Tier is the service level. Empty means TierStandard.
	Tier Tier
	// Metadata is flat key/value data stored with the task.
	Metadata map[string]any
	// TagID selects an expertise tag; nil leaves it unset.
	TagID *int64
	// IdempotencyKey must be a UUID v4 when set.
	IdempotencyKey string
	// Attachments holds at most MaxAttachments files.
	Attachments []AttachmentInput
	// ResponseSchema requests structured output matching a JSON Schema.
	ResponseSchema map[string]any
}

// TaskPayload is the validated JSON body of a tasks/create request.
// Metadata is sent whenever it is non-nil, so an empty map is sent as {}.
type TaskPayload struct {
	Prompt         string         `json:"prompt"`
	MaxCredits     int64          `json:"maxCredits"`
	ProjectID      int64          `json:"projectId"`
	Mode           Tier           `json:"mode"`
	Metadata       map[string]any `json:"metadata"`
	TagID          *int64         `json:"tagId,omitempty"`
	IdempotencyKey string         `json:"idempotencyKey,omitempty"`
	Attachments    []Attachment   `json:"attachments,omitempty"`
	ResponseSchema map[string]any `json:"responseSchema,omitempty"`
}

// MarshalJSON omits metadata only when the map is nil.
func (p TaskPayload) MarshalJSON() ([]byte, error) {
	type payloadFields TaskPayload
	body := struct {
		payloadFields
		Metadata *map[string]any `json:"metadata,omitempty"`
	}{payloadFields: payloadFields(p)}
	if p.Metadata != nil {
		body.Metadata = &p.Metadata
	}
	return json.Marshal(body)
}

// TaskResponse is a task as returned by the service.
type TaskResponse struct {
	ID             string
	Status         TaskStatus
	Tier           Tier
	MaxCredits     int64
	CreatedAt      Timestamp
	CreditsUsed    *decimal.Decimal
	ResponseSchema map[string]any
	// Result is nil until the service attaches one. It is either a
	// *TaskResult or a *StructuredResult.
	Result TaskOutcome
}

// TaskOutcome is the result of a task: *TaskResult or *StructuredResult.
type TaskOutcome interface {
	isTaskOutcome()
}

// TaskResult is the standard result shape: a message plus deliverables.
type TaskResult struct {
	Message      *string
	Deliverables []Deliverable
}

func (*TaskResult) isTaskOutcome() {}

// Deliverable is a downloadable artifact attached to a completed task.
type Deliverable struct {
	FileName   string  `json:"fileName"`
	URL        string  `json:"url"`
	UploadedAt string  `json:"uploadedAt"`
	MimeType   *string `json:"mimeType,omitempty"`
}

// StructuredResult holds a result that did not follow the standard shape,
// typically output produced for a requested response schema.
type StructuredResult struct {
	Raw json.RawMessage
}

func (*StructuredResult) isTaskOutcome() {}

// Map returns the result as a key/value mapping, or false if the result is
// not a JSON object.
func (r *StructuredResult) Map() (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal(r.Raw, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

// Decode unmarshals the result into v.
func (r *StructuredResult) Decode(v any) error {
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return fmt.Errorf("failed to decode structured result: %w", err)
	}
	return nil
}

// CancelResult is the body returned when a task is cancelled. Its shape is
// defined by the service, typically a message and the credits returned.
type CancelResult map[string]any

// Project is a container for tasks.
type Project struct {
	ID          int64
	Name        string
	CreatedAt   Timestamp
	Description *string
}

// Tag is an expertise level that scales the cost of a task.
type Tag struct {
	ID             int64
	Name           string
	DisplayName    string
	Description    *string
	CostMultiplier decimal.Decimal
	IsActive       bool
	SortOrder      int
	ValidFrom      *string
	ValidTo        *string
	IsDeprecated   *bool
}

// CreditBalance is the account's credit position. The service guarantees
// Total = Available + OnHold.
type CreditBalance struct {
	Available decimal.Decimal
	OnHold    decimal.Decimal
	Total     decimal.Decimal
}

// createProjectRequest is the JSON request body for creating a project.
type createProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}
