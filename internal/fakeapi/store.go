package fakeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/codevf/codevf-go/pkg/codevf"
)

// DefaultCredits is the starting balance of a new Store.
var DefaultCredits = decimal.NewFromInt(10_000)

// Project is a project as stored and returned by the fake service.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Task is a task as stored and returned by the fake service.
type Task struct {
	ID             string            `json:"id"`
	Status         codevf.TaskStatus `json:"status"`
	Mode           codevf.Tier       `json:"mode"`
	MaxCredits     int64             `json:"maxCredits"`
	CreatedAt      time.Time         `json:"createdAt"`
	CreditsUsed    *decimal.Decimal  `json:"creditsUsed,omitempty"`
	ResponseSchema json.RawMessage   `json:"responseSchema,omitempty"`
	Result         json.RawMessage   `json:"result,omitempty"`

	projectID   int64
	prompt      string
	hold        int64
	fingerprint string
}

// Tag is an expertise tag offered by the fake service.
type Tag struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	DisplayName    string          `json:"displayName"`
	Description    *string         `json:"description,omitempty"`
	CostMultiplier decimal.Decimal `json:"costMultiplier"`
	IsActive       bool            `json:"isActive"`
	SortOrder      int             `json:"sortOrder"`
}

// Balance is the account credit position.
type Balance struct {
	Available decimal.Decimal `json:"available"`
	OnHold    decimal.Decimal `json:"onHold"`
	Total     decimal.Decimal `json:"total"`
}

// CancelResult is the body returned by a successful cancellation.
type CancelResult struct {
	Message         string `json:"message"`
	CreditsReturned int64  `json:"creditsReturned"`
}

// TaskInput is the JSON body of POST /tasks/create.
type TaskInput struct {
	Prompt         string              `json:"prompt"`
	MaxCredits     int64               `json:"maxCredits"`
	ProjectID      int64               `json:"projectId"`
	Mode           string              `json:"mode"`
	Metadata       map[string]any      `json:"metadata"`
	TagID          *int64              `json:"tagId"`
	IdempotencyKey string              `json:"idempotencyKey"`
	Attachments    []codevf.Attachment `json:"attachments"`
	ResponseSchema json.RawMessage     `json:"responseSchema"`
}

// DefaultTags is the tag catalogue of a new Store.
var DefaultTags = []Tag{
	{ID: 1, Name: "engineer", DisplayName: "Engineer", CostMultiplier: decimal.NewFromInt(1), IsActive: true, SortOrder: 1},
	{ID: 2, Name: "senior", DisplayName: "Senior Engineer", CostMultiplier: decimal.RequireFromString("1.5"), IsActive: true, SortOrder: 2},
	{ID: 3, Name: "expert", DisplayName: "Domain Expert", CostMultiplier: decimal.NewFromInt(2), IsActive: true, SortOrder: 3},
}

// Option configures a Store.
type Option func(*Store)

// WithCredits sets the starting available balance.
func WithCredits(credits decimal.Decimal) Option {
	return func(s *Store) {
		s.available = credits
	}
}

// WithTags replaces the tag catalogue.
func WithTags(tags []Tag) Option {
	return func(s *Store) {
		s.tags = tags
	}
}

// WithAutoAdvance makes every read of a task move it one step along
// pending → processing → completed, so clients polling the fake see progress.
func WithAutoAdvance() Option {
	return func(s *Store) {
		s.autoAdvance = true
	}
}

// Store is the in-memory state of the fake service. It is safe for
// concurrent use.
type Store struct {
	mu sync.Mutex

	projects      map[int64]*Project
	projectByName map[string]int64
	nextProjectID int64

	tasks       map[string]*Task
	idempotency map[string]string

	tags        []Tag
	available   decimal.Decimal
	onHold      decimal.Decimal
	autoAdvance bool

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		projects:      make(map[int64]*Project),
		projectByName: make(map[string]int64),
		nextProjectID: 1,
		tasks:         make(map[string]*Task),
		idempotency:   make(map[string]string),
		tags:          DefaultTags,
		available:     DefaultCredits,
		now:           func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProject creates a project or returns the existing one with the same name.
func (s *Store) CreateProject(name string, description *string) (*Project, error) {
	if name == "" {
		return nil, newServiceError(ErrCodeValidationFailed, "name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.projectByName[name]; ok {
		return s.projects[id], nil
	}

	p := &Project{
		ID:          s.nextProjectID,
		Name:        name,
		Description: description,
		CreatedAt:   s.now(),
	}
	s.nextProjectID++
	s.projects[p.ID] = p
	s.projectByName[name] = p.ID
	return p, nil
}

// CreateTask validates the input, places the task cost on hold and stores
// the task. A repeated idempotency key with the same request returns the
// original task and created=false.
func (s *Store) CreateTask(in TaskInput) (task *Task, created bool, err error) {
	tier, err := validateTaskInput(in)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fingerprint := fmt.Sprintf("%d|%d|%s|%s", in.ProjectID, in.MaxCredits, tier, in.Prompt)
	if in.IdempotencyKey != "" {
		if id, ok := s.idempotency[in.IdempotencyKey]; ok {
			existing := s.tasks[id]
			if existing.fingerprint != fingerprint {
				return nil, false, newServiceError(ErrCodeIdempotencyConflict,
					"idempotency key %s was already used with a different request", in.IdempotencyKey)
			}
			return existing.clone(), false, nil
		}
	}

	if _, ok := s.projects[in.ProjectID]; !ok {
		return nil, false, NewProjectNotFoundError(in.ProjectID)
	}

	multiplier := decimal.NewFromInt(1)
	if in.TagID != nil {
		tag, ok := s.findTag(*in.TagID)
		if !ok {
			return nil, false, newServiceError(ErrCodeInvalidTag, "tag %d does not exist or is inactive", *in.TagID)
		}
		multiplier = tag.CostMultiplier
	}

	cost, err := codevf.CalculateFinalCreditCost(in.MaxCredits, tier, multiplier)
	if err != nil {
		return nil, false, newServiceError(ErrCodeValidationFailed, "%s", err.Error())
	}
	hold := decimal.NewFromInt(cost)
	if hold.GreaterThan(s.available) {
		return nil, false, &ServiceError{
			Code:    ErrCodeInsufficientCredits,
			Message: fmt.Sprintf("task requires %d credits, %s available", cost, s.available),
			Context: map[string]any{"required": cost, "available": s.available.String()},
		}
	}
	s.available = s.available.Sub(hold)
	s.onHold = s.onHold.Add(hold)

	t := &Task{
		ID:          uuid.NewString(),
		Status:      codevf.StatusPending,
		Mode:        tier,
		MaxCredits:  in.MaxCredits,
		CreatedAt:   s.now(),
		projectID:   in.ProjectID,
		prompt:      in.Prompt,
		hold:        cost,
		fingerprint: fingerprint,
	}
	if hasValue(in.ResponseSchema) {
		t.ResponseSchema = in.ResponseSchema
	}
	s.tasks[t.ID] = t
	if in.IdempotencyKey != "" {
		s.idempotency[in.IdempotencyKey] = t.ID
	}

	return t.clone(), true, nil
}

// GetTask returns a task, advancing it first when auto-advance is enabled.
func (s *Store) GetTask(id string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, NewTaskNotFoundError(id)
	}

	if s.autoAdvance {
		switch t.Status {
		case codevf.StatusPending:
			t.Status = codevf.StatusProcessing
		case codevf.StatusProcessing:
			s.complete(t, defaultResult(t))
		}
	}

	return t.clone(), nil
}

// CompleteTask marks a task completed with the given result and charges its hold.
func (s *Store) CompleteTask(id string, result json.RawMessage) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, NewTaskNotFoundError(id)
	}
	if t.Status.Terminal() {
		return nil, newServiceError(ErrCodeNotCancellable, "task %s is already %s", id, t.Status)
	}

	s.complete(t, result)
	return t.clone(), nil
}

// CancelTask cancels a pending or processing task and releases its hold.
func (s *Store) CancelTask(id string) (*CancelResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, NewTaskNotFoundError(id)
	}
	if t.Status.Terminal() {
		return nil, &ServiceError{
			Code:    ErrCodeNotCancellable,
			Message: fmt.Sprintf("task %s is already %s", id, t.Status),
			Context: map[string]any{"status": string(t.Status)},
		}
	}

	hold := decimal.NewFromInt(t.hold)
	s.onHold = s.onHold.Sub(hold)
	s.available = s.available.Add(hold)
	t.Status = codevf.StatusCancelled

	return &CancelResult{Message: "Task cancelled", CreditsReturned: t.hold}, nil
}

// Balance returns the current credit position.
func (s *Store) Balance() Balance {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Balance{
		Available: s.available,
		OnHold:    s.onHold,
		Total:     s.available.Add(s.onHold),
	}
}

// Tags returns the active tags.
func (s *Store) Tags() []Tag {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags := make([]Tag, 0, len(s.tags))
	for _, t := range s.tags {
		if t.IsActive {
			tags = append(tags, t)
		}
	}
	return tags
}

func (s *Store) findTag(id int64) (Tag, bool) {
	for _, t := range s.tags {
		if t.ID == id && t.IsActive {
			return t, true
		}
	}
	return Tag{}, false
}

// complete must be called with s.mu held.
func (s *Store) complete(t *Task, result json.RawMessage) {
	used := decimal.NewFromInt(t.hold)
	s.onHold = s.onHold.Sub(used)
	t.Status = codevf.StatusCompleted
	t.CreditsUsed = &used
	t.Result = result
}

func (t *Task) clone() *Task {
	c := *t
	return &c
}

// defaultResult is the result auto-advanced tasks complete with.
func defaultResult(t *Task) json.RawMessage {
	var v any
	if len(t.ResponseSchema) > 0 {
		v = map[string]any{"summary": "Completed: " + truncate(t.prompt, 60)}
	} else {
		v = map[string]any{
			"message":      "Completed: " + truncate(t.prompt, 60),
			"deliverables": []any{},
		}
	}
	data, _ := json.Marshal(v)
	return data
}

// hasValue reports whether raw holds a JSON value other than null.
func hasValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// validateTaskInput applies the service's request rules and returns the tier.
func validateTaskInput(in TaskInput) (codevf.Tier, error) {
	if n := utf8.RuneCountInString(in.Prompt); n < codevf.PromptMinLength || n > codevf.PromptMaxLength {
		return "", newServiceError(ErrCodeValidationFailed, "prompt must be between %d and %d characters",
			codevf.PromptMinLength, codevf.PromptMaxLength)
	}

	tier := codevf.TierStandard
	if in.Mode != "" {
		t, err := codevf.ParseTier(in.Mode)
		if err != nil {
			return "", newServiceError(ErrCodeInvalidMode, "%s", err.Error())
		}
		tier = t
	}

	if !codevf.GlobalCreditRange.Contains(in.MaxCredits) {
		return "", newServiceError(ErrCodeMaxCreditsExceeded, "maxCredits must be within %s", codevf.GlobalCreditRange)
	}
	if r, _ := tier.CreditRange(); !r.Contains(in.MaxCredits) {
		return "", newServiceError(ErrCodeMaxCreditsExceeded, "maxCredits for %s must be within %s", tier, r)
	}

	if len(in.Attachments) > codevf.MaxAttachments {
		return "", newServiceError(ErrCodeAttachmentLimitExceeded, "maximum of %d attachments allowed", codevf.MaxAttachments)
	}
	for _, a := range in.Attachments {
		if _, _, err := codevf.ValidateAttachment(codevf.AttachmentInput{
			FileName: a.FileName,
			MimeType: a.MimeType,
			Content:  a.Content,
		}); err != nil {
			return "", newServiceError(ErrCodeAttachmentTooLarge, "%s", err.Error())
		}
	}

	if in.TagID != nil && *in.TagID <= 0 {
		return "", newServiceError(ErrCodeInvalidTag, "tagId must be a positive integer")
	}

	if _, err := codevf.ValidateMetadata(in.Metadata); err != nil {
		return "", newServiceError(ErrCodeInvalidMetadata, "%s", err.Error())
	}

	if hasValue(in.ResponseSchema) {
		var obj map[string]any
		if err := json.Unmarshal(in.ResponseSchema, &obj); err != nil {
			return "", newServiceError(ErrCodeInvalidSchema, "responseSchema must be a JSON object")
		}
	}

	if in.IdempotencyKey != "" {
		if err := codevf.ValidateIdempotencyKey(in.IdempotencyKey); err != nil {
			return "", newServiceError(ErrCodeValidationFailed, "%s", err.Error())
		}
	}

	return tier, nil
}
