package codevf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// flexibleString accepts a JSON string or number, keeping the literal text.
type flexibleString string

func (s *flexibleString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexibleString(v)
		return nil
	}
	if string(b) == "null" {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = flexibleString(n.String())
	return nil
}

// taskWire is the raw JSON structure of a task response.
type taskWire struct {
	ID             flexibleString   `json:"id"`
	Status         string           `json:"status"`
	Mode           *string          `json:"mode"`
	MaxCredits     json.Number      `json:"maxCredits"`
	CreatedAt      Timestamp        `json:"createdAt"`
	CreditsUsed    *decimal.Decimal `json:"creditsUsed"`
	ResponseSchema json.RawMessage  `json:"responseSchema"`
	Result         json.RawMessage  `json:"result"`
}

// decodeTaskResponse decodes a task. schemaRequested reports whether the
// originating request carried a response schema.
func decodeTaskResponse(data []byte, schemaRequested bool) (*TaskResponse, error) {
	var w taskWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode task response: %w", err)
	}

	switch {
	case w.ID == "":
		return nil, errors.New("failed to decode task response: missing id")
	case w.Status == "":
		return nil, errors.New("failed to decode task response: missing status")
	case w.MaxCredits == "":
		return nil, errors.New("failed to decode task response: missing maxCredits")
	case w.CreatedAt.IsZero():
		return nil, errors.New("failed to decode task response: missing createdAt")
	}

	maxCredits, err := w.MaxCredits.Int64()
	if err != nil {
		return nil, fmt.Errorf("failed to decode task response: maxCredits: %w", err)
	}

	tier := TierStandard
	if w.Mode != nil {
		tier = Tier(*w.Mode)
		if !tier.Valid() {
			return nil, fmt.Errorf("failed to decode task response: '%s' is not a supported service tier", *w.Mode)
		}
	}

	task := &TaskResponse{
		ID:          string(w.ID),
		Status:      TaskStatus(w.Status),
		Tier:        tier,
		MaxCredits:  maxCredits,
		CreatedAt:   w.CreatedAt,
		CreditsUsed: w.CreditsUsed,
	}

	schemaEchoed := isPresent(w.ResponseSchema)
	if schemaEchoed {
		var schema map[string]any
		if err := json.Unmarshal(w.ResponseSchema, &schema); err == nil {
			task.ResponseSchema = schema
		}
	}

	task.Result = decodeTaskOutcome(w.Result, schemaRequested || schemaEchoed)
	return task, nil
}

// decodeTaskOutcome picks the result representation. A requested or echoed
// schema always yields a StructuredResult; otherwise the standard shape is
// tried first.
func decodeTaskOutcome(raw json.RawMessage, structured bool) TaskOutcome {
	if !isPresent(raw) {
		return nil
	}
	if !structured {
		if result, ok := decodeTaskResult(raw); ok {
			return result
		}
	}
	return &StructuredResult{Raw: append(json.RawMessage(nil), raw...)}
}

// decodeTaskResult decodes the {message, deliverables} shape. It reports false
// when the object carries any other key, neither of the two, or a deliverable
// that cannot be decoded. A non-array deliverables value counts as empty.
func decodeTaskResult(raw json.RawMessage) (*TaskResult, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) == 0 {
		return nil, false
	}
	for key := range fields {
		if key != "message" && key != "deliverables" {
			return nil, false
		}
	}

	result := &TaskResult{Deliverables: []Deliverable{}}

	if msg, ok := fields["message"]; ok && isPresent(msg) {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return nil, false
		}
		result.Message = &s
	}

	var items []json.RawMessage
	if err := json.Unmarshal(fields["deliverables"], &items); err != nil {
		return result, true
	}
	for _, item := range items {
		var d Deliverable
		if err := json.Unmarshal(item, &d); err != nil {
			return nil, false
		}
		if d.FileName == "" || d.URL == "" || d.UploadedAt == "" {
			return nil, false
		}
		result.Deliverables = append(result.Deliverables, d)
	}

	return result, true
}

// projectWire is the raw JSON structure of a project response.
type projectWire struct {
	ID          json.Number `json:"id"`
	Name        *string     `json:"name"`
	CreatedAt   Timestamp   `json:"createdAt"`
	Description *string     `json:"description"`
}

func decodeProject(data []byte) (*Project, error) {
	var w projectWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode project response: %w", err)
	}
	if w.ID == "" {
		return nil, errors.New("failed to decode project response: missing id")
	}
	id, err := w.ID.Int64()
	if err != nil {
		return nil, fmt.Errorf("failed to decode project response: id: %w", err)
	}
	if w.Name == nil {
		return nil, errors.New("failed to decode project response: missing name")
	}
	if w.CreatedAt.IsZero() {
		return nil, errors.New("failed to decode project response: missing createdAt")
	}

	return &Project{
		ID:          id,
		Name:        *w.Name,
		CreatedAt:   w.CreatedAt,
		Description: w.Description,
	}, nil
}

// balanceWire is the raw JSON structure of a credit balance. Decimal fields
// are parsed from their JSON text, never through float64.
type balanceWire struct {
	Available *decimal.Decimal `json:"available"`
	OnHold    *decimal.Decimal `json:"onHold"`
	Total     *decimal.Decimal `json:"total"`
}

func decodeCreditBalance(data []byte) (*CreditBalance, error) {
	var w balanceWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode credit balance response: %w", err)
	}
	switch {
	case w.Available == nil:
		return nil, errors.New("failed to decode credit balance response: missing available")
	case w.OnHold == nil:
		return nil, errors.New("failed to decode credit balance response: missing onHold")
	case w.Total == nil:
		return nil, errors.New("failed to decode credit balance response: missing total")
	}

	return &CreditBalance{
		Available: *w.Available,
		OnHold:    *w.OnHold,
		Total:     *w.Total,
	}, nil
}

// tagWire is the raw JSON structure of a tag.
type tagWire struct {
	ID             json.Number      `json:"id"`
	Name           string           `json:"name"`
	DisplayName    string           `json:"displayName"`
	Description    *string          `json:"description"`
	CostMultiplier *decimal.Decimal `json:"costMultiplier"`
	IsActive       bool             `json:"isActive"`
	SortOrder      json.Number      `json:"sortOrder"`
	ValidFrom      *string          `json:"validFrom"`
	ValidTo        *string          `json:"validTo"`
	IsDeprecated   *bool            `json:"isDeprecated"`
}

// decodeTags accepts {"data": [...]}, {"tags": [...]} or a bare array.
// Null envelope keys and entries that are not JSON objects are skipped.
func decodeTags(data []byte) ([]Tag, error) {
	trimmed := bytes.TrimSpace(data)

	var items []json.RawMessage
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to decode tags response: %w", err)
		}
	} else {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode tags response: %w", err)
		}
		for _, key := range []string{"data", "tags"} {
			raw := envelope[key]
			if !isPresent(raw) {
				continue
			}
			if err := json.Unmarshal(raw, &items); err == nil {
				break
			}
			items = nil
		}
	}

	tags := make([]Tag, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		tag, err := decodeTag(item)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func decodeTag(raw json.RawMessage) (Tag, error) {
	var w tagWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Tag{}, fmt.Errorf("failed to decode tag: %w", err)
	}
	if w.ID == "" {
		return Tag{}, errors.New("failed to decode tag: missing id")
	}
	id, err := w.ID.Int64()
	if err != nil {
		return Tag{}, fmt.Errorf("failed to decode tag: id: %w", err)
	}

	sortOrder := int64(0)
	if w.SortOrder != "" {
		if sortOrder, err = w.SortOrder.Int64(); err != nil {
			return Tag{}, fmt.Errorf("failed to decode tag %d: sortOrder: %w", id, err)
		}
	}

	multiplier := decimal.NewFromInt(1)
	if w.CostMultiplier != nil {
		multiplier = *w.CostMultiplier
	}

	return Tag{
		ID:             id,
		Name:           w.Name,
		DisplayName:    w.DisplayName,
		Description:    w.Description,
		CostMultiplier: multiplier,
		IsActive:       w.IsActive,
		SortOrder:      int(sortOrder),
		ValidFrom:      w.ValidFrom,
		ValidTo:        w.ValidTo,
		IsDeprecated:   w.IsDeprecated,
	}, nil
}

// decodeCancelResult decodes the service-defined cancel body.
func decodeCancelResult(data []byte) (CancelResult, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return CancelResult{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var result CancelResult
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode cancel response: %w", err)
	}
	if result == nil {
		result = CancelResult{}
	}
	return result, nil
}

// isPresent reports whether a raw JSON value is set and not null.
func isPresent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
