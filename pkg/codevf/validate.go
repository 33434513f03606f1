package codevf

import (
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Prompt length bounds, in characters.
const (
	PromptMinLength = 10
	PromptMaxLength = 10_000
)

// BuildTaskPayload validates a task request and returns the JSON payload that
// CreateTask would send. No I/O is performed.
//
// Checks run in order: prompt length, tier, maxCredits against the global and
// tier ranges, attachment count and content, idempotency key, tag ID,
// metadata, project ID.
func BuildTaskPayload(req TaskCreateRequest) (*TaskPayload, error) {
	if n := utf8.RuneCountInString(req.Prompt); n < PromptMinLength || n > PromptMaxLength {
		return nil, newValidationError("prompt must be between %d and %d characters, got %d",
			PromptMinLength, PromptMaxLength, n)
	}

	tier, err := resolveTier(req.Tier)
	if err != nil {
		return nil, err
	}

	if err := validateMaxCredits(req.MaxCredits, tier); err != nil {
		return nil, err
	}

	if len(req.Attachments) > MaxAttachments {
		return nil, newLocalError(KindAttachmentLimitExceeded,
			fmt.Sprintf("maximum of %d attachments allowed, got %d", MaxAttachments, len(req.Attachments)),
			map[string]any{"count": len(req.Attachments), "limit": MaxAttachments})
	}
	attachments, err := NormalizeAttachments(req.Attachments)
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		if err := ValidateIdempotencyKey(req.IdempotencyKey); err != nil {
			return nil, err
		}
	}

	if req.TagID != nil && *req.TagID <= 0 {
		return nil, newLocalError(KindInvalidTag,
			fmt.Sprintf("tagId must be a positive integer, got %d", *req.TagID),
			map[string]any{"tagId": *req.TagID})
	}

	metadata, err := ValidateMetadata(req.Metadata)
	if err != nil {
		return nil, err
	}

	if req.ProjectID <= 0 {
		return nil, newValidationError("projectId must be a positive integer, got %d", req.ProjectID)
	}

	var tagID *int64
	if req.TagID != nil {
		id := *req.TagID
		tagID = &id
	}

	return &TaskPayload{
		Prompt:         req.Prompt,
		MaxCredits:     req.MaxCredits,
		ProjectID:      req.ProjectID,
		Mode:           tier,
		Metadata:       metadata,
		TagID:          tagID,
		IdempotencyKey: req.IdempotencyKey,
		Attachments:    attachments,
		ResponseSchema: req.ResponseSchema,
	}, nil
}

// resolveTier maps the empty tier to TierStandard and rejects unknown values.
func resolveTier(t Tier) (Tier, error) {
	if t == "" {
		return TierStandard, nil
	}
	return ParseTier(string(t))
}

// validateMaxCredits enforces the global range and the tier range.
func validateMaxCredits(maxCredits int64, tier Tier) error {
	if !GlobalCreditRange.Contains(maxCredits) {
		return newLocalError(KindValidation,
			fmt.Sprintf("maxCredits must be within %s, got %d", GlobalCreditRange, maxCredits),
			map[string]any{"min": GlobalCreditRange.Min, "max": GlobalCreditRange.Max})
	}
	r, _ := tier.CreditRange()
	if !r.Contains(maxCredits) {
		return newLocalError(KindValidation,
			fmt.Sprintf("maxCredits for %s tier must be within %s, got %d", tier, r, maxCredits),
			map[string]any{"min": r.Min, "max": r.Max, "mode": string(tier)})
	}
	return nil
}

// ValidateIdempotencyKey checks that key is a version 4 UUID.
func ValidateIdempotencyKey(key string) error {
	id, err := uuid.Parse(key)
	if err != nil {
		return newValidationError("idempotencyKey must be a valid UUID: %v", err)
	}
	if id.Version() != 4 {
		return newValidationError("idempotencyKey must be a version 4 UUID, got version %d", id.Version())
	}
	return nil
}

// NewIdempotencyKey returns a random version 4 UUID suitable for
// TaskCreateRequest.IdempotencyKey.
func NewIdempotencyKey() string {
	return uuid.NewString()
}
