package codevf

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
		want    bool
	}{
		{
			name:    "IsNotFound with not found error",
			err:     newResponseError(404, "", "missing", nil),
			checker: IsNotFound,
			want:    true,
		},
		{
			name:    "IsNotFound with server error",
			err:     newResponseError(500, "", "boom", nil),
			checker: IsNotFound,
			want:    false,
		},
		{
			name:    "IsNotFound with nil",
			err:     nil,
			checker: IsNotFound,
			want:    false,
		},
		{
			name:    "IsNotFound with plain error",
			err:     errors.New("not found"),
			checker: IsNotFound,
			want:    false,
		},
		{
			name:    "IsValidation with local validation error",
			err:     newValidationError("bad prompt"),
			checker: IsValidation,
			want:    true,
		},
		{
			name:    "IsInvalidTag through wrapping",
			err:     fmt.Errorf("submit: %w", newResponseError(400, "invalid_tag", "bad tag", nil)),
			checker: IsInvalidTag,
			want:    true,
		},
		{
			name:    "IsConnection with connection error",
			err:     newConnectionError("GET", "/tags", errors.New("dial tcp: connection refused")),
			checker: IsConnection,
			want:    true,
		},
		{
			name:    "IsAPIError with response error",
			err:     newResponseError(418, "", "teapot", nil),
			checker: IsAPIError,
			want:    true,
		},
		{
			name:    "IsAPIError with local error",
			err:     newValidationError("bad"),
			checker: IsAPIError,
			want:    false,
		},
		{
			name:    "IsLocal with local error",
			err:     newLocalError(KindAttachmentTooLarge, "too big", nil),
			checker: IsLocal,
			want:    true,
		},
		{
			name:    "IsAuthentication with token_expired code",
			err:     newResponseError(400, "token_expired", "expired", nil),
			checker: IsAuthentication,
			want:    true,
		},
		{
			name:    "IsRateLimit with rate_limit_exceeded code",
			err:     newResponseError(400, "RATE_LIMIT_EXCEEDED", "slow down", nil),
			checker: IsRateLimit,
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.checker(tt.err)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveKind(t *testing.T) {
	tests := []struct {
		status int
		code   string
		want   Kind
	}{
		{401, "", KindAuthentication},
		{403, "invalid_tag", KindAuthentication},
		{404, "", KindNotFound},
		{404, "invalid_mode", KindNotFound},
		{429, "", KindRateLimit},
		{413, "", KindPayloadTooLarge},
		{500, "", KindServer},
		{503, "", KindServer},
		{599, "", KindServer},
		{400, "invalid_mode", KindInvalidMode},
		{400, "invalid_tag", KindInvalidTag},
		{400, "invalid_metadata", KindInvalidMetadata},
		{400, "max_credits_exceeded", KindMaxCreditsExceeded},
		{400, "attachment_limit_exceeded", KindAttachmentLimitExceeded},
		{400, "attachment_too_large", KindAttachmentTooLarge},
		{400, "idempotency_conflict", KindIdempotencyConflict},
		{400, "insufficient_credits", KindInsufficientCredits},
		{400, "invalid_schema", KindInvalidSchema},
		{400, "token_expired", KindAuthentication},
		{400, "rate_limit_exceeded", KindRateLimit},
		{400, "Invalid_Tag", KindInvalidTag},
		{400, "something_else", KindBadRequest},
		{400, "", KindBadRequest},
		{402, "insufficient_credits", KindAPI},
		{409, "idempotency_conflict", KindAPI},
		{302, "", KindAPI},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%s", tt.status, tt.code), func(t *testing.T) {
			if got := resolveKind(tt.status, tt.code); got != tt.want {
				t.Errorf("resolveKind(%d, %q) = %s, want %s", tt.status, tt.code, got, tt.want)
			}
		})
	}
}

func TestParseErrorResponse(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    Kind
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "error object with code",
			status:      400,
			body:        `{"error":{"code":"invalid_tag","message":"bad tag"}}`,
			wantKind:    KindInvalidTag,
			wantStatus:  400,
			wantCode:    "invalid_tag",
			wantMessage: "bad tag",
		},
		{
			name:        "error object status overrides http status",
			status:      400,
			body:        `{"error":{"code":"x","message":"gone","status":404}}`,
			wantKind:    KindNotFound,
			wantStatus:  404,
			wantCode:    "x",
			wantMessage: "gone",
		},
		{
			name:        "error object with non-numeric status",
			status:      400,
			body:        `{"error":{"message":"odd","status":"abc"}}`,
			wantKind:    KindBadRequest,
			wantStatus:  400,
			wantMessage: "odd",
		},
		{
			name:        "error string",
			status:      401,
			body:        `{"error":"invalid api key"}`,
			wantKind:    KindAuthentication,
			wantStatus:  401,
			wantMessage: "invalid api key",
		},
		{
			name:        "top-level message",
			status:      418,
			body:        `{"message":"teapot"}`,
			wantKind:    KindAPI,
			wantStatus:  418,
			wantMessage: "teapot",
		},
		{
			name:        "plain text body",
			status:      502,
			body:        `Bad Gateway`,
			wantKind:    KindServer,
			wantStatus:  502,
			wantMessage: "Bad Gateway",
		},
		{
			name:        "empty body",
			status:      503,
			body:        ``,
			wantKind:    KindServer,
			wantStatus:  503,
			wantMessage: "request failed with status 503",
		},
		{
			name:        "not found with any body",
			status:      404,
			body:        `[1,2,3]`,
			wantKind:    KindNotFound,
			wantStatus:  404,
			wantMessage: "request failed with status 404",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseErrorResponse(tt.status, []byte(tt.body))

			var sdkErr *Error
			if !errors.As(err, &sdkErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if sdkErr.Kind != tt.wantKind {
				t.Errorf("expected kind %s, got %s", tt.wantKind, sdkErr.Kind)
			}
			if sdkErr.Status != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, sdkErr.Status)
			}
			if sdkErr.Code != tt.wantCode {
				t.Errorf("expected code %q, got %q", tt.wantCode, sdkErr.Code)
			}
			if sdkErr.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, sdkErr.Message)
			}
		})
	}
}

func TestParseErrorResponseKeepsBody(t *testing.T) {
	err := parseErrorResponse(400, []byte(`{"error":{"code":"insufficient_credits","message":"need more","required":120}}`))

	var sdkErr *Error
	if !errors.As(err, &sdkErr) {
		t.Fatalf("expected *Error, got %T", err)
	}

	body, ok := sdkErr.Body.(map[string]any)
	if !ok {
		t.Fatalf("expected map body, got %T", sdkErr.Body)
	}
	errObj := body["error"].(map[string]any)
	if errObj["required"] != json.Number("120") {
		t.Errorf("expected required 120 as json.Number, got %v (%T)", errObj["required"], errObj["required"])
	}
	if sdkErr.Error() != "need more" {
		t.Errorf("expected Error() to return message, got %q", sdkErr.Error())
	}
}

func TestConnectionErrorUnwraps(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:1: connection refused")
	err := newConnectionError("GET", "/tags", cause)

	if !errors.Is(err, cause) {
		t.Error("expected connection error to unwrap to its cause")
	}
	if KindOf(err) != KindConnection {
		t.Errorf("expected kind %s, got %s", KindConnection, KindOf(err))
	}
	if KindOf(cause) != "" {
		t.Errorf("expected empty kind for plain error, got %s", KindOf(cause))
	}
}
