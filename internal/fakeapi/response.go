package fakeapi

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains error details.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError sends the service error envelope. Errors that are not
// *ServiceError are reported as internal errors.
func writeError(w http.ResponseWriter, err error) {
	svcErr, ok := err.(*ServiceError)
	if !ok {
		svcErr = NewInternalError()
	}

	writeJSON(w, statusFor(svcErr.Code), ErrorResponse{
		Error: ErrorBody{
			Code:    string(svcErr.Code),
			Message: svcErr.Message,
			Context: svcErr.Context,
		},
	})
}
