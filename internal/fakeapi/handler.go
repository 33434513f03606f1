package fakeapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler serves the CodeVF endpoints from a Store.
type Handler struct {
	store *Store
}

// NewHandler creates a new Handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

type createProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// CreateProject handles POST /projects/create.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, newServiceError(ErrCodeValidationFailed, "Invalid JSON body"))
		return
	}

	project, err := h.store.CreateProject(req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

// CreateTask handles POST /tasks/create.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var in TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, newServiceError(ErrCodeValidationFailed, "Invalid JSON body"))
		return
	}
	if in.IdempotencyKey == "" {
		in.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	task, created, err := h.store.CreateTask(in)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	writeJSON(w, status, task)
}

// GetTask handles GET /tasks/{id}.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.GetTask(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// CancelTask handles POST /tasks/{id}/cancel.
func (h *Handler) CancelTask(w http.ResponseWriter, r *http.Request) {
	result, err := h.store.CancelTask(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// CreditBalance handles GET /credits/balance.
func (h *Handler) CreditBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Balance())
}

// ListTags handles GET /tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": h.store.Tags()})
}
