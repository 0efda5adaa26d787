package handler

import (
	"log/slog"
	"net/http"

	"quill/internal/domain/models"
	"quill/internal/httputil"
	"quill/internal/service/draft"
)

// SessionHandler exposes draft sessions over HTTP. Each endpoint maps
// one of the editor's interactive events onto the session orchestrator.
type SessionHandler struct {
	registry *draft.Registry
	logger   *slog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(registry *draft.Registry, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		logger:   logger,
	}
}

// HealthCheck is a simple liveness endpoint
// GET /health
func (h *SessionHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateSession creates a new empty session
// POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session := h.registry.Create()
	httputil.RespondJSON(w, http.StatusCreated, session.Snapshot())
}

// GetSession returns the full session state
// GET /api/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, session.Snapshot())
}

// DeleteSession removes a session
// DELETE /api/sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartDraft generates the initial draft for a session
// POST /api/sessions/{id}/draft
func (h *SessionHandler) StartDraft(w http.ResponseWriter, r *http.Request) {
	session, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	var req startDraftRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	attachments := make([]models.Attachment, len(req.Attachments))
	for i, a := range req.Attachments {
		attachments[i] = models.Attachment{
			Name:      a.Name,
			MediaType: a.MediaType,
			Data:      a.Data,
		}
	}

	rev, err := session.StartDocument(r.Context(), &draft.StartRequest{
		Prompt:      req.Prompt,
		Attachments: attachments,
		Profile:     models.StyleProfile(req.Profile),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, rev)
}

// UpdateContent applies a manual edit to the current revision
// PUT /api/sessions/{id}/content
func (h *SessionHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	session, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	var req updateContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil || req.Content == nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body: content is required")
		return
	}

	if err := session.RecordEdit(*req.Content); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Undo restores the previous manual-edit snapshot
// POST /api/sessions/{id}/undo
func (h *SessionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	session, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	content, applied := session.Undo()
	httputil.RespondJSON(w, http.StatusOK, undoRedoResponse{Content: content, Applied: applied})
}

// Redo re-applies the most recently undone edit
// POST /api/sessions/{id}/redo
func (h *SessionHandler) Redo(w http.ResponseWriter, r *http.Request) {
	session, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	content, applied := session.Redo()
	httputil.RespondJSON(w, http.StatusOK, undoRedoResponse{Content: content, Applied: applied})
}

// GetSuggestions returns the pending batch and the selection
// GET /api/sessions/{id}/suggestions
func (h *SessionHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	session, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	batch, selected := session.Suggestions()
	httputil.RespondJSON(w, http.StatusOK, suggestionsResponse{Suggestions: batch, SelectedIDs: selected})
}

// ToggleSuggestion flips a suggestion's selection state
// POST /api/sessions/{id}/suggestions/{sid}/toggle
func (h *SessionHandler) ToggleSuggestion(w http.ResponseWriter, r *http.Request) {
	session, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	session.ToggleSuggestion(r.PathValue("sid"))
	batch, selected := session.Suggestions()
	httputil.RespondJSON(w, http.StatusOK, suggestionsResponse{Suggestions: batch, SelectedIDs: selected})
}

// ApplySelected merges the selected suggestions into a new revision
// POST /api/sessions/{id}/apply
// Returns 201 with the new revision, or 200 with applied=false when
// nothing was selected (defensive no-op, not an error).
func (h *SessionHandler) ApplySelected(w http.ResponseWriter, r *http.Request) {
	session, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	rev, applied, err := session.ApplySelected(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	if !applied {
		httputil.RespondJSON(w, http.StatusOK, applyResponse{Applied: false})
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, applyResponse{Revision: &rev, Applied: true})
}
