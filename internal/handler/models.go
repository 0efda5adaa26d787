package handler

import "quill/internal/domain/models"

// Request/response DTOs for the session API.

type startDraftRequest struct {
	Prompt      string              `json:"prompt"`
	Attachments []attachmentPayload `json:"attachments"`
	Profile     string              `json:"profile"`
}

type attachmentPayload struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Data      []byte `json:"data"` // base64 on the wire
}

type updateContentRequest struct {
	Content *string `json:"content"`
}

type undoRedoResponse struct {
	Content string `json:"content"`
	Applied bool   `json:"applied"`
}

type suggestionsResponse struct {
	Suggestions []models.Suggestion `json:"suggestions"`
	SelectedIDs []string            `json:"selected_ids"`
}

type applyResponse struct {
	Revision *models.Revision `json:"revision,omitempty"`
	Applied  bool             `json:"applied"`
}
