package generation

import (
	"context"

	"quill/internal/domain/models"
)

// Service defines the interface to the external text generator.
// This abstraction allows supporting multiple providers (Anthropic,
// OpenAI-compatible gateways) while keeping the draft session logic
// provider-agnostic, and makes the session fully testable with a fake.
type Service interface {
	// GenerateDraft produces the initial document text from a prompt,
	// optional attachments and a style profile. It fails with a
	// *domain.GenerationError on transport failure or empty output.
	GenerateDraft(ctx context.Context, req *DraftRequest) (string, error)

	// GenerateSuggestions returns a batch of candidate edits for the
	// given document. Structured-decoding failures degrade to an empty
	// batch with a nil error; only transport failures return an error.
	GenerateSuggestions(ctx context.Context, req *SuggestionRequest) ([]models.Suggestion, error)

	// MergeChanges rewrites the document applying the accepted changes,
	// keeping the style profile consistent. Fails with a
	// *domain.GenerationError on failure or empty output.
	MergeChanges(ctx context.Context, req *MergeRequest) (string, error)

	// Name returns the provider name (e.g., "anthropic", "openai")
	Name() string
}

// DraftRequest contains the inputs for initial draft generation.
type DraftRequest struct {
	Prompt      string
	Attachments []models.Attachment
	Profile     models.StyleProfile
}

// SuggestionRequest asks for edit suggestions against a document.
type SuggestionRequest struct {
	Content string
	Profile models.StyleProfile
}

// Change is one accepted suggestion passed to the merge call.
type Change struct {
	OriginalText    string
	SuggestedChange string
	Reason          string
}

// MergeRequest asks for a rewrite of Content with Changes applied.
type MergeRequest struct {
	Content string
	Changes []Change
	Profile models.StyleProfile
}
