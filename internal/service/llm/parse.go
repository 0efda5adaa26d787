package llm

import (
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"quill/internal/domain/models"
)

// parseSuggestions extracts a suggestion batch from raw model output.
// Models wrap JSON in code fences or prose often enough that strict
// unmarshalling would fail constantly, so extraction is lenient: find
// the array, take the well-formed elements, skip the rest. Returns
// ok=false when no usable array is present; suggestion fetching is
// best-effort, so callers degrade to an empty batch instead of erroring.
func parseSuggestions(raw string) ([]models.Suggestion, bool) {
	payload := extractJSONArray(raw)
	if payload == "" {
		return nil, false
	}

	parsed := gjson.Parse(payload)
	if !parsed.IsArray() {
		return nil, false
	}

	batch := make([]models.Suggestion, 0)
	for _, item := range parsed.Array() {
		original := item.Get("original_text").String()
		change := item.Get("suggested_change").String()
		if original == "" || change == "" {
			continue
		}
		batch = append(batch, models.Suggestion{
			ID:              uuid.NewString(),
			OriginalText:    original,
			SuggestedChange: change,
			Reason:          item.Get("reason").String(),
		})
	}
	return batch, true
}

// extractJSONArray returns the outermost JSON array in raw, tolerating
// markdown code fences and surrounding prose. Empty string when none.
func extractJSONArray(raw string) string {
	s := strings.TrimSpace(raw)

	// Strip a fenced block if the response is wrapped in one.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	candidate := s[start : end+1]
	if !gjson.Valid(candidate) {
		return ""
	}
	return candidate
}
