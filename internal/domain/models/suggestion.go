package models

// Suggestion is a proposed original→replacement edit with a short
// rationale, produced in a batch against a specific revision's content.
// OriginalText is expected to appear verbatim in that content; after
// manual edits the anchor may go stale, which is tolerated (the next
// debounced fetch replaces the batch).
type Suggestion struct {
	ID              string `json:"id"`
	OriginalText    string `json:"original_text"`
	SuggestedChange string `json:"suggested_change"`
	Reason          string `json:"reason"`
}
