package draft

import "quill/internal/domain/models"

// SuggestionSet holds the current batch of pending candidate edits plus
// the subset the user has selected. A batch is always tied to the
// revision content it was computed against; replacing the batch drops
// the old one wholesale along with the selection. Not safe for
// concurrent use on its own - the owning Session serializes access.
type SuggestionSet struct {
	batch    []models.Suggestion
	byID     map[string]int
	selected map[string]struct{}
}

// NewSuggestionSet creates an empty suggestion set.
func NewSuggestionSet() *SuggestionSet {
	return &SuggestionSet{
		byID:     make(map[string]int),
		selected: make(map[string]struct{}),
	}
}

// Replace swaps in a new batch, discarding the previous batch and the
// whole selection. Selection is cleared even if the new batch happens to
// reuse an id that was selected before.
func (ss *SuggestionSet) Replace(batch []models.Suggestion) {
	ss.batch = batch
	ss.byID = make(map[string]int, len(batch))
	ss.selected = make(map[string]struct{})
	for i, s := range batch {
		ss.byID[s.ID] = i
	}
}

// Toggle flips membership of id in the selection set. Ids not in the
// current batch are ignored silently: batches can be replaced while the
// user is interacting, so stale references are expected, not errors.
func (ss *SuggestionSet) Toggle(id string) {
	if _, ok := ss.byID[id]; !ok {
		return
	}
	if _, ok := ss.selected[id]; ok {
		delete(ss.selected, id)
		return
	}
	ss.selected[id] = struct{}{}
}

// Clear empties both the batch and the selection set.
func (ss *SuggestionSet) Clear() {
	ss.Replace(nil)
}

// IsSelected reports whether id is currently selected.
func (ss *SuggestionSet) IsSelected(id string) bool {
	_, ok := ss.selected[id]
	return ok
}

// Batch returns a copy of the current batch in generation order.
func (ss *SuggestionSet) Batch() []models.Suggestion {
	out := make([]models.Suggestion, len(ss.batch))
	copy(out, ss.batch)
	return out
}

// Selected returns the selected suggestions in batch order.
func (ss *SuggestionSet) Selected() []models.Suggestion {
	var out []models.Suggestion
	for _, s := range ss.batch {
		if _, ok := ss.selected[s.ID]; ok {
			out = append(out, s)
		}
	}
	return out
}

// SelectedIDs returns the ids of selected suggestions in batch order.
func (ss *SuggestionSet) SelectedIDs() []string {
	ids := make([]string, 0, len(ss.selected))
	for _, s := range ss.batch {
		if _, ok := ss.selected[s.ID]; ok {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
