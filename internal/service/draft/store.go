package draft

import (
	"quill/internal/domain"
	"quill/internal/domain/models"
)

// Store is the ordered, append-only list of document revisions. Entries
// are never deleted or reordered; only the last entry's content may be
// mutated in place (manual edits). Store is not safe for concurrent use
// on its own - the owning Session serializes access.
type Store struct {
	revisions []models.Revision
}

// NewStore creates an empty revision store.
func NewStore() *Store {
	return &Store{}
}

// Reset replaces the entire sequence with the single given revision.
// Used when a fresh draft is generated.
func (s *Store) Reset(rev models.Revision) {
	s.revisions = []models.Revision{rev}
}

// Append commits a new revision with a fresh id and timestamp. Used
// after accepted suggestions are merged.
func (s *Store) Append(content string, profile models.StyleProfile) models.Revision {
	rev := models.NewRevision(content, profile)
	s.revisions = append(s.revisions, rev)
	return rev
}

// MutateCurrent replaces the content of the latest revision in place,
// keeping its id and timestamp. Returns NoCurrentRevisionError when the
// sequence is empty.
func (s *Store) MutateCurrent(content string) error {
	if len(s.revisions) == 0 {
		return &domain.NoCurrentRevisionError{Op: "mutate content"}
	}
	s.revisions[len(s.revisions)-1].Content = content
	return nil
}

// Current returns the latest revision, or false before the first draft.
func (s *Store) Current() (models.Revision, bool) {
	if len(s.revisions) == 0 {
		return models.Revision{}, false
	}
	return s.revisions[len(s.revisions)-1], true
}

// Len returns the number of revisions in the sequence.
func (s *Store) Len() int {
	return len(s.revisions)
}

// All returns a copy of the revision sequence, oldest first.
func (s *Store) All() []models.Revision {
	out := make([]models.Revision, len(s.revisions))
	copy(out, s.revisions)
	return out
}
