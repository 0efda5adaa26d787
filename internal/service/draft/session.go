package draft

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"quill/internal/config"
	"quill/internal/domain"
	"quill/internal/domain/generation"
	"quill/internal/domain/models"
	"quill/internal/scheduler"
)

// Options carries the session tunables. Zero values fall back to the
// defaults in the config package.
type Options struct {
	SuggestionDebounce time.Duration
	SnapshotInterval   time.Duration
	GenerationTimeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.SuggestionDebounce <= 0 {
		o.SuggestionDebounce = config.DefaultSuggestionDebounce
	}
	if o.SnapshotInterval <= 0 {
		o.SnapshotInterval = config.DefaultSnapshotInterval
	}
	if o.GenerationTimeout <= 0 {
		o.GenerationTimeout = config.DefaultGenerationTimeout
	}
	return o
}

// Session orchestrates one draft: the revision store, the suggestion
// set and the edit history, plus the generator calls that drive them.
//
// All state lives behind one mutex; generator calls run outside the
// lock with the busy flag held, so reads never observe a half-applied
// append. Two async flows exist per session: user-initiated draft/merge
// generation (mutually exclusive with itself via the busy flag) and the
// debounced background suggestion fetch (cancellable, stale-checked).
type Session struct {
	id     string
	gen    generation.Service
	opts   Options
	logger *slog.Logger

	mu          sync.Mutex
	store       *Store
	suggestions *SuggestionSet
	history     *History
	busy        bool
	pending     *scheduler.Handle
	closed      bool

	// seams for deterministic tests
	now      func() time.Time
	schedule func(time.Duration, func()) *scheduler.Handle
}

// NewSession creates an empty session. No revision exists until
// StartDocument succeeds.
func NewSession(gen generation.Service, opts Options, logger *slog.Logger) *Session {
	opts = opts.withDefaults()
	return &Session{
		id:          uuid.NewString(),
		gen:         gen,
		opts:        opts,
		logger:      logger,
		store:       NewStore(),
		suggestions: NewSuggestionSet(),
		history:     NewHistory(opts.SnapshotInterval),
		now:         time.Now,
		schedule:    scheduler.Schedule,
	}
}

// ID returns the session's opaque identifier.
func (s *Session) ID() string { return s.id }

// Close cancels any pending background fetch. Late in-flight results
// are dropped by the closed flag.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.Cancel()
	s.pending = nil
	s.closed = true
}

// StartRequest carries the inputs for initial draft generation.
type StartRequest struct {
	Prompt      string
	Attachments []models.Attachment
	Profile     models.StyleProfile
}

// Validate checks the request against the configured limits.
func (r *StartRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Prompt, validation.Required, validation.Length(1, config.MaxPromptLength)),
		validation.Field(&r.Attachments, validation.Length(0, config.MaxAttachments)),
		validation.Field(&r.Profile, validation.By(validProfile)),
	)
	if err != nil {
		return err
	}
	for _, a := range r.Attachments {
		if a.Name == "" {
			return errors.New("attachment name is required")
		}
		if len(a.Data) == 0 {
			return errors.New("attachment content is empty")
		}
		if len(a.Data) > config.MaxAttachmentSize {
			return errors.New("attachment exceeds maximum size")
		}
	}
	return nil
}

func validProfile(value interface{}) error {
	p, _ := value.(models.StyleProfile)
	if p == "" || p.Valid() {
		return nil
	}
	return errors.New("unknown style profile")
}

// StartDocument generates the initial draft. On success the entire
// revision sequence is replaced with a single fresh revision, the
// suggestion set and edit history are cleared, and a suggestion fetch
// is scheduled. On failure nothing changes and the user may retry.
func (s *Session) StartDocument(ctx context.Context, req *StartRequest) (models.Revision, error) {
	if req.Profile == "" {
		req.Profile = models.ProfileGeneric
	}
	if err := req.Validate(); err != nil {
		return models.Revision{}, &domain.ValidationError{Message: err.Error()}
	}

	if err := s.acquire(); err != nil {
		return models.Revision{}, err
	}
	defer s.release()

	genCtx, cancel := context.WithTimeout(ctx, s.opts.GenerationTimeout)
	defer cancel()

	content, err := s.gen.GenerateDraft(genCtx, &generation.DraftRequest{
		Prompt:      req.Prompt,
		Attachments: req.Attachments,
		Profile:     req.Profile,
	})
	if err != nil {
		return models.Revision{}, asGenerationError("draft", err)
	}
	if strings.TrimSpace(content) == "" {
		return models.Revision{}, &domain.GenerationError{Op: "draft", Message: "generator returned empty content"}
	}

	rev := models.NewRevision(content, req.Profile)

	s.mu.Lock()
	s.store.Reset(rev)
	s.suggestions.Clear()
	s.history.Reset()
	s.scheduleFetchLocked()
	s.mu.Unlock()

	s.logger.Info("draft generated",
		"session", s.id,
		"revision", rev.ID,
		"profile", rev.Profile,
		"content_length", len(rev.Content),
	)
	return rev, nil
}

// ApplySelected merges the selected suggestions into a new revision.
// Transactional from the caller's perspective: either a new revision is
// appended (and the suggestion set clears, and the edit history resets)
// or nothing changes. With no current revision or an empty selection it
// is a defensive no-op, not an error.
func (s *Session) ApplySelected(ctx context.Context) (models.Revision, bool, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return models.Revision{}, false, &domain.BusyError{Message: "a generation is already in flight"}
	}
	current, ok := s.store.Current()
	selected := s.suggestions.Selected()
	if !ok || len(selected) == 0 {
		s.mu.Unlock()
		return current, false, nil
	}
	s.busy = true
	s.mu.Unlock()
	defer s.release()

	changes := make([]generation.Change, len(selected))
	for i, sug := range selected {
		changes[i] = generation.Change{
			OriginalText:    sug.OriginalText,
			SuggestedChange: sug.SuggestedChange,
			Reason:          sug.Reason,
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, s.opts.GenerationTimeout)
	defer cancel()

	merged, err := s.gen.MergeChanges(genCtx, &generation.MergeRequest{
		Content: current.Content,
		Changes: changes,
		Profile: current.Profile,
	})
	if err != nil {
		return models.Revision{}, false, asGenerationError("merge", err)
	}
	if strings.TrimSpace(merged) == "" {
		return models.Revision{}, false, &domain.GenerationError{Op: "merge", Message: "generator returned empty content"}
	}

	s.mu.Lock()
	rev := s.store.Append(merged, current.Profile)
	s.suggestions.Clear()
	s.history.Reset()
	s.scheduleFetchLocked()
	s.mu.Unlock()

	s.logger.Info("suggestions merged",
		"session", s.id,
		"revision", rev.ID,
		"applied", len(changes),
	)
	return rev, true, nil
}

// RecordEdit applies a manual in-place edit to the current revision's
// content. Live content always updates; an undo snapshot is pushed only
// when the throttle interval has elapsed. The debounced suggestion
// fetch is rescheduled on every edit.
func (s *Session) RecordEdit(content string) error {
	if len(content) > config.MaxContentLength {
		return &domain.ValidationError{Message: "content exceeds maximum length"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.store.Current()
	if !ok {
		return &domain.NoCurrentRevisionError{Op: "edit"}
	}
	if content == current.Content {
		return nil
	}
	s.history.Record(current.Content, s.now())
	if err := s.store.MutateCurrent(content); err != nil {
		return err
	}
	s.scheduleFetchLocked()
	return nil
}

// Undo restores the previous manual-edit snapshot. Returns the current
// content and whether an undo was applied.
func (s *Session) Undo() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.store.Current()
	if !ok {
		return "", false
	}
	restored, ok := s.history.Undo(current.Content)
	if !ok {
		return current.Content, false
	}
	if err := s.store.MutateCurrent(restored); err != nil {
		return current.Content, false
	}
	s.scheduleFetchLocked()
	return restored, true
}

// Redo re-applies the most recently undone edit.
func (s *Session) Redo() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.store.Current()
	if !ok {
		return "", false
	}
	restored, ok := s.history.Redo(current.Content)
	if !ok {
		return current.Content, false
	}
	if err := s.store.MutateCurrent(restored); err != nil {
		return current.Content, false
	}
	s.scheduleFetchLocked()
	return restored, true
}

// ToggleSuggestion flips the selection state of a suggestion. Unknown
// ids (stale references from a superseded batch) are ignored.
func (s *Session) ToggleSuggestion(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions.Toggle(id)
}

// Suggestions returns the current batch and the selected ids.
func (s *Session) Suggestions() ([]models.Suggestion, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggestions.Batch(), s.suggestions.SelectedIDs()
}

// State is a consistent read of the whole session.
type State struct {
	ID          string              `json:"id"`
	Revisions   []models.Revision   `json:"revisions"`
	Suggestions []models.Suggestion `json:"suggestions"`
	SelectedIDs []string            `json:"selected_ids"`
	CanUndo     bool                `json:"can_undo"`
	CanRedo     bool                `json:"can_redo"`
	Busy        bool                `json:"busy"`
}

// Snapshot returns a consistent view of the session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		ID:          s.id,
		Revisions:   s.store.All(),
		Suggestions: s.suggestions.Batch(),
		SelectedIDs: s.suggestions.SelectedIDs(),
		CanUndo:     s.history.CanUndo(),
		CanRedo:     s.history.CanRedo(),
		Busy:        s.busy,
	}
}

// acquire takes the busy flag or fails with BusyError.
func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return &domain.BusyError{Message: "a generation is already in flight"}
	}
	s.busy = true
	return nil
}

// release clears the busy flag. Always deferred so the flag is dropped
// on every exit path.
func (s *Session) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// scheduleFetchLocked (re)arms the debounced suggestion fetch. The
// previous pending timer is cancelled outright: latest wins, nothing is
// queued. Callers must hold s.mu.
func (s *Session) scheduleFetchLocked() {
	s.pending.Cancel()
	if s.closed {
		return
	}
	s.pending = s.schedule(s.opts.SuggestionDebounce, s.fetchSuggestions)
}

// fetchSuggestions runs after the debounce quiet period. It is skipped
// below the minimum-content threshold (the existing batch stays as-is).
// The call is tagged with the revision id and content it targeted; a
// late result whose tag no longer matches the current revision is
// discarded rather than applied.
func (s *Session) fetchSuggestions() {
	s.mu.Lock()
	current, ok := s.store.Current()
	if s.closed || !ok || len(current.Content) < config.MinSuggestionContentLength {
		s.mu.Unlock()
		return
	}
	targetID, targetContent, profile := current.ID, current.Content, current.Profile
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.GenerationTimeout)
	defer cancel()

	batch, err := s.gen.GenerateSuggestions(ctx, &generation.SuggestionRequest{
		Content: targetContent,
		Profile: profile,
	})
	if err != nil {
		// Best-effort background path: swallow and keep the old batch.
		s.logger.Warn("suggestion fetch failed", "session", s.id, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok = s.store.Current()
	if s.closed || !ok || current.ID != targetID || current.Content != targetContent {
		s.logger.Debug("discarding stale suggestion batch",
			"session", s.id,
			"target_revision", targetID,
		)
		return
	}
	s.suggestions.Replace(batch)
	s.logger.Debug("suggestion batch replaced",
		"session", s.id,
		"revision", targetID,
		"count", len(batch),
	)
}

// asGenerationError passes adapter GenerationErrors through and wraps
// anything else (timeouts included) into the same error path.
func asGenerationError(op string, err error) error {
	if errors.Is(err, domain.ErrGeneration) {
		return err
	}
	return &domain.GenerationError{Op: op, Message: "generator call failed", Err: err}
}
