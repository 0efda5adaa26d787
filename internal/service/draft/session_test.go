package draft

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"quill/internal/domain"
	"quill/internal/domain/generation"
	"quill/internal/domain/models"
	"quill/internal/scheduler"
)

// fakeGenerator is a scriptable generation.Service for session tests,
// in the spirit of the usual mock-LLM test doubles.
type fakeGenerator struct {
	mu sync.Mutex

	draftText string
	draftErr  error

	batch         []models.Suggestion
	suggestionErr error
	onSuggest     func() // runs during GenerateSuggestions, outside the session lock

	mergeText string
	mergeErr  error

	draftStarted chan struct{} // closed when the first draft call begins, if set
	draftRelease chan struct{} // draft call blocks until closed, if set

	draftCalls      int
	suggestionCalls int
	mergeCalls      int
	lastMerge       *generation.MergeRequest
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) GenerateDraft(ctx context.Context, req *generation.DraftRequest) (string, error) {
	f.mu.Lock()
	f.draftCalls++
	first := f.draftCalls == 1
	started, release := f.draftStarted, f.draftRelease
	text, err := f.draftText, f.draftErr
	f.mu.Unlock()

	if first && started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	return text, err
}

func (f *fakeGenerator) GenerateSuggestions(ctx context.Context, req *generation.SuggestionRequest) ([]models.Suggestion, error) {
	f.mu.Lock()
	f.suggestionCalls++
	batch, err, hook := f.batch, f.suggestionErr, f.onSuggest
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return batch, err
}

func (f *fakeGenerator) MergeChanges(ctx context.Context, req *generation.MergeRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mergeCalls++
	f.lastMerge = req
	return f.mergeText, f.mergeErr
}

func (f *fakeGenerator) calls() (draft, suggestions, merge int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draftCalls, f.suggestionCalls, f.mergeCalls
}

// fetchCapture records scheduled debounce callbacks so tests fire them
// deterministically instead of waiting on real timers.
type fetchCapture struct {
	mu  sync.Mutex
	fns []func()
}

func (c *fetchCapture) schedule(d time.Duration, fn func()) *scheduler.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fns = append(c.fns, fn)
	return nil
}

func (c *fetchCapture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fns)
}

// fireLast runs the most recently scheduled callback, which is the only
// one the debounce would have let fire.
func (c *fetchCapture) fireLast(t *testing.T) {
	t.Helper()
	c.mu.Lock()
	if len(c.fns) == 0 {
		c.mu.Unlock()
		t.Fatal("no scheduled fetch to fire")
	}
	fn := c.fns[len(c.fns)-1]
	c.mu.Unlock()
	fn()
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestSession(gen *fakeGenerator) (*Session, *fetchCapture, *fakeClock) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewSession(gen, Options{}, logger)

	capture := &fetchCapture{}
	clock := &fakeClock{now: time.Now()}
	s.schedule = capture.schedule
	s.now = clock.Now
	return s, capture, clock
}

const longDraft = "This draft is comfortably longer than the fifty character suggestion threshold."

func startSession(t *testing.T, s *Session, gen *fakeGenerator, content string) models.Revision {
	t.Helper()
	gen.draftText = content
	rev, err := s.StartDocument(context.Background(), &StartRequest{
		Prompt:  "Write about X",
		Profile: models.ProfileGeneric,
	})
	if err != nil {
		t.Fatalf("StartDocument failed: %v", err)
	}
	return rev
}

func TestSession_StartDocument(t *testing.T) {
	gen := &fakeGenerator{}
	s, capture, _ := newTestSession(gen)

	rev := startSession(t, s, gen, longDraft)

	state := s.Snapshot()
	if len(state.Revisions) != 1 {
		t.Fatalf("expected exactly 1 revision, got %d", len(state.Revisions))
	}
	if rev.Content == "" || state.Revisions[0].Content != longDraft {
		t.Error("expected non-empty draft content")
	}
	if len(state.Suggestions) != 0 {
		t.Error("expected empty suggestion set after start")
	}
	if state.CanUndo || state.CanRedo {
		t.Error("expected empty edit history after start")
	}
	if capture.count() == 0 {
		t.Error("expected a suggestion fetch to be scheduled")
	}
}

func TestSession_StartDocument_ValidationError(t *testing.T) {
	gen := &fakeGenerator{draftText: longDraft}
	s, _, _ := newTestSession(gen)

	_, err := s.StartDocument(context.Background(), &StartRequest{Prompt: ""})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if draftCalls, _, _ := gen.calls(); draftCalls != 0 {
		t.Error("expected no generator call on invalid input")
	}
}

func TestSession_StartDocument_UnknownProfile(t *testing.T) {
	gen := &fakeGenerator{draftText: longDraft}
	s, _, _ := newTestSession(gen)

	_, err := s.StartDocument(context.Background(), &StartRequest{
		Prompt:  "Write about X",
		Profile: models.StyleProfile("pigeon-post"),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown profile, got %v", err)
	}
}

func TestSession_StartDocument_GenerationError(t *testing.T) {
	gen := &fakeGenerator{draftErr: errors.New("model unavailable")}
	s, _, _ := newTestSession(gen)

	_, err := s.StartDocument(context.Background(), &StartRequest{Prompt: "Write about X"})
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}

	// Prior state (empty) is untouched; the user may retry.
	if s.Snapshot().Busy {
		t.Error("expected busy flag released after failure")
	}
	if len(s.Snapshot().Revisions) != 0 {
		t.Error("expected revision sequence to remain empty after failed start")
	}

	gen.mu.Lock()
	gen.draftErr = nil
	gen.draftText = longDraft
	gen.mu.Unlock()
	if _, err := s.StartDocument(context.Background(), &StartRequest{Prompt: "Write about X"}); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
}

func TestSession_StartDocument_EmptyDraft(t *testing.T) {
	gen := &fakeGenerator{draftText: "   \n"}
	s, _, _ := newTestSession(gen)

	_, err := s.StartDocument(context.Background(), &StartRequest{Prompt: "Write about X"})
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected generation error on empty draft, got %v", err)
	}
}

func TestSession_StartDocument_BusyOverlap(t *testing.T) {
	gen := &fakeGenerator{
		draftText:    longDraft,
		draftStarted: make(chan struct{}),
		draftRelease: make(chan struct{}),
	}
	s, _, _ := newTestSession(gen)

	done := make(chan error, 1)
	go func() {
		_, err := s.StartDocument(context.Background(), &StartRequest{Prompt: "Write about X"})
		done <- err
	}()

	<-gen.draftStarted
	_, err := s.StartDocument(context.Background(), &StartRequest{Prompt: "another draft"})
	if !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("expected busy error for overlapping draft, got %v", err)
	}

	close(gen.draftRelease)
	if err := <-done; err != nil {
		t.Fatalf("first draft failed: %v", err)
	}
	if s.Snapshot().Busy {
		t.Error("expected busy flag released after completion")
	}
}

func TestSession_SuggestionFetch_BelowThreshold(t *testing.T) {
	gen := &fakeGenerator{batch: batchOf("s1")}
	s, capture, _ := newTestSession(gen)

	// 40 characters, below the 50-character threshold.
	short := strings.Repeat("x", 40)
	startSession(t, s, gen, short)

	capture.fireLast(t)

	if _, suggestionCalls, _ := gen.calls(); suggestionCalls != 0 {
		t.Error("expected no suggestion call below the content threshold")
	}
	if len(s.Snapshot().Suggestions) != 0 {
		t.Error("expected batch to remain unchanged (empty)")
	}
}

func TestSession_SuggestionFetch_ReplacesBatch(t *testing.T) {
	gen := &fakeGenerator{batch: batchOf("s1", "s2")}
	s, capture, _ := newTestSession(gen)

	startSession(t, s, gen, longDraft)
	capture.fireLast(t)

	batch, selected := s.Suggestions()
	if len(batch) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(batch))
	}
	if len(selected) != 0 {
		t.Error("expected empty selection after batch replacement")
	}
}

func TestSession_SuggestionFetch_TransportFailureKeepsBatch(t *testing.T) {
	gen := &fakeGenerator{batch: batchOf("s1")}
	s, capture, _ := newTestSession(gen)

	startSession(t, s, gen, longDraft)
	capture.fireLast(t)
	if len(s.Snapshot().Suggestions) != 1 {
		t.Fatal("expected initial batch")
	}

	// Next fetch fails at the transport level: swallowed, batch kept.
	gen.mu.Lock()
	gen.suggestionErr = errors.New("network down")
	gen.mu.Unlock()
	if err := s.RecordEdit(longDraft + " more"); err != nil {
		t.Fatalf("RecordEdit failed: %v", err)
	}
	capture.fireLast(t)

	if len(s.Snapshot().Suggestions) != 1 {
		t.Error("expected stale batch kept after failed background fetch")
	}
}

func TestSession_SuggestionFetch_StaleResultDiscarded(t *testing.T) {
	gen := &fakeGenerator{batch: batchOf("s1")}
	s, capture, _ := newTestSession(gen)

	startSession(t, s, gen, longDraft)

	// The content changes while the suggestion call is in flight; the
	// late result is tagged with the old revision content and dropped.
	gen.onSuggest = func() {
		if err := s.RecordEdit(longDraft + " edited mid-flight"); err != nil {
			t.Errorf("RecordEdit during fetch failed: %v", err)
		}
	}
	capture.fns[0]()

	if got := len(s.Snapshot().Suggestions); got != 0 {
		t.Errorf("expected stale batch discarded, got %d suggestions", got)
	}
}

func TestSession_EditRetriggersFetch(t *testing.T) {
	gen := &fakeGenerator{}
	s, capture, clock := newTestSession(gen)
	startSession(t, s, gen, longDraft)

	before := capture.count()
	clock.Advance(2 * time.Second)
	if err := s.RecordEdit(longDraft + " again"); err != nil {
		t.Fatalf("RecordEdit failed: %v", err)
	}
	if capture.count() != before+1 {
		t.Error("expected each edit to reschedule the debounced fetch")
	}
}

func TestSession_RecordEdit_NoRevision(t *testing.T) {
	gen := &fakeGenerator{}
	s, _, _ := newTestSession(gen)

	err := s.RecordEdit("content")
	var noRev *domain.NoCurrentRevisionError
	if !errors.As(err, &noRev) {
		t.Fatalf("expected NoCurrentRevisionError, got %v", err)
	}
}

func TestSession_UndoRedo(t *testing.T) {
	gen := &fakeGenerator{}
	s, _, clock := newTestSession(gen)
	startSession(t, s, gen, longDraft)

	clock.Advance(2 * time.Second)
	if err := s.RecordEdit(longDraft + " v2"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(2 * time.Second)
	if err := s.RecordEdit(longDraft + " v3"); err != nil {
		t.Fatal(err)
	}

	content, ok := s.Undo()
	if !ok || content != longDraft+" v2" {
		t.Fatalf("expected undo to v2, got %q (applied=%v)", content, ok)
	}
	content, ok = s.Redo()
	if !ok || content != longDraft+" v3" {
		t.Fatalf("expected redo to v3, got %q (applied=%v)", content, ok)
	}

	// Undo before any draft exists is a no-op.
	empty, _, _ := newTestSession(&fakeGenerator{})
	if _, ok := empty.Undo(); ok {
		t.Error("expected undo without a revision to be a no-op")
	}
}

func TestSession_ApplySelected(t *testing.T) {
	gen := &fakeGenerator{batch: batchOf("s1", "s2"), mergeText: "Hello brave world"}
	s, capture, clock := newTestSession(gen)

	startSession(t, s, gen, "Hello world padded out past the fifty character mark!")
	capture.fireLast(t)
	s.ToggleSuggestion("s1")
	s.ToggleSuggestion("s2")

	// Leave some manual-edit history behind to verify the reset.
	clock.Advance(2 * time.Second)
	if err := s.RecordEdit("Hello world padded out past the fifty character mark!!"); err != nil {
		t.Fatal(err)
	}

	rev, applied, err := s.ApplySelected(context.Background())
	if err != nil || !applied {
		t.Fatalf("ApplySelected failed: applied=%v err=%v", applied, err)
	}
	if rev.Content != "Hello brave world" {
		t.Errorf("expected merged content, got %q", rev.Content)
	}

	state := s.Snapshot()
	if len(state.Revisions) != 2 {
		t.Errorf("expected 2 revisions after merge, got %d", len(state.Revisions))
	}
	if len(state.Suggestions) != 0 || len(state.SelectedIDs) != 0 {
		t.Error("expected suggestion set cleared after merge")
	}
	if state.CanUndo || state.CanRedo {
		t.Error("expected edit history reset after merge")
	}

	gen.mu.Lock()
	merge := gen.lastMerge
	gen.mu.Unlock()
	if merge == nil || len(merge.Changes) != 2 {
		t.Fatalf("expected merge request with 2 changes")
	}
	if merge.Profile != models.ProfileGeneric {
		t.Error("expected merge tagged with the revision's style profile")
	}
}

func TestSession_ApplySelected_NothingSelected(t *testing.T) {
	gen := &fakeGenerator{batch: batchOf("s1")}
	s, capture, _ := newTestSession(gen)
	startSession(t, s, gen, longDraft)
	capture.fireLast(t)

	_, applied, err := s.ApplySelected(context.Background())
	if err != nil {
		t.Fatalf("expected defensive no-op, got error %v", err)
	}
	if applied {
		t.Error("expected applied=false with nothing selected")
	}
	if _, _, mergeCalls := gen.calls(); mergeCalls != 0 {
		t.Error("expected no merge call with nothing selected")
	}
}

func TestSession_ApplySelected_NoRevision(t *testing.T) {
	gen := &fakeGenerator{}
	s, _, _ := newTestSession(gen)

	_, applied, err := s.ApplySelected(context.Background())
	if err != nil || applied {
		t.Errorf("expected no-op without a current revision, applied=%v err=%v", applied, err)
	}
}

func TestSession_ApplySelected_MergeFailure(t *testing.T) {
	gen := &fakeGenerator{batch: batchOf("s1", "s2"), mergeErr: errors.New("model unavailable")}
	s, capture, _ := newTestSession(gen)

	startSession(t, s, gen, longDraft)
	capture.fireLast(t)
	s.ToggleSuggestion("s1")

	_, applied, err := s.ApplySelected(context.Background())
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}
	if applied {
		t.Error("expected applied=false on merge failure")
	}

	// Fully transactional: nothing changed.
	state := s.Snapshot()
	if len(state.Revisions) != 1 {
		t.Errorf("expected revision sequence unchanged, got %d", len(state.Revisions))
	}
	if len(state.Suggestions) != 2 {
		t.Errorf("expected suggestion batch unchanged, got %d", len(state.Suggestions))
	}
	if len(state.SelectedIDs) != 1 || state.SelectedIDs[0] != "s1" {
		t.Errorf("expected selection unchanged, got %v", state.SelectedIDs)
	}
	if state.Busy {
		t.Error("expected busy flag released after failure")
	}
}

func TestSession_ToggleStaleSuggestionID(t *testing.T) {
	gen := &fakeGenerator{batch: batchOf("s1")}
	s, capture, _ := newTestSession(gen)
	startSession(t, s, gen, longDraft)
	capture.fireLast(t)

	// Toggling an id from a superseded batch must not error or select.
	s.ToggleSuggestion("from-an-old-batch")
	_, selected := s.Suggestions()
	if len(selected) != 0 {
		t.Errorf("expected no selection from a stale id, got %v", selected)
	}
}
