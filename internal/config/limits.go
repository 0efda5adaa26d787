package config

import "time"

const (
	// MinSuggestionContentLength is the minimum document length for a
	// suggestion fetch. Below this the call is skipped outright and the
	// existing batch is left as-is; very short drafts produce noise.
	MinSuggestionContentLength = 50

	// DefaultSuggestionDebounce is the quiet period after the last
	// content change before a suggestion fetch fires. A retrigger
	// cancels the pending fetch rather than queueing a second one.
	DefaultSuggestionDebounce = 3 * time.Second

	// DefaultSnapshotInterval bounds undo granularity: at most one
	// undo snapshot per interval of typing, not one per keystroke.
	DefaultSnapshotInterval = time.Second

	// DefaultGenerationTimeout caps every generator call. A timed-out
	// call takes the same GenerationError path as any other failure.
	DefaultGenerationTimeout = 120 * time.Second

	// DefaultSessionTTL is how long an idle session survives before
	// the registry sweeps it.
	DefaultSessionTTL = 2 * time.Hour

	// MaxPromptLength is the maximum length for the initial prompt.
	MaxPromptLength = 20000

	// MaxContentLength is the maximum length for manually edited
	// document content.
	MaxContentLength = 200000

	// MaxAttachments is the maximum number of files per draft request.
	MaxAttachments = 8

	// MaxAttachmentSize is the maximum decoded size of one attachment.
	MaxAttachmentSize = 10 << 20
)
