package draft

import "time"

// History is the manual-edit undo/redo controller for the current
// revision's content. It is a linear two-stack history over content
// strings, entirely separate from the revision sequence: whenever the
// sequence grows (an AI-authored revision was appended) both stacks are
// reset, so undo never reaches across a revision boundary.
//
// Snapshot pushes are throttled: rapid keystrokes within the snapshot
// interval coalesce into the live content without generating
// intermediate undo points. The live content itself is owned by the
// Store and updated unconditionally; only snapshotting is throttled.
type History struct {
	past     []string
	future   []string
	interval time.Duration
	lastPush time.Time
}

// NewHistory creates an empty history with the given snapshot throttle
// interval. A non-positive interval disables throttling.
func NewHistory(interval time.Duration) *History {
	return &History{interval: interval}
}

// Record registers a manual edit. prev is the content as it was before
// the edit; now is the wall-clock time of the edit. A past snapshot is
// pushed only if the throttle interval has elapsed since the last push.
// The redo stack is cleared regardless - once the user branches, the
// abandoned future is gone.
func (h *History) Record(prev string, now time.Time) {
	h.future = nil
	if len(h.past) > 0 && now.Sub(h.lastPush) < h.interval {
		return
	}
	h.past = append(h.past, prev)
	h.lastPush = now
}

// Undo pops the most recent past snapshot, saving current onto the redo
// stack. Returns the restored content, or false when there is nothing
// to undo.
func (h *History) Undo(current string) (string, bool) {
	if len(h.past) == 0 {
		return "", false
	}
	restored := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, current)
	return restored, true
}

// Redo is the inverse of Undo. Returns the restored content, or false
// when the redo stack is empty.
func (h *History) Redo(current string) (string, bool) {
	if len(h.future) == 0 {
		return "", false
	}
	restored := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, current)
	return restored, true
}

// Reset clears both stacks and the throttle window. Called when the
// revision sequence grows.
func (h *History) Reset() {
	h.past = nil
	h.future = nil
	h.lastPush = time.Time{}
}

// CanUndo reports whether the past stack is non-empty.
func (h *History) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether the future stack is non-empty.
func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Depth returns the past and future stack sizes.
func (h *History) Depth() (past, future int) {
	return len(h.past), len(h.future)
}
