// Package scheduler provides a cancellable one-shot timer used for
// debounced background work.
package scheduler

import "time"

// Handle refers to a scheduled call and allows cancelling it before it
// fires. A nil Handle is safe to cancel.
type Handle struct {
	timer *time.Timer
}

// Schedule runs fn after delay on its own goroutine. Rescheduling a
// debounced task means cancelling the previous handle first; fn must do
// its own staleness checks if it races with state changes.
func Schedule(delay time.Duration, fn func()) *Handle {
	return &Handle{timer: time.AfterFunc(delay, fn)}
}

// Cancel stops the pending call. It reports whether the call was still
// pending; false means it already fired or was cancelled before.
func (h *Handle) Cancel() bool {
	if h == nil || h.timer == nil {
		return false
	}
	return h.timer.Stop()
}
