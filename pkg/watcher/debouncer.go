package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration is how long a burst of change events is
// allowed to settle before the callback fires.
const DefaultDebounceDuration = 250 * time.Millisecond

// Debouncer coalesces bursts of triggers into a single callback once
// the burst has been quiet for the configured duration. Editors and
// Inkscape save files with several writes in quick succession; without
// debouncing each save would reload the deck multiple times.
type Debouncer struct {
	duration time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given settle duration.
// Non-positive durations fall back to DefaultDebounceDuration.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounceDuration
	}
	return &Debouncer{duration: d}
}

// Duration returns the settle duration.
func (d *Debouncer) Duration() time.Duration {
	return d.duration
}

// Trigger schedules fn to run after the settle duration, resetting the
// countdown if a trigger is already pending. Only the most recent fn is
// invoked.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Cancel drops any pending trigger.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
