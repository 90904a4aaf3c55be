package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var callCount atomic.Int32

	// Trigger rapidly 10 times
	for i := 0; i < 10; i++ {
		d.Trigger(func() {
			callCount.Add(1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	// Wait for debounce to complete
	time.Sleep(100 * time.Millisecond)

	if count := callCount.Load(); count != 1 {
		t.Errorf("expected 1 callback invocation, got %d", count)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool

	d.Trigger(func() {
		called.Store(true)
	})

	// Cancel before debounce completes
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback should not have been invoked after cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	d := NewDebouncer(0)
	if d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

func writeSlide(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_DetectsSlideChange(t *testing.T) {
	tmpDir := t.TempDir()
	writeSlide(t, tmpDir, "100_first.svg", "<svg/>")

	var (
		changeMu sync.Mutex
		changed  bool
	)

	w, err := New(tmpDir,
		WithDebounceDuration(50*time.Millisecond),
		WithOnChange(func() {
			changeMu.Lock()
			changed = true
			changeMu.Unlock()
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Give watcher time to initialize
	time.Sleep(100 * time.Millisecond)

	writeSlide(t, tmpDir, "100_first.svg", "<svg><g/></svg>")

	// Wait for change detection
	time.Sleep(300 * time.Millisecond)

	changeMu.Lock()
	got := changed
	changeMu.Unlock()
	if !got {
		t.Error("expected change to be detected")
	}
}

func TestWatcher_DetectsNewSlideViaPolling(t *testing.T) {
	tmpDir := t.TempDir()
	writeSlide(t, tmpDir, "100_first.svg", "<svg/>")

	w, err := New(tmpDir,
		WithForcePoll(true),
		WithPollInterval(50*time.Millisecond),
		WithDebounceDuration(20*time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("expected polling mode when forced")
	}

	writeSlide(t, tmpDir, "200_second.svg", "<svg/>")

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Error("expected change notification for new slide file")
	}
}

func TestWatcher_IgnoresNonSlideFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeSlide(t, tmpDir, "100_first.svg", "<svg/>")

	var callCount atomic.Int32

	w, err := New(tmpDir,
		WithForcePoll(true),
		WithPollInterval(50*time.Millisecond),
		WithDebounceDuration(20*time.Millisecond),
		WithOnChange(func() { callCount.Add(1) }),
	)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	writeSlide(t, tmpDir, "notes.txt", "not a slide")
	writeSlide(t, tmpDir, ".hidden.svg", "hidden")

	time.Sleep(300 * time.Millisecond)

	if count := callCount.Load(); count != 0 {
		t.Errorf("expected no notifications for non-slide files, got %d", count)
	}
}

func TestWatcher_StartTwice(t *testing.T) {
	w, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.Start(); err != ErrAlreadyStarted {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	w.Stop()
	w.Stop()

	if w.IsStarted() {
		t.Error("watcher should be stopped")
	}
}
