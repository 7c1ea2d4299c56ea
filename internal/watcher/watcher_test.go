package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

// newTestDB creates an empty file standing in for the database.
func newTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ruleminer.db")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return path
}

func appendTo(t *testing.T, path, data string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(data); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// waitFor polls cond until it holds or timeout elapses.
func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestNew(t *testing.T) {
	w, err := New("ruleminer.db", 0, func() {})
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}
	if !filepath.IsAbs(w.Path()) {
		t.Errorf("Path() = %q, want absolute", w.Path())
	}
	if w.debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", w.debounce, DefaultDebounce)
	}
	if w.wal != w.path+"-wal" {
		t.Errorf("wal = %q, want %q", w.wal, w.path+"-wal")
	}
}

func TestNew_InvalidArgs(t *testing.T) {
	if _, err := New("", time.Second, func() {}); err == nil {
		t.Error("New(\"\") expected error, got nil")
	}
	if _, err := New("db", time.Second, nil); err == nil {
		t.Error("New(nil callback) expected error, got nil")
	}
}

func TestRelevant(t *testing.T) {
	w, err := New("/data/ruleminer.db", time.Second, func() {})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write to db", fsnotify.Event{Name: "/data/ruleminer.db", Op: fsnotify.Write}, true},
		{"create db", fsnotify.Event{Name: "/data/ruleminer.db", Op: fsnotify.Create}, true},
		{"rename db", fsnotify.Event{Name: "/data/ruleminer.db", Op: fsnotify.Rename}, true},
		{"write to wal", fsnotify.Event{Name: "/data/ruleminer.db-wal", Op: fsnotify.Write}, true},
		{"chmod db", fsnotify.Event{Name: "/data/ruleminer.db", Op: fsnotify.Chmod}, false},
		{"remove db", fsnotify.Event{Name: "/data/ruleminer.db", Op: fsnotify.Remove}, false},
		{"shm sidecar", fsnotify.Event{Name: "/data/ruleminer.db-shm", Op: fsnotify.Write}, false},
		{"unrelated file", fsnotify.Event{Name: "/data/other.db", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(tt.ev); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	path := newTestDB(t)

	var calls atomic.Int32
	w, err := New(path, 100*time.Millisecond, func() { calls.Add(1) })
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		appendTo(t, path, "x")
		time.Sleep(10 * time.Millisecond)
	}

	if !waitFor(3*time.Second, func() bool { return calls.Load() >= 1 }) {
		t.Fatal("onChange was not called after writes")
	}

	// Let any stray timer expire
	time.Sleep(300 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("onChange called %d times, want 1", got)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	path := newTestDB(t)

	var calls atomic.Int32
	w, err := New(path, 50*time.Millisecond, func() { calls.Add(1) })
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	appendTo(t, filepath.Join(filepath.Dir(path), "notes.txt"), "hello")

	time.Sleep(300 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("onChange called %d times for unrelated file, want 0", got)
	}
}

func TestWatcher_StopDropsPending(t *testing.T) {
	path := newTestDB(t)

	var calls atomic.Int32
	w, err := New(path, 500*time.Millisecond, func() { calls.Add(1) })
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	appendTo(t, path, "x")
	time.Sleep(50 * time.Millisecond)

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	// Multiple stops should not panic
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}

	time.Sleep(700 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("onChange called %d times after Stop, want 0", got)
	}
}

func TestWatcher_StartMissingDir(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing", "ruleminer.db"), time.Second, func() {})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err == nil {
		w.Stop()
		t.Error("Start() expected error for missing directory, got nil")
	}
}

func TestRunUntilSignal_ContextCancel(t *testing.T) {
	path := newTestDB(t)

	w, err := New(path, 50*time.Millisecond, func() {})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.RunUntilSignal(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("RunUntilSignal() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunUntilSignal() did not return after cancel")
	}
}
