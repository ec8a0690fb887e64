package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherFiresReloadOnWrite(t *testing.T) {
	root := t.TempDir()

	var reloads atomic.Int32
	w, err := New(root, func() { reloads.Add(1) }, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "init.lua"), []byte("-- v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, 2*time.Second, func() bool { return reloads.Load() >= 1 })
}

func TestWatcherDebouncesBursts(t *testing.T) {
	root := t.TempDir()

	var reloads atomic.Int32
	w, err := New(root, func() { reloads.Add(1) }, WithDebounce(150*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// A burst of writes inside the settle window collapses to one reload.
	path := filepath.Join(root, "init.lua")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("-- rev"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	waitFor(t, 2*time.Second, func() bool { return reloads.Load() >= 1 })
	time.Sleep(300 * time.Millisecond)
	if got := reloads.Load(); got != 1 {
		t.Errorf("reloads = %d, want 1", got)
	}
}

func TestWatcherStartMissingRoot(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "absent"), func() {})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Start(); err == nil {
		t.Error("Start() on missing root returned nil error")
	}
}

func TestWatcherClose(t *testing.T) {
	w, err := New(t.TempDir(), func() {})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	// Double close is a no-op.
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
