package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewRequiresPaths(t *testing.T) {
	if _, err := New(nil, Options{}); err == nil {
		t.Error("expected error for empty path list")
	}
}

func TestNewMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "features.xml")
	if _, err := New([]string{path}, Options{}); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestRunReportsChanges(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "features.xml")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(target, []byte("<features/>"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New([]string{target}, Options{Debounce: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(paths []string) { changes <- paths })
	}()

	// Give the watcher a moment to start reading events.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(other, []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(target, []byte("<features total=\"1\"/>"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case got := <-changes:
		if len(got) != 1 || got[0] != target {
			t.Errorf("changed paths: got %v, want [%s]", got, target)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for change notification")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned error: %v", err)
	}
}
