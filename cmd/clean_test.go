package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"video-trimmer/domain/edit"
	"video-trimmer/infrastructure/workspace"
)

func TestRunClean(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, "session-stale")
	if err := os.MkdirAll(stale, 0755); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}
	live, err := workspace.New(root)
	if err != nil {
		t.Fatalf("workspace.New() unexpected error: %v", err)
	}

	var out bytes.Buffer
	if err := RunCleanWithDependencies(root, 24*time.Hour, time.Now(), &out); err != nil {
		t.Fatalf("RunCleanWithDependencies() unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), "Removed: session-stale") {
		t.Errorf("output missing removed session: %q", out.String())
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale session still exists")
	}
	if _, err := os.Stat(live.Dir()); err != nil {
		t.Errorf("fresh session removed: %v", err)
	}
}

func TestRunClean_NothingToDo(t *testing.T) {
	var out bytes.Buffer
	if err := RunCleanWithDependencies(t.TempDir(), time.Hour, time.Now(), &out); err != nil {
		t.Fatalf("RunCleanWithDependencies() unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "No stale sessions found") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunClean_Errors(t *testing.T) {
	if err := RunCleanWithDependencies(t.TempDir(), -time.Hour, time.Now(), &bytes.Buffer{}); err == nil {
		t.Error("expected error for negative age")
	}

	root := t.TempDir()
	ws, err := workspace.New(root)
	if err != nil {
		t.Fatalf("workspace.New() unexpected error: %v", err)
	}
	if err := ws.TryLock(); err != nil {
		t.Fatalf("TryLock() unexpected error: %v", err)
	}
	defer ws.Unlock()

	err = RunCleanWithDependencies(root, 0, time.Now(), &bytes.Buffer{})
	if !errors.Is(err, edit.ErrConversionInProgress) {
		t.Errorf("error = %v, want ErrConversionInProgress", err)
	}
}
