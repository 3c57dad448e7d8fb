package workspace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"video-trimmer/domain/edit"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const lockFileName = "convert.lock"

// Workspace implements edit.Workspace as a per-session directory on disk
type Workspace struct {
	root      string
	dir       string
	sessionID string
	lock      *flock.Flock
}

// New creates a fresh session directory under root
func New(root string) (*Workspace, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace root: %w", err)
	}

	sessionID := uuid.NewString()
	dir := filepath.Join(root, "session-"+sessionID)
	if err := os.Mkdir(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	return &Workspace{
		root:      root,
		dir:       dir,
		sessionID: sessionID,
		lock:      flock.New(filepath.Join(root, lockFileName)),
	}, nil
}

// SessionID identifies this workspace in logs
func (w *Workspace) SessionID() string {
	return w.sessionID
}

// Dir returns the directory artifact names resolve against
func (w *Workspace) Dir() string {
	return w.dir
}

// TryLock claims the single conversion slot shared by all sessions under the
// same root. It returns edit.ErrConversionInProgress when another holds it.
func (w *Workspace) TryLock() error {
	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire conversion lock: %w", err)
	}
	if !ok {
		return edit.ErrConversionInProgress
	}
	return nil
}

// Unlock releases the conversion slot
func (w *Workspace) Unlock() error {
	return w.lock.Unlock()
}

// Write stores r under name, replacing any existing artifact. A partial
// file is removed if the copy fails.
func (w *Workspace) Write(name string, r io.Reader) (int64, error) {
	path, err := w.path(name)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", name, err)
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to write %s: %w", name, err)
	}

	return n, nil
}

// Open returns a reader for the named artifact
func (w *Workspace) Open(name string) (io.ReadCloser, error) {
	path, err := w.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}

// Remove deletes the named artifact; a missing artifact is not an error
func (w *Workspace) Remove(name string) error {
	path, err := w.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// Exists returns true if the named artifact exists
func (w *Workspace) Exists(name string) bool {
	path, err := w.path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Close removes the session directory and everything left in it
func (w *Workspace) Close() error {
	return os.RemoveAll(w.dir)
}

// path keeps artifact names inside the session directory
func (w *Workspace) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	return filepath.Join(w.dir, name), nil
}

// Ensure Workspace implements edit.Workspace
var _ edit.Workspace = (*Workspace)(nil)
