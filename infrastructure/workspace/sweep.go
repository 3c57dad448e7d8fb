package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"video-trimmer/domain/edit"

	"github.com/gofrs/flock"
)

// SweepResult contains information about session directories removed by Sweep
type SweepResult struct {
	Removed    []RemovedSession
	FreedBytes int64
}

// RemovedSession represents a session directory that was deleted
type RemovedSession struct {
	Name     string
	Size     int64
	Modified time.Time
}

// Sweep deletes session directories under root last modified before
// now-maxAge, oldest first. These are left behind when a conversion is
// killed before it can clean up. Sweep holds the conversion lock while it
// runs and returns edit.ErrConversionInProgress if a conversion holds it.
func Sweep(root string, maxAge time.Duration, now time.Time) (*SweepResult, error) {
	result := &SweepResult{}

	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace root: %w", err)
	}

	lock := flock.New(filepath.Join(root, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire conversion lock: %w", err)
	}
	if !ok {
		return nil, edit.ErrConversionInProgress
	}
	defer lock.Unlock()

	cutoff := now.Add(-maxAge)
	var stale []RemovedSession
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "session-") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		stale = append(stale, RemovedSession{
			Name:     entry.Name(),
			Size:     dirSize(filepath.Join(root, entry.Name())),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(stale, func(i, j int) bool {
		return stale[i].Modified.Before(stale[j].Modified)
	})

	for _, session := range stale {
		if err := os.RemoveAll(filepath.Join(root, session.Name)); err != nil {
			return result, fmt.Errorf("failed to delete %s: %w", session.Name, err)
		}
		result.Removed = append(result.Removed, session)
		result.FreedBytes += session.Size
	}

	return result, nil
}

func dirSize(dir string) int64 {
	var total int64
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}
