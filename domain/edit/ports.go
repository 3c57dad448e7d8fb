package edit

import (
	"context"
	"io"
)

// Transcoder runs a single transcoder invocation to completion.
// This is a port that can be implemented by different infrastructure adapters
type Transcoder interface {
	// Run executes args in the working directory and returns once the tool exits
	Run(ctx context.Context, args []string) error
}

// Workspace is the working filesystem the transcoder reads and writes.
// Names are relative to the workspace root.
type Workspace interface {
	Write(name string, r io.Reader) (int64, error)
	Open(name string) (io.ReadCloser, error)
	Remove(name string) error
	Exists(name string) bool
}
