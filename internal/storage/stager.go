// Package storage holds uploaded files for the lifetime of one request.
package storage

import (
	"context"
	"io"
)

// Staged identifies one staged upload.
type Staged struct {
	Key          string
	OriginalName string
	ContentType  string
	Size         int64
}

// Stager stages request-scoped uploads. Remove must tolerate keys that are
// already gone.
type Stager interface {
	Stage(ctx context.Context, r io.Reader, size int64, filename, contentType string) (Staged, error)
	Read(ctx context.Context, staged Staged) ([]byte, error)
	Remove(ctx context.Context, staged Staged) error
	Check(ctx context.Context) error
}
