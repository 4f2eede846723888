package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/utils"
)

type diskStager struct {
	dir string
	now func() time.Time
}

// NewDiskStager stages uploads as files under dir, creating it if needed.
func NewDiskStager(dir string) (Stager, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute upload path: %w", err)
	}

	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &diskStager{dir: absDir, now: time.Now}, nil
}

func (s *diskStager) Stage(ctx context.Context, r io.Reader, size int64, filename, contentType string) (Staged, error) {
	if err := ctx.Err(); err != nil {
		return Staged{}, err
	}

	key := utils.StagedName(filename, s.now())

	f, err := os.OpenFile(s.path(key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return Staged{}, fmt.Errorf("failed to create staged file: %w", err)
	}

	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(s.path(key))
		return Staged{}, fmt.Errorf("failed to write staged file: %w", err)
	}

	return Staged{
		Key:          key,
		OriginalName: filename,
		ContentType:  contentType,
		Size:         written,
	}, nil
}

func (s *diskStager) Read(ctx context.Context, staged Staged) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(staged.Key))
	if err != nil {
		return nil, fmt.Errorf("failed to read staged file: %w", err)
	}
	return data, nil
}

func (s *diskStager) Remove(_ context.Context, staged Staged) error {
	err := os.Remove(s.path(staged.Key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete staged file: %w", err)
	}
	return nil
}

// Check verifies the upload directory is still writable.
func (s *diskStager) Check(_ context.Context) error {
	f, err := os.CreateTemp(s.dir, ".ready-*")
	if err != nil {
		return fmt.Errorf("upload directory not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// path joins only the base name of key so a key can never escape the
// upload directory.
func (s *diskStager) path(key string) string {
	return filepath.Join(s.dir, filepath.Base(key))
}
