package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStager_Lifecycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	stager, err := NewDiskStager(dir)
	require.NoError(t, err)

	ctx := context.Background()
	content := "Jane Doe, staff engineer"

	staged, err := stager.Stage(ctx, strings.NewReader(content), int64(len(content)), "My Resume.PDF", "application/pdf")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(staged.Key, "resume-"))
	assert.True(t, strings.HasSuffix(staged.Key, ".pdf"))
	assert.Equal(t, "My Resume.PDF", staged.OriginalName)
	assert.Equal(t, int64(len(content)), staged.Size)

	data, err := stager.Read(ctx, staged)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	require.NoError(t, stager.Remove(ctx, staged))
	_, err = os.Stat(filepath.Join(dir, staged.Key))
	assert.True(t, os.IsNotExist(err))

	// A second removal is not an error.
	require.NoError(t, stager.Remove(ctx, staged))
}

func TestDiskStager_UniqueKeys(t *testing.T) {
	stager, err := NewDiskStager(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		staged, err := stager.Stage(ctx, strings.NewReader("x"), 1, "resume.txt", "text/plain")
		require.NoError(t, err)
		assert.False(t, seen[staged.Key], "duplicate key %s", staged.Key)
		seen[staged.Key] = true
	}
}

func TestDiskStager_KeyCannotEscapeDir(t *testing.T) {
	dir := t.TempDir()
	stager, err := NewDiskStager(dir)
	require.NoError(t, err)

	outside := filepath.Join(filepath.Dir(dir), "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o600))
	t.Cleanup(func() { os.Remove(outside) })

	require.NoError(t, stager.Remove(context.Background(), Staged{Key: "../outside.txt"}))

	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestDiskStager_Check(t *testing.T) {
	stager, err := NewDiskStager(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, stager.Check(context.Background()))
}

func TestDiskStager_CancelledContext(t *testing.T) {
	stager, err := NewDiskStager(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = stager.Stage(ctx, strings.NewReader("x"), 1, "a.txt", "text/plain")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestS3Stager_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := &config.Config{
		S3Endpoint:        "localhost:9000",
		S3AccessKeyID:     "minioadmin",
		S3SecretAccessKey: "minioadmin",
		S3BucketName:      "resume-analyzer-test",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	stager, err := NewS3Stager(ctx, cfg)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	content := "staged through s3"
	staged, err := stager.Stage(ctx, strings.NewReader(content), int64(len(content)), "cv.txt", "text/plain")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(staged.Key, "staging/resume-"))

	data, err := stager.Read(ctx, staged)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	require.NoError(t, stager.Remove(ctx, staged))
	require.NoError(t, stager.Check(ctx))
}
