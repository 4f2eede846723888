package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/db"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/models"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/quota/quotatest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T, path string) *QuotaRepository {
	t.Helper()

	database, err := db.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return NewQuotaRepository(database)
}

func TestQuotaRepository_Contract(t *testing.T) {
	repo := openTestDB(t, filepath.Join(t.TempDir(), "quota.db"))
	quotatest.RunStoreContract(t, repo)
}

func TestQuotaRepository_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "quota.db")
	ctx := context.Background()

	first := openTestDB(t, path)
	require.NoError(t, first.Commit(ctx, models.QuotaRecord{
		Identity:   "user-1700000000000-abc123",
		AnalyzedAt: time.Now(),
		FileName:   "cv.docx",
	}))
	require.NoError(t, first.db.Close())

	// Migrations are idempotent and records persist.
	second := openTestDB(t, path)
	record, err := second.Peek(ctx, "user-1700000000000-abc123")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "cv.docx", record.FileName)
	assert.Equal(t, time.UTC, record.AnalyzedAt.Location())
}
