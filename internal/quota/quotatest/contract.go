// Package quotatest holds the behaviour every quota.Store backend must share.
package quotatest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/models"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/quota"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreContract exercises store with identities unique to this run, so it
// can be pointed at shared servers.
func RunStoreContract(t *testing.T, store quota.Store) {
	t.Helper()

	prefix := fmt.Sprintf("contract-%d-", time.Now().UnixNano())
	ctx := context.Background()

	t.Run("unknown identity", func(t *testing.T) {
		has, err := store.Has(ctx, prefix+"nobody")
		require.NoError(t, err)
		assert.False(t, has)

		record, err := store.Peek(ctx, prefix+"nobody")
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("commit then peek", func(t *testing.T) {
		analyzedAt := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
		record := models.QuotaRecord{Identity: prefix + "user-1", AnalyzedAt: analyzedAt, FileName: "resume.pdf"}

		require.NoError(t, store.Commit(ctx, record))

		has, err := store.Has(ctx, record.Identity)
		require.NoError(t, err)
		assert.True(t, has)

		got, err := store.Peek(ctx, record.Identity)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, record.Identity, got.Identity)
		assert.Equal(t, "resume.pdf", got.FileName)
		assert.True(t, analyzedAt.Equal(got.AnalyzedAt), "analyzedAt %s != %s", got.AnalyzedAt, analyzedAt)
	})

	t.Run("second commit is rejected and keeps the first record", func(t *testing.T) {
		identity := prefix + "user-2"
		require.NoError(t, store.Commit(ctx, models.QuotaRecord{Identity: identity, AnalyzedAt: time.Now().UTC(), FileName: "first.pdf"}))

		err := store.Commit(ctx, models.QuotaRecord{Identity: identity, AnalyzedAt: time.Now().UTC(), FileName: "second.docx"})
		assert.ErrorIs(t, err, quota.ErrAlreadyRecorded)

		got, err := store.Peek(ctx, identity)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "first.pdf", got.FileName)
	})

	t.Run("concurrent commits have a single winner", func(t *testing.T) {
		identity := prefix + "racer"
		const writers = 16

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			wins     int
			rejected int
			start    = make(chan struct{})
		)

		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				err := store.Commit(ctx, models.QuotaRecord{
					Identity:   identity,
					AnalyzedAt: time.Now().UTC(),
					FileName:   fmt.Sprintf("resume-%d.pdf", i),
				})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					wins++
				case errors.Is(err, quota.ErrAlreadyRecorded):
					rejected++
				default:
					t.Errorf("unexpected commit error: %v", err)
				}
			}(i)
		}

		close(start)
		wg.Wait()

		assert.Equal(t, 1, wins)
		assert.Equal(t, writers-1, rejected)
	})

	t.Run("identities are independent", func(t *testing.T) {
		require.NoError(t, store.Commit(ctx, models.QuotaRecord{Identity: prefix + "a", AnalyzedAt: time.Now().UTC(), FileName: "a.txt"}))

		has, err := store.Has(ctx, prefix+"b")
		require.NoError(t, err)
		assert.False(t, has)

		require.NoError(t, store.Commit(ctx, models.QuotaRecord{Identity: prefix + "b", AnalyzedAt: time.Now().UTC(), FileName: "b.txt"}))
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}
