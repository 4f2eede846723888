package quota_test

import (
	"context"
	"testing"
	"time"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/quota"
	"github.com/BerylCAtieno/resume-analyzer-api/internal/quota/quotatest"
)

func TestMemoryStore(t *testing.T) {
	quotatest.RunStoreContract(t, quota.NewMemoryStore())
}

func TestRedisStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	store, err := quota.NewRedisStore(ctx, "redis://localhost:6379/15")
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	quotatest.RunStoreContract(t, store)
}
