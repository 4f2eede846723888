package quota

import (
	"context"
	"sync"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/models"
)

// MemoryStore keeps records for the life of the process.
type MemoryStore struct {
	records sync.Map // identity -> models.QuotaRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Has(_ context.Context, identity string) (bool, error) {
	_, ok := s.records.Load(identity)
	return ok, nil
}

func (s *MemoryStore) Peek(_ context.Context, identity string) (*models.QuotaRecord, error) {
	v, ok := s.records.Load(identity)
	if !ok {
		return nil, nil
	}
	record := v.(models.QuotaRecord)
	return &record, nil
}

func (s *MemoryStore) Commit(_ context.Context, record models.QuotaRecord) error {
	if _, loaded := s.records.LoadOrStore(record.Identity, record); loaded {
		return ErrAlreadyRecorded
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
