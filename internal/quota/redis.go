package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/models"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "resume-quota:"

// RedisStore shares records between processes. Commit relies on SETNX, so the
// first writer for an identity wins across every instance.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the server named by a redis:// URL.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Has(ctx context.Context, identity string) (bool, error) {
	n, err := s.client.Exists(ctx, redisKeyPrefix+identity).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check quota record: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Peek(ctx context.Context, identity string) (*models.QuotaRecord, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+identity).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quota record: %w", err)
	}

	var record models.QuotaRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode quota record: %w", err)
	}
	return &record, nil
}

func (s *RedisStore) Commit(ctx context.Context, record models.QuotaRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode quota record: %w", err)
	}

	ok, err := s.client.SetNX(ctx, redisKeyPrefix+record.Identity, payload, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to commit quota record: %w", err)
	}
	if !ok {
		return ErrAlreadyRecorded
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
