package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pageinsight/backend/report"
)

const historyKeyPrefix = "history:"

// RedisPersister stores each key's report list as one JSON value.
type RedisPersister struct {
	client *redis.Client
}

// NewRedisPersister wraps an existing Redis client.
func NewRedisPersister(client *redis.Client) *RedisPersister {
	return &RedisPersister{client: client}
}

func (p *RedisPersister) redisKey(key string) string {
	return historyKeyPrefix + key
}

// Load fetches the stored log for key. A missing key is an empty log.
func (p *RedisPersister) Load(ctx context.Context, key string) ([]report.Report, error) {
	data, err := p.client.Get(ctx, p.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", key, err)
	}

	var reports []report.Report
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode history for %s: %w", key, err)
	}
	return reports, nil
}

// Save replaces the stored log for key with the given list.
func (p *RedisPersister) Save(ctx context.Context, key string, reports []report.Report) error {
	data, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("failed to encode history for %s: %w", key, err)
	}
	if err := p.client.Set(ctx, p.redisKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save history for %s: %w", key, err)
	}
	return nil
}
