package display

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// snapshotKey holds the whole identity map as one JSON object, mirroring the
// single named entry the dashboard kept in browser storage.
const snapshotKey = "vitrin:display:status"

// RedisSnapshotStore persists the ledger map in Redis.
type RedisSnapshotStore struct {
	client *redis.Client
}

// NewRedisSnapshotStore constructs the store.
func NewRedisSnapshotStore(client *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client}
}

// Save writes the full map. The write is awaited; a failed write is the
// caller's error to surface.
func (s *RedisSnapshotStore) Save(ctx context.Context, entries map[string]Entry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, snapshotKey, payload, 0).Err()
}

// Load reads the map back; a missing key yields an empty map.
func (s *RedisSnapshotStore) Load(ctx context.Context) (map[string]Entry, error) {
	payload, err := s.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return make(map[string]Entry), nil
	}
	if err != nil {
		return nil, err
	}
	var entries map[string]Entry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
