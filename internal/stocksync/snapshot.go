package stocksync

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/vitrin-app/vitrin/internal/catalog"
)

const (
	catalogSnapshotKey = "vitrin:catalog:snapshot"

	// snapshotVersion is the envelope version. Bumping it invalidates every
	// older snapshot: readers treat a mismatch as absent and fall back to a
	// fresh remote fetch.
	snapshotVersion = 2
)

// snapshotEnvelope mirrors the persisted shape: {state:{productList},version}.
type snapshotEnvelope struct {
	State   snapshotState `json:"state"`
	Version int           `json:"version"`
}

type snapshotState struct {
	ProductList []catalog.Record `json:"productList"`
}

// RedisSnapshotStore keeps the catalog under one versioned Redis entry.
type RedisSnapshotStore struct {
	client *redis.Client
}

// NewRedisSnapshotStore constructs the store.
func NewRedisSnapshotStore(client *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client}
}

// Save writes the versioned envelope.
func (s *RedisSnapshotStore) Save(ctx context.Context, records []catalog.Record) error {
	payload, err := json.Marshal(snapshotEnvelope{
		State:   snapshotState{ProductList: records},
		Version: snapshotVersion,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, catalogSnapshotKey, payload, 0).Err()
}

// Load returns the snapshot when present and current. Missing keys, decode
// failures and version mismatches all read as "no snapshot".
func (s *RedisSnapshotStore) Load(ctx context.Context) ([]catalog.Record, bool, error) {
	payload, err := s.client.Get(ctx, catalogSnapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var envelope snapshotEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, false, nil
	}
	if envelope.Version != snapshotVersion {
		return nil, false, nil
	}
	return envelope.State.ProductList, true, nil
}

// Drop removes the snapshot entry.
func (s *RedisSnapshotStore) Drop(ctx context.Context) error {
	return s.client.Del(ctx, catalogSnapshotKey).Err()
}
