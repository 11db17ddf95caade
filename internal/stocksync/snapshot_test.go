package stocksync

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vitrin-app/vitrin/internal/catalog"
)

func snapshotClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSnapshotRoundTrip(t *testing.T) {
	_, client := snapshotClient(t)
	store := NewRedisSnapshotStore(client)
	ctx := context.Background()

	records := []catalog.Record{{Brand: "Mavi", Code: "P1", Size: "M", Units: 3}}
	require.NoError(t, store.Save(ctx, records))

	loaded, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, records, loaded)
}

func TestSnapshotMissingReadsAsAbsent(t *testing.T) {
	_, client := snapshotClient(t)
	_, ok, err := NewRedisSnapshotStore(client).Load(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSnapshotVersionMismatchReadsAsAbsent(t *testing.T) {
	mr, client := snapshotClient(t)
	ctx := context.Background()

	stale, err := json.Marshal(snapshotEnvelope{
		State:   snapshotState{ProductList: []catalog.Record{{Brand: "old"}}},
		Version: snapshotVersion - 1,
	})
	require.NoError(t, err)
	require.NoError(t, mr.Set(catalogSnapshotKey, string(stale)))

	_, ok, err := NewRedisSnapshotStore(client).Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSnapshotCorruptPayloadReadsAsAbsent(t *testing.T) {
	mr, client := snapshotClient(t)
	require.NoError(t, mr.Set(catalogSnapshotKey, "{not json"))

	_, ok, err := NewRedisSnapshotStore(client).Load(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSnapshotDrop(t *testing.T) {
	_, client := snapshotClient(t)
	store := NewRedisSnapshotStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []catalog.Record{{Brand: "Mavi"}}))
	require.NoError(t, store.Drop(ctx))

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}
