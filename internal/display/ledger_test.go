package display

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vitrin-app/vitrin/internal/catalog"
)

func TestThreeStateLaw(t *testing.T) {
	ledger := NewLedger(nil)
	ctx := context.Background()
	id := "Mavi|P100|R01|M"

	require.Equal(t, StateUnchecked, ledger.StateOf(id))

	require.NoError(t, ledger.SetStatus(ctx, id, true, ""))
	require.Equal(t, StateDisplayed, ledger.StateOf(id))

	require.NoError(t, ledger.SetStatus(ctx, id, false, ""))
	require.Equal(t, StateNotDisplayed, ledger.StateOf(id))
}

func TestSetStatusPreservesNoteWhenEmpty(t *testing.T) {
	ledger := NewLedger(nil)
	ctx := context.Background()
	id := "a|b|c|d"

	require.NoError(t, ledger.SetStatus(ctx, id, true, "vitrine taşındı"))
	require.NoError(t, ledger.SetStatus(ctx, id, false, ""))

	entry, ok := ledger.Get(id)
	require.True(t, ok)
	require.Equal(t, "vitrine taşındı", entry.Notes)
	require.False(t, entry.IsDisplayed)
}

func TestSetStatusStampsLastChecked(t *testing.T) {
	ledger := NewLedger(nil)
	fixed := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time { return fixed }

	require.NoError(t, ledger.SetStatus(context.Background(), "x", true, ""))
	entry, _ := ledger.Get("x")
	require.Equal(t, fixed, entry.LastChecked)
}

func TestBulkSetStatusKeepsNotes(t *testing.T) {
	ledger := NewLedger(nil)
	ctx := context.Background()

	require.NoError(t, ledger.SetStatus(ctx, "one", false, "depoda"))
	require.NoError(t, ledger.BulkSetStatus(ctx, []string{"one", "two"}, true))

	one, _ := ledger.Get("one")
	require.True(t, one.IsDisplayed)
	require.Equal(t, "depoda", one.Notes)

	two, _ := ledger.Get("two")
	require.True(t, two.IsDisplayed)
	require.Empty(t, two.Notes)
}

func TestBulkSetNoteOverwrites(t *testing.T) {
	ledger := NewLedger(nil)
	ctx := context.Background()

	require.NoError(t, ledger.SetStatus(ctx, "one", true, "eski not"))
	require.NoError(t, ledger.BulkSetNote(ctx, []string{"one", "two"}, "sayım yapıldı"))

	one, _ := ledger.Get("one")
	require.True(t, one.IsDisplayed)
	require.Equal(t, "sayım yapıldı", one.Notes)

	// Fresh entry created by a note alone reads as checked-not-displayed.
	require.Equal(t, StateNotDisplayed, ledger.StateOf("two"))
}

func TestStatsCountsAndCompletion(t *testing.T) {
	ledger := NewLedger(nil)
	ctx := context.Background()

	records := []catalog.Record{
		{Brand: "Mavi", Code: "P1", ColorCode: "R1", Size: "M"},
		{Brand: "Mavi", Code: "P2", ColorCode: "R1", Size: "L"},
		{Brand: "Koton", Code: "P3", ColorCode: "R2", Size: "S"},
		{Brand: "LCW", Code: "P4", ColorCode: "R9", Size: "XL"},
	}
	require.NoError(t, ledger.SetStatus(ctx, records[0].Identity(), true, ""))
	require.NoError(t, ledger.SetStatus(ctx, records[1].Identity(), false, ""))
	// Orphaned entry for an identity outside the catalog is ignored.
	require.NoError(t, ledger.SetStatus(ctx, "gone|gone|gone|gone", true, ""))

	s := ledger.Stats(records)
	require.Equal(t, 4, s.Total)
	require.Equal(t, 1, s.Displayed)
	require.Equal(t, 1, s.NotDisplayed)
	require.Equal(t, 2, s.Unchecked)
	require.Equal(t, 50, s.CompletionRate)

	require.Equal(t, Stats{}, ledger.Stats(nil))
}

func TestLedgerPersistsThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisSnapshotStore(client)
	ctx := context.Background()

	ledger := NewLedger(store)
	require.NoError(t, ledger.SetStatus(ctx, "a|b|c|d", true, "raf 3"))

	restored := NewLedger(store)
	require.NoError(t, restored.Restore(ctx))
	entry, ok := restored.Get("a|b|c|d")
	require.True(t, ok)
	require.True(t, entry.IsDisplayed)
	require.Equal(t, "raf 3", entry.Notes)
}

func TestLedgerSurfacesPersistFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ledger := NewLedger(NewRedisSnapshotStore(client))
	mr.Close()

	err := ledger.SetStatus(context.Background(), "x", true, "")
	require.Error(t, err)
}
