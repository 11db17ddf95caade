package display

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vitrin-app/vitrin/internal/catalog"
)

func scanCatalog() []catalog.Record {
	return []catalog.Record{
		{Brand: "Mavi", Code: "P100", ColorCode: "R01", Size: "M", Barcode: "123456"},
		{Brand: "Koton", Code: "P200", ColorCode: "R02", Size: "L", Barcode: "654321"},
	}
}

func TestScanMarksMatchDisplayed(t *testing.T) {
	ledger := NewLedger(nil)
	scanner := NewScanner(ledger)
	defer scanner.Stop()
	ctx := context.Background()

	result, ok, err := scanner.Scan(ctx, scanCatalog(), "123456")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Mavi|P100|R01|M", result.Identity)
	require.Equal(t, StateDisplayed, ledger.StateOf(result.Identity))

	_, visible := scanner.LastScanned()
	require.True(t, visible)
}

func TestScanMatchesProductCodeToo(t *testing.T) {
	ledger := NewLedger(nil)
	scanner := NewScanner(ledger)
	defer scanner.Stop()

	_, ok, err := scanner.Scan(context.Background(), scanCatalog(), "P200")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StateDisplayed, ledger.StateOf("Koton|P200|R02|L"))
}

func TestScanUnmatchedIsSilentNoOp(t *testing.T) {
	ledger := NewLedger(nil)
	scanner := NewScanner(ledger)
	defer scanner.Stop()

	_, ok, err := scanner.Scan(context.Background(), scanCatalog(), "999999")
	require.NoError(t, err)
	require.False(t, ok)
	for _, rec := range scanCatalog() {
		require.Equal(t, StateUnchecked, ledger.StateOf(rec.Identity()))
	}
	_, visible := scanner.LastScanned()
	require.False(t, visible)
}

func TestScanConfirmationSelfClears(t *testing.T) {
	ledger := NewLedger(nil)
	scanner := NewScanner(ledger)
	scanner.delay = 20 * time.Millisecond
	defer scanner.Stop()

	_, ok, err := scanner.Scan(context.Background(), scanCatalog(), "123456")
	require.NoError(t, err)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		_, visible := scanner.LastScanned()
		return !visible
	}, time.Second, 5*time.Millisecond)
}

// A clear timer that fired for an earlier scan, and was blocked on the mutex
// when a newer scan landed, must not wipe the newer confirmation.
func TestStaleClearTimerKeepsNewerScan(t *testing.T) {
	ledger := NewLedger(nil)
	scanner := NewScanner(ledger)
	scanner.delay = 20 * time.Millisecond
	defer scanner.Stop()
	records := scanCatalog()

	_, ok, err := scanner.Scan(context.Background(), records, "123456")
	require.NoError(t, err)
	require.True(t, ok)

	// Hold the mutex past the first scan's deadline so its clear timer
	// fires and parks on the lock, then let it race a second scan.
	scanner.mu.Lock()
	time.Sleep(40 * time.Millisecond)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = scanner.Scan(context.Background(), records, "654321")
	}()
	time.Sleep(10 * time.Millisecond)
	scanner.mu.Unlock()
	<-done

	result, visible := scanner.LastScanned()
	require.True(t, visible, "stale timer cleared the newer confirmation")
	require.Equal(t, "Koton|P200|R02|L", result.Identity)
}

func TestScanEmptyToken(t *testing.T) {
	scanner := NewScanner(NewLedger(nil))
	defer scanner.Stop()
	_, ok, err := scanner.Scan(context.Background(), scanCatalog(), "")
	require.NoError(t, err)
	require.False(t, ok)
}
