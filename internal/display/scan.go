package display

import (
	"context"
	"sync"
	"time"

	"github.com/vitrin-app/vitrin/internal/catalog"
)

// scanClearDelay is how long the "last scanned" confirmation stays visible.
const scanClearDelay = 2 * time.Second

// ScanResult describes a successful barcode lookup.
type ScanResult struct {
	Identity string         `json:"identity"`
	Record   catalog.Record `json:"record"`
	At       time.Time      `json:"at"`
}

// Scanner runs the barcode workflow: match a scanned token against the
// catalog, mark the hit displayed, and expose a transient confirmation that
// self-clears after a fixed delay.
type Scanner struct {
	ledger *Ledger
	delay  time.Duration

	mu    sync.Mutex
	last  *ScanResult
	timer *time.Timer
}

// NewScanner constructs a Scanner over the ledger.
func NewScanner(ledger *Ledger) *Scanner {
	return &Scanner{ledger: ledger, delay: scanClearDelay}
}

// Scan matches token against barcode or product code over the given records.
// The first match is marked displayed with LastChecked=now; no match is a
// silent no-op reported through the returned bool.
func (s *Scanner) Scan(ctx context.Context, records []catalog.Record, token string) (ScanResult, bool, error) {
	if token == "" {
		return ScanResult{}, false, nil
	}
	for _, rec := range records {
		if rec.Barcode != token && rec.Code != token {
			continue
		}
		identity := rec.Identity()
		if err := s.ledger.SetStatus(ctx, identity, true, ""); err != nil {
			return ScanResult{}, false, err
		}
		result := ScanResult{Identity: identity, Record: rec, At: time.Now().UTC()}
		s.remember(result)
		return result, true, nil
	}
	return ScanResult{}, false, nil
}

// LastScanned returns the transient confirmation while it is still visible.
func (s *Scanner) LastScanned() (ScanResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return ScanResult{}, false
	}
	return *s.last, true
}

// Stop cancels the pending clear timer. Call on teardown.
func (s *Scanner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.last = nil
}

func (s *Scanner) remember(result ScanResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := &result
	s.last = stored
	if s.timer != nil {
		s.timer.Stop()
	}
	// A previous timer may already have fired and be waiting on the mutex;
	// Stop cannot recall it. The closure only clears its own result, so a
	// stale firing cannot wipe a newer confirmation.
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.last == stored {
			s.last = nil
		}
	})
}
