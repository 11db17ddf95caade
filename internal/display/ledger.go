// Package display tracks which catalog items are out on display. The ledger
// lives independently of the catalog: entries keyed by identities no longer
// present are tolerated, never purged.
package display

import (
	"context"
	"sync"
	"time"

	"github.com/vitrin-app/vitrin/internal/catalog"
)

// Entry is the recorded status for one product identity.
type Entry struct {
	IsDisplayed bool      `json:"isDisplayed"`
	LastChecked time.Time `json:"lastChecked"`
	Notes       string    `json:"notes,omitempty"`
}

// State is the three-valued answer for an identity. The absence of an entry
// ("unchecked") is distinct from an entry with IsDisplayed=false.
type State string

const (
	StateUnchecked    State = "unchecked"
	StateDisplayed    State = "displayed"
	StateNotDisplayed State = "not-displayed"
)

// SnapshotStore persists the full identity map as one named entry. Writes are
// awaited so persistence failures surface to the caller.
type SnapshotStore interface {
	Save(ctx context.Context, entries map[string]Entry) error
	Load(ctx context.Context) (map[string]Entry, error)
}

// Ledger is the process-wide display-status record. One instance per process;
// all access goes through its mutex.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]Entry
	store   SnapshotStore
	now     func() time.Time
}

// NewLedger constructs an empty ledger backed by the given snapshot store.
// A nil store keeps the ledger purely in memory.
func NewLedger(store SnapshotStore) *Ledger {
	return &Ledger{
		entries: make(map[string]Entry),
		store:   store,
		now:     time.Now,
	}
}

// Restore loads the persisted snapshot, replacing the in-memory map.
func (l *Ledger) Restore(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	entries, err := l.store.Load(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if entries == nil {
		entries = make(map[string]Entry)
	}
	l.entries = entries
	return nil
}

// StateOf resolves the three-state answer for an identity.
func (l *Ledger) StateOf(identity string) State {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[identity]
	if !ok {
		return StateUnchecked
	}
	if entry.IsDisplayed {
		return StateDisplayed
	}
	return StateNotDisplayed
}

// Entries returns a copy of the full identity map.
func (l *Ledger) Entries() map[string]Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.copyEntries()
}

// Get returns the entry for an identity, if any.
func (l *Ledger) Get(identity string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[identity]
	return entry, ok
}

// SetStatus upserts an entry with LastChecked set to now. A prior note is
// preserved when no new note is supplied.
func (l *Ledger) SetStatus(ctx context.Context, identity string, displayed bool, note string) error {
	l.mu.Lock()
	entry := Entry{IsDisplayed: displayed, LastChecked: l.now().UTC(), Notes: note}
	if note == "" {
		entry.Notes = l.entries[identity].Notes
	}
	l.entries[identity] = entry
	snapshot := l.copyEntries()
	l.mu.Unlock()
	return l.persist(ctx, snapshot)
}

// BulkSetStatus applies one displayed flag to many identities in a single
// persisted write. Existing notes are kept.
func (l *Ledger) BulkSetStatus(ctx context.Context, identities []string, displayed bool) error {
	l.mu.Lock()
	now := l.now().UTC()
	for _, id := range identities {
		l.entries[id] = Entry{
			IsDisplayed: displayed,
			LastChecked: now,
			Notes:       l.entries[id].Notes,
		}
	}
	snapshot := l.copyEntries()
	l.mu.Unlock()
	return l.persist(ctx, snapshot)
}

// BulkSetNote overwrites the note on many identities unconditionally in one
// persisted write. The displayed flag is kept (false for fresh entries).
func (l *Ledger) BulkSetNote(ctx context.Context, identities []string, note string) error {
	l.mu.Lock()
	now := l.now().UTC()
	for _, id := range identities {
		l.entries[id] = Entry{
			IsDisplayed: l.entries[id].IsDisplayed,
			LastChecked: now,
			Notes:       note,
		}
	}
	snapshot := l.copyEntries()
	l.mu.Unlock()
	return l.persist(ctx, snapshot)
}

// Stats summarises the ledger against the current catalog.
type Stats struct {
	Total          int `json:"total"`
	Displayed      int `json:"displayed"`
	NotDisplayed   int `json:"notDisplayed"`
	Unchecked      int `json:"unchecked"`
	CompletionRate int `json:"completionRate"`
}

// Snapshot of progress over the given records. Orphaned ledger entries do not
// count: only identities present in the catalog contribute.
func (l *Ledger) Stats(records []catalog.Record) Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := Stats{Total: len(records)}
	for _, rec := range records {
		entry, ok := l.entries[rec.Identity()]
		if !ok {
			continue
		}
		if entry.IsDisplayed {
			s.Displayed++
		} else {
			s.NotDisplayed++
		}
	}
	s.Unchecked = s.Total - s.Displayed - s.NotDisplayed
	if s.Total > 0 {
		s.CompletionRate = int(float64(s.Displayed+s.NotDisplayed) / float64(s.Total) * 100)
	}
	return s
}

func (l *Ledger) copyEntries() map[string]Entry {
	snapshot := make(map[string]Entry, len(l.entries))
	for k, v := range l.entries {
		snapshot[k] = v
	}
	return snapshot
}

func (l *Ledger) persist(ctx context.Context, snapshot map[string]Entry) error {
	if l.store == nil {
		return nil
	}
	return l.store.Save(ctx, snapshot)
}
