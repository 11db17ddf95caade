// Package stocksync keeps the in-memory product catalog consistent with the
// remote inventory store and owns the loading/error state the dashboard
// renders from.
package stocksync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vitrin-app/vitrin/internal/catalog"
)

// ErrNoData marks a fetch that succeeded but returned zero rows. The
// dashboard distinguishes "confirmed empty" from "never loaded", so this is
// an error state, not a silent empty catalog.
var ErrNoData = errors.New("stocksync: remote store holds no inventory rows")

// Source is the remote inventory service capability the store consumes.
type Source interface {
	ListPage(ctx context.Context, offset, limit int) ([]catalog.Record, error)
	DeleteAll(ctx context.Context) error
}

// SnapshotStore persists the catalog for warm starts.
type SnapshotStore interface {
	Save(ctx context.Context, records []catalog.Record) error
	Load(ctx context.Context) ([]catalog.Record, bool, error)
	Drop(ctx context.Context) error
}

// State is a point-in-time copy of the store's observable state.
type State struct {
	Records       []catalog.Record
	Loading       bool
	Err           string
	LastRefreshed time.Time
}

// Config groups the store's tunables.
type Config struct {
	// PageSize bounds one bulk-read page. Default 1000.
	PageSize int
	// MaxPages aborts a runaway pagination loop. Default 100.
	MaxPages int
	// RefreshTimeout caps one whole refresh. Default 60s.
	RefreshTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = 1000
	}
	if c.MaxPages <= 0 {
		c.MaxPages = 100
	}
	if c.RefreshTimeout <= 0 {
		c.RefreshTimeout = 60 * time.Second
	}
	return c
}

// Store is the process-wide synchronization state. Construct with NewStore;
// one instance per process.
type Store struct {
	source   Source
	snapshot SnapshotStore
	logger   *slog.Logger
	cfg      Config

	mu    sync.Mutex
	state State
	group singleflight.Group
}

// NewStore constructs an empty store.
func NewStore(source Source, snapshot SnapshotStore, logger *slog.Logger, cfg Config) *Store {
	return &Store{
		source:   source,
		snapshot: snapshot,
		logger:   logger,
		cfg:      cfg.withDefaults(),
	}
}

// Current returns a copy of the observable state. The records slice is shared
// read-only: the store never mutates a published slice, it replaces it.
func (s *Store) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Records returns the current canonical list.
func (s *Store) Records() []catalog.Record {
	return s.Current().Records
}

// Replace overwrites the canonical list synchronously and clears any error.
// Records are expected to be normalized already.
func (s *Store) Replace(records []catalog.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Records = records
	s.state.Err = ""
	s.state.Loading = false
	s.state.LastRefreshed = time.Now().UTC()
}

// Refresh replaces the canonical list from the remote store. Pages are read
// strictly in order and accumulated; the list is swapped in one assignment
// only after the loop completes, so readers never observe a partial page set.
// Concurrent calls share a single flight, closing the lost-update race
// between a user-triggered refresh and a change-notification one.
func (s *Store) Refresh(ctx context.Context) error {
	_, err, _ := s.group.Do("refresh", func() (any, error) {
		return nil, s.refresh(ctx)
	})
	return err
}

func (s *Store) refresh(ctx context.Context) error {
	s.setLoading(true)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RefreshTimeout)
	defer cancel()

	all, err := s.fetchAll(ctx)
	if err != nil {
		s.fail(err)
		return err
	}
	if len(all) == 0 {
		// The fetch worked: the catalog really is empty. Publish the empty
		// list but keep the explicit no-data error state alongside it.
		s.mu.Lock()
		s.state.Records = []catalog.Record{}
		s.state.Err = ErrNoData.Error()
		s.state.Loading = false
		s.state.LastRefreshed = time.Now().UTC()
		s.mu.Unlock()
		return ErrNoData
	}

	s.Replace(all)
	s.persistSnapshot(ctx, all)
	return nil
}

func (s *Store) fetchAll(ctx context.Context) ([]catalog.Record, error) {
	var all []catalog.Record
	for page := 0; page < s.cfg.MaxPages; page++ {
		rows, err := s.source.ListPage(ctx, page*s.cfg.PageSize, s.cfg.PageSize)
		if err != nil {
			return nil, fmt.Errorf("stocksync: fetch page %d: %w", page, err)
		}
		all = append(all, rows...)
		if len(rows) < s.cfg.PageSize {
			return all, nil
		}
	}
	return nil, fmt.Errorf("stocksync: aborted after %d pages, remote keeps returning full pages", s.cfg.MaxPages)
}

// Clear deletes all rows from the remote store, then empties the canonical
// list and drops the warm-start snapshot. Loading always resets on exit,
// success or failure.
func (s *Store) Clear(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.source.DeleteAll(ctx); err != nil {
		s.fail(fmt.Errorf("stocksync: delete all: %w", err))
		return err
	}

	s.mu.Lock()
	s.state.Records = nil
	s.state.Err = ""
	s.mu.Unlock()

	if s.snapshot != nil {
		if err := s.snapshot.Drop(ctx); err != nil {
			err = fmt.Errorf("stocksync: drop snapshot: %w", err)
			s.fail(err)
			return err
		}
	}
	return nil
}

// WarmStart seeds the catalog from the persisted snapshot when one exists.
// Absent or stale-versioned snapshots are a no-op.
func (s *Store) WarmStart(ctx context.Context) error {
	if s.snapshot == nil {
		return nil
	}
	records, ok, err := s.snapshot.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	s.Replace(records)
	return nil
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = loading
	if loading {
		s.state.Err = ""
	}
}

// fail records the failure message and leaves the canonical list untouched.
func (s *Store) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	s.state.Err = err.Error()
}

func (s *Store) persistSnapshot(ctx context.Context, records []catalog.Record) {
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot.Save(ctx, records); err != nil && s.logger != nil {
		s.logger.Warn("persist catalog snapshot", slog.Any("error", err))
	}
}
