package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vitrin-app/vitrin/internal/catalog"
	"github.com/vitrin-app/vitrin/internal/stocksync"
)

// RepositoryPort abstracts the remote inventory writes the importer needs.
type RepositoryPort interface {
	ImportAll(ctx context.Context, records []catalog.Record, batch catalog.ImportBatch) error
}

// ChangePublisher notifies subscribers after the remote store changed.
type ChangePublisher interface {
	PublishChange(ctx context.Context, reason string) error
}

// Service pipes workbook rows through the normalizer into the remote store
// and replaces the canonical list.
type Service struct {
	repo      RepositoryPort
	store     *stocksync.Store
	publisher ChangePublisher
	logger    *slog.Logger
}

// NewService constructs Service.
func NewService(repo RepositoryPort, store *stocksync.Store, publisher ChangePublisher, logger *slog.Logger) *Service {
	return &Service{repo: repo, store: store, publisher: publisher, logger: logger}
}

// Result summarises one import.
type Result struct {
	BatchID string `json:"batchId"`
	Rows    int    `json:"rows"`
}

// ImportWorkbook parses, normalizes and inserts the workbook's first sheet,
// then replaces the canonical list wholesale and publishes a change event.
func (s *Service) ImportWorkbook(ctx context.Context, r io.Reader, fileName string) (Result, error) {
	raw, err := ParseWorkbook(r)
	if err != nil {
		return Result{}, err
	}
	records := catalog.NormalizeAll(raw)

	batch := catalog.ImportBatch{
		ID:        uuid.NewString(),
		Code:      fmt.Sprintf("IMP-%d", time.Now().UTC().UnixNano()),
		FileName:  fileName,
		RowCount:  len(records),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.ImportAll(ctx, records, batch); err != nil {
		return Result{}, fmt.Errorf("importer: insert rows: %w", err)
	}

	s.store.Replace(records)

	if s.publisher != nil {
		if err := s.publisher.PublishChange(ctx, "import"); err != nil && s.logger != nil {
			s.logger.Warn("publish import change", slog.Any("error", err))
		}
	}
	if s.logger != nil {
		s.logger.Info("workbook imported",
			slog.String("batch_id", batch.ID),
			slog.String("file", fileName),
			slog.Int("rows", batch.RowCount))
	}
	return Result{BatchID: batch.ID, Rows: batch.RowCount}, nil
}
