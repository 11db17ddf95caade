package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitrin-app/vitrin/internal/platform/db"
)

// Repository persists inventory rows in PostgreSQL. It is the process-local
// face of the remote inventory service: paginated bulk read, bulk insert and
// delete-all, in insertion (id) order.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const uniqueViolation = "23505"

// ListPage returns one page of inventory rows ordered by id ascending.
func (r *Repository) ListPage(ctx context.Context, offset, limit int) ([]Record, error) {
	const query = `
		SELECT id, code, product_group, brand, size, units, barcode, color_code, created_at
		FROM inventory_items
		ORDER BY id ASC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Code, &rec.Group, &rec.Brand, &rec.Size, &rec.Units, &rec.Barcode, &rec.ColorCode, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count reports the total number of inventory rows.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_items`).Scan(&total)
	return total, err
}

// ImportAll appends normalized records with COPY and records the batch
// header, atomically: a failed batch insert rolls the rows back too.
func (r *Repository) ImportAll(ctx context.Context, records []Record, batch ImportBatch) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"inventory_items"},
			[]string{"code", "product_group", "brand", "size", "units", "barcode", "color_code", "created_at"},
			pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
				rec := records[i]
				return []any{rec.Code, rec.Group, rec.Brand, rec.Size, rec.Units, rec.Barcode, rec.ColorCode, now}, nil
			}),
		)
		if err != nil {
			return err
		}
		return insertBatch(ctx, tx, batch)
	})
}

// DeleteAll removes every inventory row.
func (r *Repository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM inventory_items`)
	return err
}

func insertBatch(ctx context.Context, tx pgx.Tx, batch ImportBatch) error {
	const query = `
		INSERT INTO import_batches (id, code, file_name, row_count, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, batch.ID, batch.Code, batch.FileName, batch.RowCount, batch.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateBatch
		}
		return err
	}
	return nil
}
