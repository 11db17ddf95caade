package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLog records a destructive or data-changing action. There is no user
// system; Actor carries whatever identifies the caller (request IP, token
// name, job name).
type AuditLog struct {
	Actor  string
	Action string
	Entity string
	Meta   map[string]any
	At     time.Time
}

// AuditLogger writes records into audit_logs.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" || log.Entity == "" {
		return errors.New("audit log requires action/entity")
	}
	metaJSON, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO audit_logs (actor, action, entity, meta, occurred_at) VALUES ($1, $2, $3, $4, COALESCE(NULLIF($5, '0001-01-01T00:00:00Z'::timestamptz), NOW()))`,
		log.Actor, log.Action, log.Entity, metaJSON, log.At)
	return err
}
