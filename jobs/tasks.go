// Package jobs contains the background worker: a periodic catalog refetch
// that backstops the pub/sub pipeline when a notification is missed.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogRefresh re-fetches the full inventory from Postgres.
	TaskCatalogRefresh = "catalog:refresh"
)

// CatalogRefreshPayload carries the reason a refresh was scheduled.
type CatalogRefreshPayload struct {
	Reason string `json:"reason"`
}

// NewCatalogRefreshTask constructs an Asynq task.
func NewCatalogRefreshTask(payload CatalogRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogRefresh, data), nil
}

// RefreshTarget is the part of the sync store the worker needs.
type RefreshTarget interface {
	Refresh(ctx context.Context) error
}

// NewCatalogRefreshHandler returns the Asynq handler for TaskCatalogRefresh.
// A refresh that finds no rows is not a task failure; the empty state is
// already recorded on the store.
func NewCatalogRefreshHandler(store RefreshTarget, noData error, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload CatalogRefreshPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if logger != nil {
			logger.Info("scheduled catalog refresh", slog.String("reason", payload.Reason))
		}
		if err := store.Refresh(ctx); err != nil {
			if noData != nil && errors.Is(err, noData) {
				return nil
			}
			return err
		}
		return nil
	}
}
