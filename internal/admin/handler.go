// Package admin exposes the destructive maintenance surface. Every endpoint
// here requires the admin token; nothing is session based.
package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitrin-app/vitrin/internal/platform/httpx"
	"github.com/vitrin-app/vitrin/internal/shared"
	"github.com/vitrin-app/vitrin/internal/stocksync"
)

// adminTokenHeader carries the shared admin secret on guarded requests.
const adminTokenHeader = "X-Admin-Token"

// ChangePublisher announces inventory mutations.
type ChangePublisher interface {
	PublishChange(ctx context.Context, reason string) error
}

// Handler wires the admin endpoints.
type Handler struct {
	logger    *slog.Logger
	store     *stocksync.Store
	audit     *shared.AuditLogger
	publisher ChangePublisher
	tokenHash string
}

// NewHandler constructs the admin handler. tokenHash is the bcrypt hash the
// presented token must match.
func NewHandler(logger *slog.Logger, store *stocksync.Store, audit *shared.AuditLogger, publisher ChangePublisher, tokenHash string) *Handler {
	return &Handler{
		logger:    logger,
		store:     store,
		audit:     audit,
		publisher: publisher,
		tokenHash: tokenHash,
	}
}

// MountRoutes registers admin routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/clear", h.handleClear)
}

// handleClear wipes the inventory table and the cached list. The ledger is
// left alone; its orphaned entries are harmless and survive re-imports.
func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.authorize(r); err != nil {
		h.logger.Warn("admin clear rejected", slog.Any("error", err), slog.String("remote", r.RemoteAddr))
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "a valid admin token is required")
		return
	}
	if err := h.store.Clear(r.Context()); err != nil {
		h.logger.Error("admin clear", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Clear Failed", "inventory could not be cleared")
		return
	}
	if err := h.audit.Record(r.Context(), shared.AuditLog{
		Actor:  r.RemoteAddr,
		Action: "clear",
		Entity: "inventory",
	}); err != nil {
		h.logger.Warn("audit clear", slog.Any("error", err))
	}
	if h.publisher != nil {
		if err := h.publisher.PublishChange(r.Context(), "clear"); err != nil {
			h.logger.Warn("publish clear notification", slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"cleared": true})
}

func (h *Handler) authorize(r *http.Request) error {
	token := r.Header.Get(adminTokenHeader)
	if token == "" {
		return shared.ErrAdminTokenMissing
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.tokenHash), []byte(token)); err != nil {
		return shared.ErrAdminTokenMismatch
	}
	return nil
}
