package display

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vitrin-app/vitrin/internal/platform/httpx"
	"github.com/vitrin-app/vitrin/internal/stocksync"
)

// Handler wires HTTP endpoints for the display-status workflow.
type Handler struct {
	logger    *slog.Logger
	ledger    *Ledger
	scanner   *Scanner
	store     *stocksync.Store
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, ledger *Ledger, scanner *Scanner, store *stocksync.Store) *Handler {
	return &Handler{
		logger:    logger,
		ledger:    ledger,
		scanner:   scanner,
		store:     store,
		validator: validator.New(),
	}
}

// MountRoutes registers display routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/status", h.handleSetStatus)
	r.Post("/bulk", h.handleBulkStatus)
	r.Post("/note", h.handleBulkNote)
	r.Post("/scan", h.handleScan)
	r.Get("/scan/last", h.handleLastScanned)
	r.Get("/stats", h.handleStats)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.ledger.Entries())
}

type setStatusRequest struct {
	Identity    string `json:"identity" validate:"required"`
	IsDisplayed bool   `json:"isDisplayed"`
	Notes       string `json:"notes" validate:"max=500"`
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.ledger.SetStatus(r.Context(), req.Identity, req.IsDisplayed, req.Notes); err != nil {
		h.logger.Error("set display status", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Persist Failed", "display status could not be saved")
		return
	}
	entry, _ := h.ledger.Get(req.Identity)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"identity": req.Identity,
		"state":    h.ledger.StateOf(req.Identity),
		"entry":    entry,
	})
}

type bulkStatusRequest struct {
	Identities  []string `json:"identities" validate:"required,min=1,dive,required"`
	IsDisplayed bool     `json:"isDisplayed"`
}

func (h *Handler) handleBulkStatus(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.ledger.BulkSetStatus(r.Context(), req.Identities, req.IsDisplayed); err != nil {
		h.logger.Error("bulk display status", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Persist Failed", "display statuses could not be saved")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": len(req.Identities)})
}

type bulkNoteRequest struct {
	Identities []string `json:"identities" validate:"required,min=1,dive,required"`
	Notes      string   `json:"notes" validate:"max=500"`
}

func (h *Handler) handleBulkNote(w http.ResponseWriter, r *http.Request) {
	var req bulkNoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.ledger.BulkSetNote(r.Context(), req.Identities, req.Notes); err != nil {
		h.logger.Error("bulk display note", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Persist Failed", "display notes could not be saved")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": len(req.Identities)})
}

type scanRequest struct {
	Token string `json:"token" validate:"required"`
}

// handleScan marks the first catalog hit for the scanned token as displayed.
// A token that matches nothing returns matched=false rather than an error.
func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, matched, err := h.scanner.Scan(r.Context(), h.store.Records(), req.Token)
	if err != nil {
		h.logger.Error("scan", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Persist Failed", "scan result could not be saved")
		return
	}
	if !matched {
		httpx.JSON(w, http.StatusOK, map[string]any{"matched": false})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"matched": true, "result": result})
}

func (h *Handler) handleLastScanned(w http.ResponseWriter, r *http.Request) {
	result, ok := h.scanner.LastScanned()
	if !ok {
		httpx.JSON(w, http.StatusOK, map[string]any{"visible": false})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"visible": true, "result": result})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.ledger.Stats(h.store.Records()))
}
