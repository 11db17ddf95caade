package importer

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitrin-app/vitrin/internal/catalog"
	"github.com/vitrin-app/vitrin/internal/platform/httpx"
)

// Handler accepts workbook uploads over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	maxBytes int64
}

// NewHandler constructs the import handler. maxBytes caps the request body.
func NewHandler(logger *slog.Logger, service *Service, maxBytes int64) *Handler {
	return &Handler{logger: logger, service: service, maxBytes: maxBytes}
}

// MountRoutes registers the import route on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/import", h.handleImport)
}

// handleImport reads the uploaded workbook from the "file" multipart field,
// replaces the stored inventory with its rows and announces the change.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.Problem(w, http.StatusRequestEntityTooLarge, "Upload Too Large", "workbook exceeds the upload limit")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Invalid Upload", "request body is not valid multipart form data")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Upload", "multipart field 'file' is required")
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.service.ImportWorkbook(r.Context(), file, header.Filename)
	switch {
	case errors.Is(err, ErrEmptyWorkbook):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Empty Workbook", err.Error())
	case errors.Is(err, catalog.ErrDuplicateBatch):
		httpx.Problem(w, http.StatusConflict, "Duplicate Batch", "this workbook batch was already imported")
	case err != nil:
		h.logger.Error("import workbook", slog.Any("error", err), slog.String("file", header.Filename))
		httpx.Problem(w, http.StatusInternalServerError, "Import Failed", "workbook could not be imported")
	default:
		httpx.JSON(w, http.StatusCreated, result)
	}
}
