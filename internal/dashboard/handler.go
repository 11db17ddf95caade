// Package dashboard serves the stock listing and aggregate views over the
// synchronization store.
package dashboard

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vitrin-app/vitrin/internal/catalog"
	"github.com/vitrin-app/vitrin/internal/display"
	"github.com/vitrin-app/vitrin/internal/platform/httpx"
	"github.com/vitrin-app/vitrin/internal/shared"
	"github.com/vitrin-app/vitrin/internal/stats"
	"github.com/vitrin-app/vitrin/internal/stocksync"
)

// Thresholds carries the configured stock-level cutoffs and the placeholder
// unit price.
type Thresholds struct {
	Low       int
	High      int
	UnitPrice float64
}

// Handler wires the dashboard endpoints.
type Handler struct {
	logger     *slog.Logger
	store      *stocksync.Store
	ledger     *display.Ledger
	thresholds Thresholds
}

// NewHandler constructs the dashboard handler.
func NewHandler(logger *slog.Logger, store *stocksync.Store, ledger *display.Ledger, thresholds Thresholds) *Handler {
	return &Handler{logger: logger, store: store, ledger: ledger, thresholds: thresholds}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stock", h.handleStock)
	r.Post("/refresh", h.handleRefresh)
	r.Route("/stats", func(r chi.Router) {
		r.Get("/summary", h.handleSummary)
		r.Get("/groups", h.handleGroups)
		r.Get("/status", h.handleStatus)
		r.Get("/sizes", h.handleSizes)
	})
}

type stockRow struct {
	catalog.Record
	Identity    string        `json:"identity"`
	State       display.State `json:"state"`
	LastChecked *time.Time    `json:"lastChecked,omitempty"`
	Notes       string        `json:"notes,omitempty"`
}

type stockResponse struct {
	Rows          []stockRow        `json:"rows"`
	Pagination    shared.Pagination `json:"pagination"`
	Loading       bool              `json:"loading"`
	Error         string            `json:"error,omitempty"`
	LastRefreshed *time.Time        `json:"lastRefreshed,omitempty"`
}

func (h *Handler) handleStock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := h.store.Current()

	filtered := filterRecords(state.Records, q.Get("column"), q.Get("q"))
	filtered = h.filterByDisplayState(filtered, q.Get("status"))
	sortRecords(filtered, q.Get("sort"), q.Get("dir"))

	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("perPage"))
	pagination := shared.NewPagination(page, perPage, len(filtered))
	start, end := pagination.Bounds()

	rows := make([]stockRow, 0, end-start)
	for _, rec := range filtered[start:end] {
		rows = append(rows, h.rowFor(rec))
	}

	resp := stockResponse{
		Rows:       rows,
		Pagination: pagination,
		Loading:    state.Loading,
		Error:      state.Err,
	}
	if !state.LastRefreshed.IsZero() {
		t := state.LastRefreshed
		resp.LastRefreshed = &t
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) rowFor(rec catalog.Record) stockRow {
	identity := rec.Identity()
	row := stockRow{Record: rec, Identity: identity, State: h.ledger.StateOf(identity)}
	if entry, ok := h.ledger.Get(identity); ok {
		t := entry.LastChecked
		row.LastChecked = &t
		row.Notes = entry.Notes
	}
	return row
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	err := h.store.Refresh(r.Context())
	switch {
	case errors.Is(err, stocksync.ErrNoData):
		httpx.Problem(w, http.StatusNotFound, "No Data", err.Error())
	case err != nil:
		h.logger.Error("manual refresh", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Refresh Failed", h.store.Current().Err)
	default:
		httpx.JSON(w, http.StatusOK, map[string]any{"records": len(h.store.Records())})
	}
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	records := h.store.Records()
	httpx.JSON(w, http.StatusOK, map[string]any{
		"summary":    stats.Summarize(records),
		"totalValue": stats.TotalValue(records, h.thresholds.UnitPrice),
		"display":    h.ledger.Stats(records),
	})
}

func (h *Handler) handleGroups(w http.ResponseWriter, r *http.Request) {
	field := stats.GroupField(r.URL.Query().Get("by"))
	switch field {
	case stats.GroupByBrand, stats.GroupByGroup, stats.GroupByColor, stats.GroupBySize:
	case "":
		field = stats.GroupByBrand
	default:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown grouping field")
		return
	}
	top, _ := strconv.Atoi(r.URL.Query().Get("top"))
	totals := stats.TopN(stats.GroupTotals(h.store.Records(), field), top)
	httpx.JSON(w, http.StatusOK, totals)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	low := h.thresholds.Low
	high := h.thresholds.High
	if v, err := strconv.Atoi(r.URL.Query().Get("low")); err == nil && v >= 0 {
		low = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("high")); err == nil && v > 0 {
		high = v
	}
	httpx.JSON(w, http.StatusOK, stats.CountByStatus(h.store.Records(), low, high))
}

// handleSizes returns per-size totals in size order rather than by volume,
// the order the size distribution chart wants.
func (h *Handler) handleSizes(w http.ResponseWriter, r *http.Request) {
	totals := stats.GroupTotals(h.store.Records(), stats.GroupBySize)
	sort.SliceStable(totals, func(i, j int) bool {
		return stats.SizeLess(totals[i].Label, totals[j].Label)
	})
	httpx.JSON(w, http.StatusOK, totals)
}

func (h *Handler) filterByDisplayState(records []catalog.Record, status string) []catalog.Record {
	if status == "" || status == "all" {
		return records
	}
	var want display.State
	switch status {
	case "displayed":
		want = display.StateDisplayed
	case "not-displayed":
		want = display.StateNotDisplayed
	case "unchecked":
		want = display.StateUnchecked
	default:
		return records
	}
	out := make([]catalog.Record, 0, len(records))
	for _, rec := range records {
		if h.ledger.StateOf(rec.Identity()) == want {
			out = append(out, rec)
		}
	}
	return out
}

func fieldOf(rec catalog.Record, column string) string {
	switch column {
	case "code":
		return rec.Code
	case "group":
		return rec.Group
	case "size":
		return rec.Size
	case "units":
		return strconv.Itoa(rec.Units)
	case "barcode":
		return rec.Barcode
	case "color":
		return rec.ColorCode
	default:
		return rec.Brand
	}
}

func filterRecords(records []catalog.Record, column, term string) []catalog.Record {
	if term == "" {
		out := make([]catalog.Record, len(records))
		copy(out, records)
		return out
	}
	out := make([]catalog.Record, 0, len(records))
	for _, rec := range records {
		if stats.FoldMatch(fieldOf(rec, column), term) {
			out = append(out, rec)
		}
	}
	return out
}

func sortRecords(records []catalog.Record, column, dir string) {
	if column == "" {
		return
	}
	desc := dir == "desc"
	if column == "units" {
		sort.SliceStable(records, func(i, j int) bool {
			if desc {
				return records[i].Units > records[j].Units
			}
			return records[i].Units < records[j].Units
		})
		return
	}
	if column == "size" {
		sort.SliceStable(records, func(i, j int) bool {
			if desc {
				return stats.SizeLess(records[j].Size, records[i].Size)
			}
			return stats.SizeLess(records[i].Size, records[j].Size)
		})
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, b := fieldOf(records[i], column), fieldOf(records[j], column)
		if desc {
			return a > b
		}
		return a < b
	})
}
