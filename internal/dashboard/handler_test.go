package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/vitrin-app/vitrin/internal/catalog"
	"github.com/vitrin-app/vitrin/internal/display"
	"github.com/vitrin-app/vitrin/internal/stocksync"
)

type emptySource struct{}

func (emptySource) ListPage(ctx context.Context, offset, limit int) ([]catalog.Record, error) {
	return nil, nil
}

func (emptySource) DeleteAll(ctx context.Context) error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRecords() []catalog.Record {
	return []catalog.Record{
		{Code: "PNT-1001", Group: "Pantolon", Brand: "Mavi", Size: "M", Units: 12, Barcode: "8680001001", ColorCode: "LACIVERT"},
		{Code: "PNT-1001", Group: "Pantolon", Brand: "Mavi", Size: "L", Units: 4, Barcode: "8680001002", ColorCode: "LACIVERT"},
		{Code: "TSH-2040", Group: "Tişört", Brand: "Koton", Size: "S", Units: 25, Barcode: "8680002040", ColorCode: "BEYAZ"},
		{Code: "ETK-3310", Group: "Etek", Brand: "LCW", Size: "38", Units: 0, Barcode: "8680003310", ColorCode: "SIYAH"},
	}
}

func newTestHandler(t *testing.T, records []catalog.Record) (*Handler, *stocksync.Store, *display.Ledger) {
	t.Helper()
	store := stocksync.NewStore(emptySource{}, nil, testLogger(), stocksync.Config{})
	store.Replace(records)
	ledger := display.NewLedger(nil)
	h := NewHandler(testLogger(), store, ledger, Thresholds{Low: 2, High: 20, UnitPrice: 50})
	return h, store, ledger
}

func serve(h *Handler, r *http.Request) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	h.MountRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	return rec
}

func TestStockListingFiltersAndPaginates(t *testing.T) {
	h, _, _ := newTestHandler(t, testRecords())

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/stock?column=brand&q=mavi", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp stockResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 2)
	for _, row := range resp.Rows {
		require.Equal(t, "Mavi", row.Brand)
	}
	require.Equal(t, 2, resp.Pagination.Total)
	require.False(t, resp.Loading)
}

func TestStockListingTurkishFold(t *testing.T) {
	h, _, _ := newTestHandler(t, testRecords())

	// Dotted capital İ must match the lowercase i in "Tişört".
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/stock?column=group&q=T%C4%B0%C5%9E%C3%96RT", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp stockResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 1)
	require.Equal(t, "TSH-2040", resp.Rows[0].Code)
}

func TestStockListingDisplayStateFilter(t *testing.T) {
	records := testRecords()
	h, _, ledger := newTestHandler(t, records)
	require.NoError(t, ledger.SetStatus(context.Background(), records[0].Identity(), true, ""))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/stock?status=displayed", nil))
	var resp stockResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 1)
	require.Equal(t, display.StateDisplayed, resp.Rows[0].State)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/stock?status=unchecked", nil))
	resp = stockResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 3)
}

func TestGroupsEndpointRejectsUnknownField(t *testing.T) {
	h, _, _ := newTestHandler(t, testRecords())

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/stats/groups?by=warehouse", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGroupsEndpointOrdersByUnits(t *testing.T) {
	h, _, _ := newTestHandler(t, testRecords())

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/stats/groups?by=brand", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var totals []struct {
		Label string `json:"label"`
		Units int    `json:"units"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &totals))
	require.Len(t, totals, 3)
	require.Equal(t, "Koton", totals[0].Label)
	require.Equal(t, 25, totals[0].Units)
	require.Equal(t, "Mavi", totals[1].Label)
	require.Equal(t, 16, totals[1].Units)
}

func TestSizesEndpointOrdersBySize(t *testing.T) {
	h, _, _ := newTestHandler(t, testRecords())

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/stats/sizes", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var totals []struct {
		Label string `json:"label"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &totals))
	labels := make([]string, 0, len(totals))
	for _, total := range totals {
		labels = append(labels, total.Label)
	}
	require.Equal(t, []string{"38", "S", "M", "L"}, labels)
}

func TestRefreshWithEmptyTableReturnsNotFound(t *testing.T) {
	h, store, _ := newTestHandler(t, testRecords())

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/refresh", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Empty(t, store.Records())
}
