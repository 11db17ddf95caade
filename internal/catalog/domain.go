package catalog

import (
	"errors"
	"strings"
	"time"
)

// Record is the canonical unit of inventory. The column set is fixed: the
// importer drops any extra spreadsheet columns rather than carrying them
// through the pipeline.
type Record struct {
	ID        int64     `json:"id,omitempty"`
	Code      string    `json:"code"`
	Group     string    `json:"group"`
	Brand     string    `json:"brand"`
	Size      string    `json:"size"`
	Units     int       `json:"units"`
	Barcode   string    `json:"barcode"`
	ColorCode string    `json:"colorCode"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// identitySep joins the identity fields. It must stay stable: ledger entries
// persisted under old keys would otherwise orphan on upgrade.
const identitySep = "|"

// Identity derives the composite key used by the display ledger. Order is
// fixed (brand, code, color, size); two records equal on these four fields
// share one ledger entry even when other fields differ.
func (r Record) Identity() string {
	return strings.Join([]string{r.Brand, r.Code, r.ColorCode, r.Size}, identitySep)
}

// ImportBatch records one spreadsheet upload.
type ImportBatch struct {
	ID        string
	Code      string
	FileName  string
	RowCount  int
	CreatedAt time.Time
}

// ErrDuplicateBatch indicates an import batch code was already recorded.
var ErrDuplicateBatch = errors.New("catalog: import batch already recorded")
