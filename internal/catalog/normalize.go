package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Source column labels as they appear in the inventory spreadsheets.
const (
	ColumnCode    = "Ürün Kodu"
	ColumnGroup   = "Ürün Grubu"
	ColumnBrand   = "Marka"
	ColumnSize    = "Beden"
	ColumnUnits   = "Envanter"
	ColumnBarcode = "Barkod"
	ColumnColor   = "Renk Kodu"
)

// Normalize converts a raw row into a canonical Record. It is best-effort and
// never fails: missing or mistyped text fields coerce to "", the unit count
// coerces to a non-negative integer with 0 for anything non-numeric.
func Normalize(row map[string]any) Record {
	return Record{
		Code:      coerceString(row[ColumnCode]),
		Group:     coerceString(row[ColumnGroup]),
		Brand:     coerceString(row[ColumnBrand]),
		Size:      coerceString(row[ColumnSize]),
		Units:     coerceUnits(row[ColumnUnits]),
		Barcode:   coerceString(row[ColumnBarcode]),
		ColorCode: coerceColor(row),
	}
}

// NormalizeAll maps Normalize over a slice of raw rows.
func NormalizeAll(rows []map[string]any) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Normalize(row))
	}
	return records
}

// Some sheets label the color column with an underscore.
func coerceColor(row map[string]any) string {
	if v, ok := row[ColumnColor]; ok {
		return coerceString(v)
	}
	return coerceString(row["Renk_Kodu"])
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		// Spreadsheet cells holding codes often parse as numbers.
		if val == math.Trunc(val) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func coerceUnits(v any) int {
	switch val := v.(type) {
	case nil:
		return 0
	case int:
		return clampUnits(val)
	case int64:
		return clampUnits(int(val))
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0
		}
		return clampUnits(int(val))
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		return clampUnits(int(n))
	default:
		return 0
	}
}

func clampUnits(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
