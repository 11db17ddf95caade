package stats

import (
	"github.com/vitrin-app/vitrin/internal/catalog"
)

// StatusCounts buckets records by stock level against the given thresholds.
// Percentages are over the record count and are 0 for an empty input, never
// NaN.
type StatusCounts struct {
	Low      int     `json:"low"`
	LowPct   float64 `json:"lowPct"`
	Out      int     `json:"out"`
	OutPct   float64 `json:"outPct"`
	High     int     `json:"high"`
	HighPct  float64 `json:"highPct"`
	Total    int     `json:"total"`
	LowAt    int     `json:"lowThreshold"`
	HighOver int     `json:"highThreshold"`
}

// CountByStatus computes low (units <= low), out (units == 0) and high
// (units > high) counts. Observed dashboard thresholds are low 2 or 5 and
// high 5 or 20, so both arrive from the caller.
func CountByStatus(records []catalog.Record, low, high int) StatusCounts {
	counts := StatusCounts{Total: len(records), LowAt: low, HighOver: high}
	for _, rec := range records {
		if rec.Units == 0 {
			counts.Out++
		}
		if rec.Units <= low {
			counts.Low++
		}
		if rec.Units > high {
			counts.High++
		}
	}
	if counts.Total > 0 {
		counts.LowPct = pct(counts.Low, counts.Total)
		counts.OutPct = pct(counts.Out, counts.Total)
		counts.HighPct = pct(counts.High, counts.Total)
	}
	return counts
}

// Summary carries the dashboard headline numbers.
type Summary struct {
	TotalUnits   int `json:"totalUnits"`
	UniqueBrands int `json:"uniqueBrands"`
	Records      int `json:"records"`
	LowStock     int `json:"lowStock"`
}

// lowStockThreshold matches the front page's "critical level" card.
const lowStockThreshold = 2

// Summarize computes the headline numbers over the full catalog.
func Summarize(records []catalog.Record) Summary {
	brands := make(map[string]struct{})
	s := Summary{Records: len(records)}
	for _, rec := range records {
		s.TotalUnits += rec.Units
		brands[rec.Brand] = struct{}{}
		if rec.Units <= lowStockThreshold {
			s.LowStock++
		}
	}
	s.UniqueBrands = len(brands)
	return s
}

// TotalValue estimates stock value as units times a flat unit price. It is a
// placeholder figure: callers wanting real valuation must supply real prices.
func TotalValue(records []catalog.Record, unitPrice float64) float64 {
	var units int
	for _, rec := range records {
		units += rec.Units
	}
	return float64(units) * unitPrice
}

func pct(part, total int) float64 {
	return float64(part) / float64(total) * 100
}
