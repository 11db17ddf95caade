// Package stats derives display-ready aggregates from the canonical product
// list. Everything here is pure and recomputed on demand; at the catalog's
// bounded scale a full pass is cheaper than maintaining incremental state.
package stats

import (
	"sort"

	"github.com/vitrin-app/vitrin/internal/catalog"
)

// GroupField selects the record field a grouping runs over.
type GroupField string

const (
	GroupByBrand GroupField = "brand"
	GroupByGroup GroupField = "group"
	GroupByColor GroupField = "color"
	GroupBySize  GroupField = "size"
)

// GroupTotal is one (label, summed units) pair.
type GroupTotal struct {
	Label string `json:"label"`
	Units int    `json:"units"`
}

func keyFunc(field GroupField) func(catalog.Record) string {
	switch field {
	case GroupByGroup:
		return func(r catalog.Record) string { return r.Group }
	case GroupByColor:
		return func(r catalog.Record) string { return r.ColorCode }
	case GroupBySize:
		return func(r catalog.Record) string { return r.Size }
	default:
		return func(r catalog.Record) string { return r.Brand }
	}
}

// GroupTotals sums units per label, sorted descending by total. Labels with
// equal totals order lexicographically so output is deterministic.
func GroupTotals(records []catalog.Record, field GroupField) []GroupTotal {
	key := keyFunc(field)
	sums := make(map[string]int)
	for _, rec := range records {
		sums[key(rec)] += rec.Units
	}
	totals := make([]GroupTotal, 0, len(sums))
	for label, units := range sums {
		totals = append(totals, GroupTotal{Label: label, Units: units})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Units != totals[j].Units {
			return totals[i].Units > totals[j].Units
		}
		return totals[i].Label < totals[j].Label
	})
	return totals
}

// TopN truncates a grouping to its n largest entries. n <= 0 means unbounded.
func TopN(totals []GroupTotal, n int) []GroupTotal {
	if n <= 0 || n >= len(totals) {
		return totals
	}
	return totals[:n]
}
