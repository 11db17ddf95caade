package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vitrin-app/vitrin/internal/catalog"
)

func rec(brand, group, color, size string, units int) catalog.Record {
	return catalog.Record{Brand: brand, Group: group, ColorCode: color, Size: size, Units: units}
}

func TestGroupTotalsIsAPartition(t *testing.T) {
	records := []catalog.Record{
		rec("Mavi", "Tişört", "R01", "M", 4),
		rec("Mavi", "Pantolon", "R02", "L", 6),
		rec("Koton", "Tişört", "R01", "S", 1),
		rec("LCW", "Gömlek", "R03", "XL", 0),
	}
	var totalUnits int
	for _, r := range records {
		totalUnits += r.Units
	}
	for _, field := range []GroupField{GroupByBrand, GroupByGroup, GroupByColor, GroupBySize} {
		groups := GroupTotals(records, field)
		var sum int
		for _, g := range groups {
			sum += g.Units
		}
		require.Equal(t, totalUnits, sum, "field %s", field)
	}
}

func TestGroupTotalsOrdering(t *testing.T) {
	records := []catalog.Record{
		rec("Koton", "", "", "", 2),
		rec("Mavi", "", "", "", 10),
		rec("LCW", "", "", "", 2),
	}
	groups := GroupTotals(records, GroupByBrand)
	require.Equal(t, []GroupTotal{{"Mavi", 10}, {"Koton", 2}, {"LCW", 2}}, groups)

	require.Len(t, TopN(groups, 2), 2)
	require.Len(t, TopN(groups, 0), 3)
	require.Len(t, TopN(groups, 10), 3)
}

func TestSortSizesScenario(t *testing.T) {
	sizes := []string{"M", "XXL", "S", "10", "2", "XL"}
	SortSizes(sizes)
	require.Equal(t, []string{"2", "10", "S", "M", "XL", "XXL"}, sizes)
}

func TestSizeLessAliasesXXL(t *testing.T) {
	require.False(t, SizeLess("XXL", "2XL"))
	require.False(t, SizeLess("2XL", "XXL"))
	require.True(t, SizeLess("XL", "2XL"))
	require.True(t, SizeLess("XXL", "3XL"))
}

func TestSizeLessNumericOnlyWhenBothParse(t *testing.T) {
	require.True(t, SizeLess("2", "10"))
	// Cross-type pairs fall through to the lexicographic rule.
	require.True(t, SizeLess("10", "S"))
	require.True(t, SizeLess("2", "M"))
}

func TestCountByStatusEmptyInput(t *testing.T) {
	counts := CountByStatus(nil, 2, 20)
	require.Zero(t, counts.Low)
	require.Zero(t, counts.Out)
	require.Zero(t, counts.High)
	require.Zero(t, counts.LowPct)
	require.Zero(t, counts.OutPct)
	require.Zero(t, counts.HighPct)
}

func TestCountByStatus(t *testing.T) {
	records := []catalog.Record{
		rec("A", "", "", "", 0),
		rec("B", "", "", "", 2),
		rec("C", "", "", "", 25),
		rec("D", "", "", "", 10),
	}
	counts := CountByStatus(records, 2, 20)
	require.Equal(t, 2, counts.Low) // 0 and 2
	require.Equal(t, 1, counts.Out)
	require.Equal(t, 1, counts.High)
	require.InDelta(t, 50.0, counts.LowPct, 0.001)
	require.InDelta(t, 25.0, counts.OutPct, 0.001)
}

func TestSummarize(t *testing.T) {
	records := []catalog.Record{
		rec("Mavi", "", "", "M", 1),
		rec("Mavi", "", "", "L", 5),
		rec("Koton", "", "", "S", 2),
	}
	s := Summarize(records)
	require.Equal(t, 8, s.TotalUnits)
	require.Equal(t, 2, s.UniqueBrands)
	require.Equal(t, 3, s.Records)
	require.Equal(t, 2, s.LowStock)
}

func TestTotalValue(t *testing.T) {
	records := []catalog.Record{rec("A", "", "", "", 3), rec("B", "", "", "", 2)}
	require.InDelta(t, 250.0, TotalValue(records, 50), 0.001)
	require.Zero(t, TotalValue(nil, 50))
}

func TestFoldMatchTurkish(t *testing.T) {
	require.True(t, FoldMatch("TİŞÖRT", "tişört"))
	require.True(t, FoldMatch("Kırmızı", "KIRMIZI"))
	require.True(t, FoldMatch("anything", ""))
	require.False(t, FoldMatch("Gömlek", "pantolon"))
}

// Run with -race: every request with a search term folds, so concurrent
// calls must not share transform state.
func TestFoldMatchConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if !FoldMatch("TİŞÖRT", "tişört") {
					t.Error("fold match lost under concurrency")
					return
				}
				if FoldMatch("Gömlek", "pantolon") {
					t.Error("false match under concurrency")
					return
				}
			}
		}()
	}
	wg.Wait()
}
