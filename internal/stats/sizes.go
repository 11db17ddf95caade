package stats

import (
	"sort"
	"strconv"
	"strings"
)

// alphaRank orders the known alpha sizes. "XXL" and "2XL" are the same size
// written two ways and deliberately share a rank.
var alphaRank = map[string]int{
	"XS":  1,
	"S":   2,
	"M":   3,
	"L":   4,
	"XL":  5,
	"XXL": 6,
	"2XL": 6,
	"3XL": 7,
	"4XL": 8,
}

// SizeLess is the three-tier size comparator. When both labels parse as
// integers they compare numerically; when both sit in the alpha rank table
// they compare by rank; every other pair, cross-type pairs included, falls
// through to plain lexicographic order. Numeric labels end up before alpha
// ones because digits sort before letters.
func SizeLess(a, b string) bool {
	an, aNum := parseSizeNumber(a)
	bn, bNum := parseSizeNumber(b)
	if aNum && bNum {
		return an < bn
	}
	ar, aOK := alphaRank[strings.ToUpper(strings.TrimSpace(a))]
	br, bOK := alphaRank[strings.ToUpper(strings.TrimSpace(b))]
	if aOK && bOK {
		return ar < br
	}
	return a < b
}

// SortSizes orders size labels in place with SizeLess.
func SortSizes(sizes []string) {
	sort.SliceStable(sizes, func(i, j int) bool { return SizeLess(sizes[i], sizes[j]) })
}

func parseSizeNumber(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
