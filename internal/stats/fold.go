package stats

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FoldMatch reports whether haystack contains needle under Turkish case
// folding. Plain ASCII lowering would split İ/i and I/ı into the wrong
// pairs, so matching folds through the Turkish caser. An empty needle
// matches everything.
//
// The caser is built per call: cases.Caser carries internal transform state
// and is not safe for concurrent use, and FoldMatch runs on concurrent
// request paths.
func FoldMatch(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	lower := cases.Lower(language.Turkish)
	return strings.Contains(lower.String(haystack), lower.String(needle))
}
