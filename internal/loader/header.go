package loader

import "strings"

// DefaultMaxScan is how many leading rows FindHeaderRow inspects.
const DefaultMaxScan = 20

// FindHeaderRow returns the index of the row among the first maxScan rows
// with the most cells containing a keyword. Ties keep the earliest row, and
// row 0 wins when nothing matches.
func FindHeaderRow(rows [][]string, kt KeywordTable, maxScan int) int {
	if maxScan <= 0 {
		maxScan = DefaultMaxScan
	}
	vocab := kt.Vocabulary()

	best, bestMatches := 0, 0
	for i := 0; i < min(maxScan, len(rows)); i++ {
		matches := 0
		for _, cell := range rows[i] {
			if containsAny(Normalize(cell), vocab) {
				matches++
			}
		}
		if matches > bestMatches {
			best, bestMatches = i, matches
		}
	}
	return best
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
