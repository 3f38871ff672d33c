package loader

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Match scores.
const (
	scoreExact     = 100
	scoreToken     = 80
	scoreSubstring = 50
)

// ColumnMap assigns each resolved field the raw column that supplies it.
// No column is shared between fields.
type ColumnMap map[Field]string

// Has reports whether f was resolved.
func (m ColumnMap) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// Candidate is one scored (field, column) pairing considered by MapColumns.
type Candidate struct {
	Score  int
	Field  Field
	Column string
}

// MapColumns resolves raw column names to fields. All scored candidates are
// ranked by score and assigned greedily; a candidate is skipped when its
// field already has a column or its column already serves another field.
func MapColumns(columns []string, kt KeywordTable) ColumnMap {
	cm := make(ColumnMap)
	used := make(map[string]bool)
	for _, c := range ScoreColumns(columns, kt) {
		if cm.Has(c.Field) || used[c.Column] {
			continue
		}
		cm[c.Field] = c.Column
		used[c.Column] = true
	}
	return cm
}

// ScoreColumns returns every candidate with a positive score, best first.
// Equal scores keep keyword-table order, then column order.
func ScoreColumns(columns []string, kt KeywordTable) []Candidate {
	var out []Candidate
	for _, set := range kt {
		for _, col := range columns {
			norm := Normalize(col)
			if set.Field == FieldProduct && containsAny(norm, productBlacklist) {
				continue
			}
			if score := scoreColumn(norm, set.Keywords); score > 0 {
				out = append(out, Candidate{Score: score, Field: set.Field, Column: col})
			}
		}
	}
	slices.SortStableFunc(out, func(a, b Candidate) int {
		return b.Score - a.Score
	})
	return out
}

// scoreColumn scores norm against keywords in order. The last matching
// keyword decides, so a later weak match can lower an earlier strong one.
func scoreColumn(norm string, keywords []string) int {
	tokens := strings.Split(norm, "_")
	score := 0
	for _, k := range keywords {
		switch {
		case k == norm:
			score = scoreExact
		case slices.Contains(tokens, k):
			score = scoreToken
		case utf8.RuneCountInString(k) > 3 && strings.Contains(norm, k):
			score = scoreSubstring
		}
	}
	return score
}
