// Package packs finds products bought together and prices them as bundles.
package packs

import (
	"slices"
	"strings"

	"github.com/mejd2001/ai-analyzer/internal/models"
)

// BasketKey returns the columns that identify one order. A column naming an
// explicit order identifier is used alone; otherwise the key is Date followed
// by the first column matching each proxy, in priority order.
func BasketKey(columns []string) []string {
	for _, col := range columns {
		lower := strings.ToLower(col)
		for _, tok := range models.OrderIDTokens {
			if strings.Contains(lower, tok) {
				return []string{col}
			}
		}
	}

	key := []string{models.ColDate}
	for _, proxy := range models.ProxyColumns {
		p := strings.ToLower(proxy)
		i := slices.IndexFunc(columns, func(c string) bool {
			return strings.Contains(strings.ToLower(c), p)
		})
		if i >= 0 && !slices.Contains(key, columns[i]) {
			key = append(key, columns[i])
		}
	}
	return key
}

// Basket is the distinct products of one order, sorted.
type Basket struct {
	Key      []string
	Products []string
}

// sortableDate is fixed width so that key tuples order chronologically.
const sortableDate = "2006-01-02T15:04:05.000000000"

// Baskets groups the table by key. Baskets come back ordered by key.
func Baskets(t *models.Table, key []string) []Basket {
	if t.Empty() {
		return nil
	}

	index := make(map[string]int)
	var out []Basket
	var sets []map[string]struct{}

	for _, tx := range t.Transactions {
		parts := make([]string, len(key))
		for i, col := range key {
			if col == models.ColDate {
				parts[i] = tx.Date.UTC().Format(sortableDate)
				continue
			}
			parts[i] = tx.Value(col)
		}
		id := strings.Join(parts, "\x1f")

		n, ok := index[id]
		if !ok {
			n = len(out)
			index[id] = n
			out = append(out, Basket{Key: parts})
			sets = append(sets, make(map[string]struct{}))
		}
		sets[n][tx.Product] = struct{}{}
	}

	for i := range out {
		for p := range sets[i] {
			out[i].Products = append(out[i].Products, p)
		}
		slices.Sort(out[i].Products)
	}
	slices.SortStableFunc(out, func(a, b Basket) int {
		return slices.Compare(a.Key, b.Key)
	})
	return out
}
