package packs

import (
	"fmt"
	"math"
	"slices"

	"github.com/mejd2001/ai-analyzer/internal/models"
)

const (
	// DefaultMinTransactions is how often a pair must co-occur to be offered.
	DefaultMinTransactions = 5
	// TopPairs caps how many pairs are considered before the minimum filter.
	TopPairs = 10
	// Discount is taken off the combined unit prices.
	Discount = 0.10
)

type pair struct{ a, b string }

// Suggest returns up to TopPairs bundles of products that share a basket at
// least minTransactions times. The result is empty, never nil, when nothing
// qualifies.
func Suggest(t *models.Table, minTransactions int) []models.PackCandidate {
	out := []models.PackCandidate{}
	if t.Empty() {
		return out
	}

	var order []pair
	counts := make(map[pair]int)
	for _, b := range Baskets(t, BasketKey(t.Columns())) {
		if len(b.Products) < 2 {
			continue
		}
		for i := 0; i < len(b.Products); i++ {
			for j := i + 1; j < len(b.Products); j++ {
				p := pair{b.Products[i], b.Products[j]}
				if _, seen := counts[p]; !seen {
					order = append(order, p)
				}
				counts[p]++
			}
		}
	}
	if len(order) == 0 {
		return out
	}

	slices.SortStableFunc(order, func(x, y pair) int {
		return counts[y] - counts[x]
	})
	if len(order) > TopPairs {
		order = order[:TopPairs]
	}

	prices := meanPrices(t)
	for _, p := range order {
		n := counts[p]
		if n < minTransactions {
			continue
		}
		total := prices[p.a] + prices[p.b]
		packPrice := total * (1 - Discount)
		out = append(out, models.PackCandidate{
			PackName:            fmt.Sprintf("%s + %s Bundle", p.a, p.b),
			ItemA:               p.a,
			ItemB:               p.b,
			TimesBoughtTogether: n,
			TotalValue:          round2(total),
			PackPrice:           round2(packPrice),
			Savings:             round2(total - packPrice),
		})
	}
	return out
}

// meanPrices is the mean unit price per product over the whole table.
func meanPrices(t *models.Table) map[string]float64 {
	type acc struct {
		sum float64
		n   int
	}
	accs := make(map[string]*acc)
	for _, tx := range t.Transactions {
		a, ok := accs[tx.Product]
		if !ok {
			a = &acc{}
			accs[tx.Product] = a
		}
		a.sum += tx.Price
		a.n++
	}
	out := make(map[string]float64, len(accs))
	for p, a := range accs {
		out[p] = a.sum / float64(a.n)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
