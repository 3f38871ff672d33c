package services

import (
	"cmp"
	"slices"
	"time"

	"github.com/mejd2001/ai-analyzer/internal/models"
)

const (
	unknown     = "Unknown"
	paretoLimit = 20
)

// ComputeKPIs returns the headline figures of a table.
func ComputeKPIs(t *models.Table) models.KPIs {
	k := models.KPIs{
		TotalOrders:           t.Len(),
		MostProfitableProduct: unknown,
		TopCategory:           unknown,
		BestDay:               unknown,
	}
	if t.Empty() {
		return k
	}

	products := make(map[string]float64)
	categories := make(map[string]float64)
	weekdays := make(map[string]float64)
	for _, tx := range t.Transactions {
		k.TotalRevenue += tx.Revenue
		products[tx.Product] += tx.Revenue
		categories[tx.Category] += tx.Revenue
		weekdays[tx.Date.Weekday().String()] += tx.Revenue
	}
	k.AverageOrderValue = k.TotalRevenue / float64(k.TotalOrders)
	k.MostProfitableProduct = largest(products)
	k.TopCategory = largest(categories)
	k.BestDay = largest(weekdays)
	return k
}

// largest returns the key with the highest total; ties go to the smallest key.
func largest(groups map[string]float64) string {
	best, bestRevenue, found := "", 0.0, false
	for k, v := range groups {
		if !found || v > bestRevenue || (v == bestRevenue && k < best) {
			best, bestRevenue, found = k, v, true
		}
	}
	if !found {
		return unknown
	}
	return best
}

// YearOverYear sums revenue per calendar month, ordered by year then month.
func YearOverYear(t *models.Table) []models.MonthlyRevenue {
	type ym struct {
		year  int
		month time.Month
	}
	groups := make(map[ym]float64)
	for _, tx := range t.Transactions {
		groups[ym{tx.Date.Year(), tx.Date.Month()}] += tx.Revenue
	}

	result := make([]models.MonthlyRevenue, 0, len(groups))
	for k, rev := range groups {
		result = append(result, models.MonthlyRevenue{
			Year:    k.year,
			Month:   k.month.String(),
			MonthNo: int(k.month),
			Revenue: rev,
		})
	}
	slices.SortFunc(result, func(a, b models.MonthlyRevenue) int {
		return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(a.MonthNo, b.MonthNo))
	})
	return result
}

// Pareto ranks products by revenue and returns the top ones with their
// cumulative share of total revenue, in percent.
func Pareto(t *models.Table) []models.ParetoEntry {
	groups := make(map[string]float64)
	total := 0.0
	for _, tx := range t.Transactions {
		groups[tx.Product] += tx.Revenue
		total += tx.Revenue
	}

	result := make([]models.ParetoEntry, 0, len(groups))
	for p, rev := range groups {
		result = append(result, models.ParetoEntry{Product: p, Revenue: rev})
	}
	slices.SortFunc(result, func(a, b models.ParetoEntry) int {
		return cmp.Or(cmp.Compare(b.Revenue, a.Revenue), cmp.Compare(a.Product, b.Product))
	})

	running := 0.0
	for i := range result {
		running += result[i].Revenue
		if total != 0 {
			result[i].CumulativePct = 100 * running / total
		}
	}
	if len(result) > paretoLimit {
		result = result[:paretoLimit]
	}
	return result
}

// CategoryBreakdown sums revenue per category and product.
func CategoryBreakdown(t *models.Table) []models.CategoryRevenue {
	groups := make(map[[2]string]*models.CategoryRevenue)
	for _, tx := range t.Transactions {
		key := [2]string{tx.Category, tx.Product}
		if groups[key] == nil {
			groups[key] = &models.CategoryRevenue{Category: tx.Category, Product: tx.Product}
		}
		groups[key].Revenue += tx.Revenue
	}

	result := make([]models.CategoryRevenue, 0, len(groups))
	for _, cr := range groups {
		result = append(result, *cr)
	}
	slices.SortFunc(result, func(a, b models.CategoryRevenue) int {
		return cmp.Or(cmp.Compare(a.Category, b.Category), cmp.Compare(a.Product, b.Product))
	})
	return result
}

// PriceVolume summarises each product: revenue and units sold, mean unit
// price and the category of its first row.
func PriceVolume(t *models.Table) []models.ProductPoint {
	type acc struct {
		point    models.ProductPoint
		priceSum float64
		rows     int
	}
	groups := make(map[string]*acc)
	for _, tx := range t.Transactions {
		a := groups[tx.Product]
		if a == nil {
			a = &acc{point: models.ProductPoint{Product: tx.Product, Category: tx.Category}}
			groups[tx.Product] = a
		}
		a.point.Revenue += tx.Revenue
		a.point.Quantity += tx.Quantity
		a.priceSum += tx.Price
		a.rows++
	}

	result := make([]models.ProductPoint, 0, len(groups))
	for _, a := range groups {
		a.point.AvgPrice = a.priceSum / float64(a.rows)
		result = append(result, a.point)
	}
	slices.SortFunc(result, func(a, b models.ProductPoint) int {
		return cmp.Compare(a.Product, b.Product)
	})
	return result
}
