package services

import (
	"math"
	"testing"
	"time"

	"github.com/mejd2001/ai-analyzer/internal/models"
)

func sampleTable() *models.Table {
	d := func(y int, m time.Month, day int) time.Time {
		return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	}
	return &models.Table{Transactions: []models.Transaction{
		// 2024-01-01 is a Monday.
		{Date: d(2024, 1, 1), Product: "Laptop", Category: "Electronics", Quantity: 1, Price: 1000, Revenue: 1000},
		{Date: d(2024, 1, 1), Product: "Mouse", Category: "Electronics", Quantity: 2, Price: 25, Revenue: 50},
		{Date: d(2024, 1, 2), Product: "Shirt", Category: "Clothing", Quantity: 3, Price: 20, Revenue: 60},
		{Date: d(2024, 2, 6), Product: "Mouse", Category: "Electronics", Quantity: 1, Price: 35, Revenue: 35},
		{Date: d(2025, 1, 6), Product: "Shirt", Category: "Clothing", Quantity: 1, Price: 20, Revenue: 20},
	}}
}

func TestComputeKPIs(t *testing.T) {
	k := ComputeKPIs(sampleTable())

	if k.TotalRevenue != 1165 {
		t.Errorf("TotalRevenue = %v, want 1165", k.TotalRevenue)
	}
	if k.TotalOrders != 5 {
		t.Errorf("TotalOrders = %d, want 5", k.TotalOrders)
	}
	if k.AverageOrderValue != 233 {
		t.Errorf("AverageOrderValue = %v, want 233", k.AverageOrderValue)
	}
	if k.MostProfitableProduct != "Laptop" {
		t.Errorf("MostProfitableProduct = %q, want Laptop", k.MostProfitableProduct)
	}
	if k.TopCategory != "Electronics" {
		t.Errorf("TopCategory = %q, want Electronics", k.TopCategory)
	}
	if k.BestDay != "Monday" {
		t.Errorf("BestDay = %q, want Monday", k.BestDay)
	}
}

func TestComputeKPIs_Empty(t *testing.T) {
	k := ComputeKPIs(&models.Table{})
	if k.TotalOrders != 0 || k.AverageOrderValue != 0 {
		t.Errorf("unexpected totals for empty table: %+v", k)
	}
	if k.MostProfitableProduct != "Unknown" || k.TopCategory != "Unknown" || k.BestDay != "Unknown" {
		t.Errorf("empty table should report Unknown, got %+v", k)
	}
}

func TestYearOverYear(t *testing.T) {
	got := YearOverYear(sampleTable())
	want := []models.MonthlyRevenue{
		{Year: 2024, Month: "January", MonthNo: 1, Revenue: 1110},
		{Year: 2024, Month: "February", MonthNo: 2, Revenue: 35},
		{Year: 2025, Month: "January", MonthNo: 1, Revenue: 20},
	}
	if len(got) != len(want) {
		t.Fatalf("YearOverYear() returned %d months, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("month %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPareto(t *testing.T) {
	got := Pareto(sampleTable())
	if len(got) != 3 {
		t.Fatalf("Pareto() returned %d products, want 3", len(got))
	}
	if got[0].Product != "Laptop" || got[1].Product != "Mouse" || got[2].Product != "Shirt" {
		t.Errorf("unexpected order: %+v", got)
	}
	if math.Abs(got[2].CumulativePct-100) > 1e-9 {
		t.Errorf("last cumulative pct = %v, want 100", got[2].CumulativePct)
	}
	if want := 100 * 1000 / 1165.0; math.Abs(got[0].CumulativePct-want) > 1e-9 {
		t.Errorf("first cumulative pct = %v, want %v", got[0].CumulativePct, want)
	}
}

func TestPareto_TopTwenty(t *testing.T) {
	table := &models.Table{}
	for i := range 25 {
		table.Transactions = append(table.Transactions, models.Transaction{
			Product: string(rune('A' + i)),
			Revenue: float64(i + 1),
		})
	}
	got := Pareto(table)
	if len(got) != 20 {
		t.Fatalf("Pareto() returned %d products, want 20", len(got))
	}
	if got[0].Product != "Y" {
		t.Errorf("top product = %q, want Y", got[0].Product)
	}
	if got[19].CumulativePct >= 100 {
		t.Errorf("cumulative pct is computed over all products, got %v", got[19].CumulativePct)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	got := CategoryBreakdown(sampleTable())
	want := []models.CategoryRevenue{
		{Category: "Clothing", Product: "Shirt", Revenue: 80},
		{Category: "Electronics", Product: "Laptop", Revenue: 1000},
		{Category: "Electronics", Product: "Mouse", Revenue: 85},
	}
	if len(got) != len(want) {
		t.Fatalf("CategoryBreakdown() returned %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPriceVolume(t *testing.T) {
	got := PriceVolume(sampleTable())
	if len(got) != 3 {
		t.Fatalf("PriceVolume() returned %d products, want 3", len(got))
	}
	mouse := got[1]
	if mouse.Product != "Mouse" || mouse.Quantity != 3 || mouse.Revenue != 85 || mouse.AvgPrice != 30 {
		t.Errorf("unexpected mouse point: %+v", mouse)
	}
	if mouse.Category != "Electronics" {
		t.Errorf("Category = %q, want Electronics", mouse.Category)
	}
}
