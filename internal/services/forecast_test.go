package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mejd2001/ai-analyzer/internal/models"
)

func TestHolt_Forecast(t *testing.T) {
	h := DefaultHolt()

	flat, err := h.Forecast(context.Background(), []float64{2, 2, 2, 2}, 3)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	for i, v := range flat {
		if v != 2 {
			t.Errorf("flat[%d] = %v, want 2", i, v)
		}
	}

	linear, err := h.Forecast(context.Background(), []float64{1, 2, 3, 4}, 3)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	for i, want := range []float64{5, 6, 7} {
		if linear[i] != want {
			t.Errorf("linear[%d] = %v, want %v", i, linear[i], want)
		}
	}
}

func TestHolt_Errors(t *testing.T) {
	if _, err := DefaultHolt().Forecast(context.Background(), []float64{1}, 3); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("short series error = %v, want ErrInsufficientHistory", err)
	}
	if _, err := (Holt{Alpha: 0, Beta: 0.1}).Forecast(context.Background(), []float64{1, 2}, 3); err == nil {
		t.Error("zero alpha should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := DefaultHolt().Forecast(ctx, []float64{1, 2}, 3); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled error = %v", err)
	}
}

func forecastTable() *models.Table {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var txs []models.Transaction
	for d := range 10 {
		gender, age := models.GenderFemale, "35-44"
		if d < 7 {
			gender = models.GenderMale
		}
		if d < 5 {
			age = "25-34"
		}
		txs = append(txs, models.Transaction{
			Date: start.AddDate(0, 0, d), Product: "Tea", Quantity: 2, Price: 10,
			CustomerGender: gender, AgeGroup: age,
		})
	}
	// Three days of history only.
	for d := range 3 {
		txs = append(txs, models.Transaction{
			Date: start.AddDate(0, 0, d), Product: "Cup", Quantity: 9, Price: 4,
			CustomerGender: models.GenderUnknown, AgeGroup: "Unknown",
		})
	}
	return &models.Table{Transactions: txs}
}

func TestPredictTopProducts(t *testing.T) {
	p := NewPredictor(nil, DefaultPredictOptions(), nil)

	got, err := p.PredictTopProducts(context.Background(), forecastTable())
	if err != nil {
		t.Fatalf("PredictTopProducts() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d forecasts, want 1: %+v", len(got), got)
	}

	want := models.ProductForecast{
		Product:        "Tea",
		PredictedUnits: 60,
		MalePct:        70,
		FemalePct:      30,
		TopAgeGroup:    "25-34",
		TopAgePct:      50,
	}
	if got[0] != want {
		t.Errorf("forecast = %+v, want %+v", got[0], want)
	}
}

func TestPredictTopProducts_KeepsBest(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var txs []models.Transaction
	for i, product := range []string{"A", "B", "C"} {
		for d := range 7 {
			txs = append(txs, models.Transaction{Date: start.AddDate(0, 0, d), Product: product, Quantity: i + 1})
		}
	}
	opts := DefaultPredictOptions()
	opts.Keep = 2

	got, err := NewPredictor(nil, opts, nil).PredictTopProducts(context.Background(), &models.Table{Transactions: txs})
	if err != nil {
		t.Fatalf("PredictTopProducts() error = %v", err)
	}
	if len(got) != 2 || got[0].Product != "C" || got[1].Product != "B" {
		t.Errorf("unexpected forecasts: %+v", got)
	}
}

type failingForecaster struct{}

func (failingForecaster) Forecast(context.Context, []float64, int) ([]float64, error) {
	return nil, errors.New("fit diverged")
}

func TestPredictTopProducts_ForecasterFailure(t *testing.T) {
	p := NewPredictor(failingForecaster{}, DefaultPredictOptions(), nil)

	got, err := p.PredictTopProducts(context.Background(), forecastTable())
	if err != nil {
		t.Fatalf("PredictTopProducts() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("failed fits should be skipped, got %+v", got)
	}
}

func TestPredictTopProducts_Empty(t *testing.T) {
	got, err := NewPredictor(nil, DefaultPredictOptions(), nil).PredictTopProducts(context.Background(), &models.Table{})
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("PredictTopProducts(empty) = %v, %v", got, err)
	}
}

func TestDailyUnits_FillsGaps(t *testing.T) {
	d := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	series, days := dailyUnits([]models.Transaction{
		{Date: d, Quantity: 1},
		{Date: d.Add(2 * time.Hour), Quantity: 2},
		{Date: d.AddDate(0, 0, 3), Quantity: 4},
	})
	want := []float64{3, 0, 0, 4}
	if days != 2 {
		t.Errorf("days = %d, want 2", days)
	}
	if len(series) != len(want) {
		t.Fatalf("series = %v, want %v", series, want)
	}
	for i := range want {
		if series[i] != want[i] {
			t.Errorf("series[%d] = %v, want %v", i, series[i], want[i])
		}
	}
}

func TestRecommendPrices(t *testing.T) {
	table := &models.Table{Transactions: []models.Transaction{
		{Product: "Tea", Price: 10},
		{Product: "Tea", Price: 20},
		{Product: "Cup", Price: 3},
	}}
	got := RecommendPrices(table, []models.ProductForecast{{Product: "Tea"}, {Product: "Gone"}})

	if len(got) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(got))
	}
	want := models.PriceRecommendation{Product: "Tea", CurrentAvgPrice: 15, RecommendedPrice: 17.25}
	if got[0] != want {
		t.Errorf("recommendation = %+v, want %+v", got[0], want)
	}
	if r := RecommendPrices(&models.Table{}, nil); r == nil || len(r) != 0 {
		t.Errorf("empty table should give an empty list, got %v", r)
	}
}
