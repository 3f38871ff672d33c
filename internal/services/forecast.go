package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mejd2001/ai-analyzer/internal/models"
)

// ErrInsufficientHistory is returned by a Forecaster when the series is too
// short to fit.
var ErrInsufficientHistory = errors.New("insufficient history")

// Forecaster projects a regular daily series horizon steps ahead.
type Forecaster interface {
	Forecast(ctx context.Context, series []float64, horizon int) ([]float64, error)
}

// Holt is double exponential smoothing with an additive trend.
type Holt struct {
	Alpha float64
	Beta  float64
}

func DefaultHolt() Holt {
	return Holt{Alpha: 0.5, Beta: 0.1}
}

func (h Holt) Forecast(ctx context.Context, series []float64, horizon int) ([]float64, error) {
	if len(series) < 2 {
		return nil, ErrInsufficientHistory
	}
	if h.Alpha <= 0 || h.Alpha > 1 || h.Beta <= 0 || h.Beta > 1 {
		return nil, fmt.Errorf("holt: smoothing factors must be in (0,1], got alpha=%v beta=%v", h.Alpha, h.Beta)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	level, trend := series[0], series[1]-series[0]
	for _, y := range series[1:] {
		prev := level
		level = h.Alpha*y + (1-h.Alpha)*(level+trend)
		trend = h.Beta*(level-prev) + (1-h.Beta)*trend
	}

	out := make([]float64, horizon)
	for i := range out {
		out[i] = level + float64(i+1)*trend
	}
	return out, nil
}

type PredictOptions struct {
	TopProducts int
	MinHistory  int
	Horizon     int
	Keep        int
	Workers     int
}

func DefaultPredictOptions() PredictOptions {
	return PredictOptions{TopProducts: 20, MinHistory: 7, Horizon: 30, Keep: 5, Workers: 4}
}

// Predictor forecasts unit demand for the best-selling products.
type Predictor struct {
	forecaster Forecaster
	opts       PredictOptions
	logger     *slog.Logger
}

func NewPredictor(f Forecaster, opts PredictOptions, logger *slog.Logger) *Predictor {
	if f == nil {
		f = DefaultHolt()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Predictor{forecaster: f, opts: opts, logger: logger}
}

// PredictTopProducts fits the top products by units sold and returns the
// ones with the highest predicted demand. Products with too few days of
// history, or whose fit fails, are skipped. An empty result means there was
// not enough data.
func (p *Predictor) PredictTopProducts(ctx context.Context, t *models.Table) ([]models.ProductForecast, error) {
	out := []models.ProductForecast{}
	if t.Empty() {
		return out, nil
	}

	byProduct := make(map[string][]models.Transaction)
	units := make(map[string]int)
	for _, tx := range t.Transactions {
		byProduct[tx.Product] = append(byProduct[tx.Product], tx)
		units[tx.Product] += tx.Quantity
	}
	top := make([]string, 0, len(units))
	for name := range units {
		top = append(top, name)
	}
	slices.SortFunc(top, func(a, b string) int {
		return cmp.Or(cmp.Compare(units[b], units[a]), cmp.Compare(a, b))
	})
	if len(top) > p.opts.TopProducts {
		top = top[:p.opts.TopProducts]
	}

	results := make([]*models.ProductForecast, len(top))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.opts.Workers, 1))
	for i, product := range top {
		g.Go(func() error {
			rows := byProduct[product]
			series, days := dailyUnits(rows)
			if days < p.opts.MinHistory {
				return nil
			}
			yhat, err := p.forecaster.Forecast(gctx, series, p.opts.Horizon)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				p.logger.Warn("forecast failed", "product", product, "error", err)
				return nil
			}

			total := 0.0
			for _, v := range yhat {
				total += max(v, 0)
			}
			fc := demographics(rows)
			fc.Product = product
			fc.PredictedUnits = int(total)
			results[i] = &fc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	slices.SortStableFunc(out, func(a, b models.ProductForecast) int {
		return cmp.Compare(b.PredictedUnits, a.PredictedUnits)
	})
	if len(out) > p.opts.Keep {
		out = out[:p.opts.Keep]
	}
	return out, nil
}

// dailyUnits sums units per calendar day and fills the gaps between the
// first and last day with zeros. It also reports how many days had sales.
func dailyUnits(rows []models.Transaction) ([]float64, int) {
	perDay := make(map[time.Time]float64)
	first, last := time.Time{}, time.Time{}
	for _, tx := range rows {
		d := time.Date(tx.Date.Year(), tx.Date.Month(), tx.Date.Day(), 0, 0, 0, 0, time.UTC)
		perDay[d] += float64(tx.Quantity)
		if first.IsZero() || d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	if len(perDay) == 0 {
		return nil, 0
	}

	var series []float64
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		series = append(series, perDay[d])
	}
	return series, len(perDay)
}

func demographics(rows []models.Transaction) models.ProductForecast {
	fc := models.ProductForecast{MalePct: 50, FemalePct: 50, TopAgeGroup: unknown}
	if len(rows) == 0 {
		return fc
	}

	male := 0
	var ages []string
	ageCounts := make(map[string]int)
	for _, tx := range rows {
		if g := strings.ToLower(tx.CustomerGender); g == "male" || g == "m" {
			male++
		}
		if ageCounts[tx.AgeGroup] == 0 {
			ages = append(ages, tx.AgeGroup)
		}
		ageCounts[tx.AgeGroup]++
	}

	total := float64(len(rows))
	malePct := float64(male) / total * 100
	fc.MalePct = round(malePct, 1)
	fc.FemalePct = round(100-malePct, 1)

	best := 0
	for _, a := range ages {
		if ageCounts[a] > best {
			fc.TopAgeGroup, best = a, ageCounts[a]
		}
	}
	fc.TopAgePct = round(float64(best)/total*100, 1)
	return fc
}

// PriceMarkup is applied to the current mean price of high-demand products.
const PriceMarkup = 1.15

// RecommendPrices suggests a raised price for each forecast product.
func RecommendPrices(t *models.Table, forecasts []models.ProductForecast) []models.PriceRecommendation {
	out := []models.PriceRecommendation{}
	if t.Empty() {
		return out
	}
	for _, fc := range forecasts {
		sum, n := 0.0, 0
		for _, tx := range t.Transactions {
			if tx.Product == fc.Product {
				sum += tx.Price
				n++
			}
		}
		if n == 0 {
			continue
		}
		avg := sum / float64(n)
		out = append(out, models.PriceRecommendation{
			Product:          fc.Product,
			CurrentAvgPrice:  round(avg, 2),
			RecommendedPrice: round(avg*PriceMarkup, 2),
		})
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
