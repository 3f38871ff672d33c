package adsource

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mejd2001/ai-analyzer/internal/models"
)

// ErrNoData is returned when the platform answers with zero rows.
var ErrNoData = errors.New("no ad insights found")

// Source loads ad insights and falls back to demo data on any failure.
type Source struct {
	client Client
	days   int
	now    func() time.Time
	rng    *rand.Rand
	logger *slog.Logger
}

// NewSource builds a Source. A nil client always yields demo data.
func NewSource(client Client, days int, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		client: client,
		days:   days,
		now:    time.Now,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: logger,
	}
}

// Load returns the account's insights as transactions. The second result
// reports whether the table is demo data.
func (s *Source) Load(ctx context.Context, accountID string) (*models.Table, bool, error) {
	now := s.now()
	if s.client != nil && strings.TrimSpace(accountID) != "" {
		t, err := s.fetch(ctx, accountID, now)
		if err == nil {
			return t, false, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		s.logger.Warn("ad insights unavailable, using demo data",
			"account", NormalizeAccountID(accountID),
			"error", err,
		)
	}
	return GenerateDemo(s.days, now, s.rng), true, nil
}

func (s *Source) fetch(ctx context.Context, accountID string, now time.Time) (*models.Table, error) {
	rows, err := s.client.Insights(ctx, Query{
		AccountID: accountID,
		Since:     now.AddDate(0, 0, -s.days),
		Until:     now,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return ToTable(rows)
}

// ToTable maps insights onto transactions: ad name is the product, campaign
// the category, spend the revenue and link clicks the quantity.
func ToTable(rows []Insight) (*models.Table, error) {
	txs := make([]models.Transaction, 0, len(rows))
	for i, r := range rows {
		date, err := time.Parse(time.DateOnly, strings.TrimSpace(r.DateStart))
		if err != nil {
			return nil, fmt.Errorf("row %d: date_start %q: %w", i, r.DateStart, err)
		}
		tx := models.Transaction{
			Date:           date,
			Product:        cmp.Or(strings.TrimSpace(r.AdName), "Unknown"),
			Category:       cmp.Or(strings.TrimSpace(r.CampaignName), "General"),
			Revenue:        parseNumber(r.Spend),
			Quantity:       int(parseNumber(r.Clicks)),
			CustomerGender: models.GenderUnknown,
			AgeGroup:       "Unknown",
		}
		tx.Price = tx.Revenue / float64(max(tx.Quantity, 1))
		txs = append(txs, tx)
	}
	slices.SortStableFunc(txs, func(a, b models.Transaction) int {
		return a.Date.Compare(b.Date)
	})
	return &models.Table{Transactions: txs}, nil
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

var (
	demoProducts   = []string{"Summer Dress", "Leather Jacket", "Running Shoes", "Smart Watch", "Denim Jeans"}
	demoCategories = []string{"Clothing", "Clothing", "Footwear", "Electronics", "Clothing"}
	demoAgeGroups  = []string{"18-24", "25-34", "35-44", "45+"}
	demoAgeWeights = []float64{0.2, 0.5, 0.2, 0.1}
)

const demoMaleShare = 0.4

// GenerateDemo simulates days of orders ending on end's date.
func GenerateDemo(days int, end time.Time, rng *rand.Rand) *models.Table {
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var txs []models.Transaction
	for d := days - 1; d >= 0; d-- {
		date := last.AddDate(0, 0, -d)
		orders := 5 + rng.IntN(10)
		for range orders {
			i := rng.IntN(len(demoProducts))
			qty := 1 + rng.IntN(2)
			price := 50 + rng.Float64()*150

			gender := models.GenderFemale
			if rng.Float64() < demoMaleShare {
				gender = models.GenderMale
			}
			txs = append(txs, models.Transaction{
				Date:           date,
				Product:        demoProducts[i],
				Category:       demoCategories[i],
				Quantity:       qty,
				Price:          round2(price),
				Revenue:        round2(price * float64(qty)),
				CustomerGender: gender,
				AgeGroup:       weighted(rng, demoAgeGroups, demoAgeWeights),
			})
		}
	}
	return &models.Table{Transactions: txs}
}

func weighted(rng *rand.Rand, values []string, weights []float64) string {
	r := rng.Float64()
	for i, w := range weights {
		if r < w {
			return values[i]
		}
		r -= w
	}
	return values[len(values)-1]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
