package services

import (
	"context"
	"math/rand/v2"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mejd2001/ai-analyzer/internal/models"
)

// SummaryStats is what an insight generator gets to work with.
type SummaryStats struct {
	KPIs models.KPIs
}

// TextInsightGenerator turns summary figures into short recommendations.
type TextInsightGenerator interface {
	Generate(ctx context.Context, stats SummaryStats) ([]string, error)
}

var growthTips = []string{
	"Growth hack: try bundling your top-selling product with a slow-moving item to clear stock.",
	"Ad tip: your data suggests a high conversion rate among men. Create a 'For Him' ad set.",
	"Hot trend: revenue is trending upwards. Consider a 'Thank You' discount code for returning customers.",
}

// TemplateInsights fills fixed sentences with the KPIs.
type TemplateInsights struct {
	Currency string
	// Pick chooses one of n growth tips. Defaults to a random choice.
	Pick func(n int) int
}

func NewTemplateInsights(currency string) *TemplateInsights {
	return &TemplateInsights{Currency: currency, Pick: rand.IntN}
}

func (g *TemplateInsights) Generate(ctx context.Context, stats SummaryStats) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := stats.KPIs
	pr := message.NewPrinter(language.English)
	title := cases.Title(language.Und)

	aov := 0.0
	if k.TotalOrders > 0 {
		aov = k.TotalRevenue / float64(k.TotalOrders)
	}

	pick := g.Pick
	if pick == nil {
		pick = rand.IntN
	}

	return []string{
		pr.Sprintf("Financial overview: total revenue stands at %s %.0f from %d orders. The average order value is %s %.0f.",
			g.Currency, k.TotalRevenue, k.TotalOrders, g.Currency, aov),
		pr.Sprintf("Top performer: %s is your #1 revenue driver. Keep inventory levels high for this item.",
			title.String(k.MostProfitableProduct)),
		pr.Sprintf("Category leader: the %s category is generating the bulk of your sales. Focus your next ad campaign here.",
			title.String(k.TopCategory)),
		pr.Sprintf("Peak performance: sales peak on %ss. Schedule your marketing emails to go out on this day.",
			title.String(k.BestDay)),
		growthTips[pick(len(growthTips))],
	}, nil
}
