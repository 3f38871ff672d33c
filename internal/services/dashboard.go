package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mejd2001/ai-analyzer/internal/models"
)

// Dashboard is everything the overview page shows for one dataset.
type Dashboard struct {
	Dataset     *Dataset                     `json:"dataset"`
	KPIs        models.KPIs                  `json:"kpis"`
	Monthly     []models.MonthlyRevenue      `json:"monthly"`
	Pareto      []models.ParetoEntry         `json:"pareto"`
	Categories  []models.CategoryRevenue     `json:"categories"`
	PriceVolume []models.ProductPoint        `json:"price_volume"`
	Packs       []models.PackCandidate       `json:"packs"`
	Forecast    []models.ProductForecast     `json:"forecast"`
	Prices      []models.PriceRecommendation `json:"prices"`
	Insights    []string                     `json:"insights"`
	Ads         []models.AdSuggestion        `json:"ad_targeting"`
}

// Dashboard computes every panel concurrently.
func (w *Workspace) Dashboard(ctx context.Context, id string) (*Dashboard, error) {
	ds, err := w.Dataset(id)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{Dataset: ds}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.KPIs, err = w.KPIs(id)
		if err != nil {
			return err
		}
		d.Insights, err = w.Insights(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		d.Monthly, err = w.Monthly(id)
		return err
	})
	g.Go(func() (err error) {
		d.Pareto, err = w.Pareto(id)
		return err
	})
	g.Go(func() (err error) {
		d.Categories, err = w.Categories(id)
		return err
	})
	g.Go(func() (err error) {
		d.PriceVolume, err = w.PriceVolume(id)
		return err
	})
	g.Go(func() (err error) {
		d.Packs, err = w.Packs(id, 0)
		return err
	})
	g.Go(func() (err error) {
		if d.Forecast, err = w.Forecast(gctx, id); err != nil {
			return err
		}
		if d.Prices, err = w.Prices(gctx, id); err != nil {
			return err
		}
		d.Ads, err = w.AdTargeting(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
