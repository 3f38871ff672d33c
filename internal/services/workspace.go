package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mejd2001/ai-analyzer/internal/adsource"
	"github.com/mejd2001/ai-analyzer/internal/cache"
	"github.com/mejd2001/ai-analyzer/internal/loader"
	"github.com/mejd2001/ai-analyzer/internal/models"
	"github.com/mejd2001/ai-analyzer/internal/observability"
	"github.com/mejd2001/ai-analyzer/internal/packs"
)

// ErrDatasetNotFound is returned for ids that were never loaded or have been
// evicted.
var ErrDatasetNotFound = errors.New("dataset not found")

const (
	SourceUpload = "upload"
	SourceFile   = "file"
	SourceAds    = "ads"
	SourceDemo   = "demo"
)

// Dataset is a loaded table and how it was inferred.
type Dataset struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Source   string         `json:"source"`
	Hash     string         `json:"-"`
	LoadedAt time.Time      `json:"loaded_at"`
	Rows     int            `json:"rows"`
	Result   *loader.Result `json:"load,omitempty"`
	table    *models.Table
}

func (d *Dataset) Table() *models.Table { return d.table }

// Options configures a Workspace.
type Options struct {
	Loader          loader.Options
	Predict         PredictOptions
	MinTransactions int
	MaxDatasets     int
	MemoEntries     int
	// CacheDir enables the on-disk cache of loaded tables when set.
	CacheDir string
}

// Workspace holds the datasets of a session and memoizes everything derived
// from them.
type Workspace struct {
	mu       sync.RWMutex
	memoKeys map[string][]string

	datasets *cache.Memory[*Dataset]
	memo     *cache.Memory[any]
	files    *cache.FileCache

	loader    *loader.Loader
	predictor *Predictor
	insights  TextInsightGenerator
	targeting AdTargetingService
	ads       *adsource.Source
	metrics   *observability.Metrics
	opts      Options
	logger    *slog.Logger

	loads       atomic.Int64
	rowsLoaded  atomic.Int64
	packQueries atomic.Int64
}

// Deps are the collaborators a Workspace delegates to. Nil fields get
// defaults.
type Deps struct {
	Forecaster Forecaster
	Insights   TextInsightGenerator
	Targeting  AdTargetingService
	Ads        *adsource.Source
	Metrics    *observability.Metrics
	Logger     *slog.Logger
}

func NewWorkspace(opts Options, deps Deps) (*Workspace, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxDatasets <= 0 {
		opts.MaxDatasets = 16
	}
	if opts.MemoEntries <= 0 {
		opts.MemoEntries = 64
	}
	if opts.MinTransactions <= 0 {
		opts.MinTransactions = packs.DefaultMinTransactions
	}
	if opts.Predict == (PredictOptions{}) {
		opts.Predict = DefaultPredictOptions()
	}

	w := &Workspace{
		memoKeys:  make(map[string][]string),
		loader:    loader.New(opts.Loader, logger),
		predictor: NewPredictor(deps.Forecaster, opts.Predict, logger),
		insights:  deps.Insights,
		targeting: deps.Targeting,
		ads:       deps.Ads,
		metrics:   deps.Metrics,
		opts:      opts,
		logger:    logger,
	}

	var err error
	w.datasets, err = cache.NewMemoryWithEvict(opts.MaxDatasets, func(id string, _ *Dataset) {
		w.forget(id)
	})
	if err != nil {
		return nil, fmt.Errorf("dataset store: %w", err)
	}
	w.memo, err = cache.NewMemory[any](opts.MemoEntries)
	if err != nil {
		return nil, fmt.Errorf("result cache: %w", err)
	}
	if opts.CacheDir != "" {
		w.files = cache.NewFileCache(opts.CacheDir)
	}
	if w.insights == nil {
		w.insights = NewTemplateInsights("TND")
	}
	if w.targeting == nil {
		w.targeting = RuleTargeting{Region: "TN"}
	}
	if w.ads == nil {
		w.ads = adsource.NewSource(nil, 90, logger)
	}
	return w, nil
}

// LoadDataset runs the loader over data and adds the result to the
// workspace. Identical bytes are served from the file cache when enabled.
func (w *Workspace) LoadDataset(ctx context.Context, name, source string, data []byte) (*Dataset, error) {
	ctx, span := observability.StartSpan(ctx, "workspace.load")
	defer span.End(w.logger)
	span.SetTag("name", name)

	start := time.Now()
	hash := cache.Key(data, w.opts.Loader.MaxScan)

	res, cached := w.cachedResult(hash)
	if !cached {
		var err error
		res, err = w.loader.Load(ctx, data)
		if err != nil {
			span.SetError(err)
			w.metrics.LoadFailed(failureReason(err))
			return nil, err
		}
		if w.files != nil {
			if err := w.files.Save(hash, res); err != nil {
				w.logger.Warn("failed to save cache", "error", err)
			}
		}
	}
	span.SetTag("cached", fmt.Sprint(cached))

	ds := w.add(name, source, hash, res.Table, res)
	w.metrics.ObserveLoad(source, res.Stats.RowsOut, res.Stats.DroppedStatus, res.Stats.DroppedDate, time.Since(start))
	w.logger.Info("dataset added",
		"id", ds.ID,
		"name", name,
		"rows", ds.Rows,
		"cached", cached,
		"duration", time.Since(start),
	)
	return ds, nil
}

// LoadFile loads a file from disk.
func (w *Workspace) LoadFile(ctx context.Context, path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return w.LoadDataset(ctx, filepath.Base(path), SourceFile, data)
}

// LoadAds pulls the account's ad insights, or demo data when that fails.
func (w *Workspace) LoadAds(ctx context.Context, accountID string) (*Dataset, error) {
	start := time.Now()
	table, demo, err := w.ads.Load(ctx, accountID)
	if err != nil {
		w.metrics.LoadFailed("ads")
		return nil, err
	}

	source, name := SourceAds, adsource.NormalizeAccountID(accountID)
	if demo {
		source, name = SourceDemo, "demo"
	}
	ds := w.add(name, source, uuid.NewString(), table, nil)
	w.metrics.ObserveLoad(source, ds.Rows, 0, 0, time.Since(start))
	return ds, nil
}

func (w *Workspace) cachedResult(hash string) (*loader.Result, bool) {
	if w.files == nil {
		return nil, false
	}
	var res loader.Result
	if err := w.files.Load(hash, &res); err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			w.logger.Warn("failed to read cache", "error", err)
		}
		return nil, false
	}
	if res.Table == nil {
		return nil, false
	}
	return &res, true
}

func (w *Workspace) add(name, source, hash string, table *models.Table, res *loader.Result) *Dataset {
	ds := &Dataset{
		ID:       uuid.NewString(),
		Name:     name,
		Source:   source,
		Hash:     hash,
		LoadedAt: time.Now().UTC(),
		Rows:     table.Len(),
		Result:   res,
		table:    table,
	}
	w.datasets.Add(ds.ID, ds)
	w.loads.Add(1)
	w.rowsLoaded.Add(int64(ds.Rows))
	return ds
}

func (w *Workspace) Dataset(id string) (*Dataset, error) {
	ds, ok := w.datasets.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return ds, nil
}

// Remove drops a dataset and every result memoized for it.
func (w *Workspace) Remove(id string) error {
	if _, err := w.Dataset(id); err != nil {
		return err
	}
	w.datasets.Remove(id)
	return nil
}

// forget runs whenever a dataset leaves the store, removed or evicted.
func (w *Workspace) forget(id string) {
	w.mu.Lock()
	keys := w.memoKeys[id]
	delete(w.memoKeys, id)
	w.mu.Unlock()

	for _, k := range keys {
		w.memo.Remove(k)
	}
	w.logger.Debug("dataset released", "id", id, "memoized", len(keys))
}

// memoize returns the result of compute for (dataset, op, params), computing
// it at most once while cached.
func memoize[T any](w *Workspace, ds *Dataset, op string, params []any, compute func() (T, error)) (T, error) {
	key := cache.Key([]byte(ds.Hash), append([]any{op}, params...)...)
	v, err := w.memo.GetOrCompute(key, func() (any, error) {
		w.mu.Lock()
		if !slices.Contains(w.memoKeys[ds.ID], key) {
			w.memoKeys[ds.ID] = append(w.memoKeys[ds.ID], key)
		}
		w.mu.Unlock()
		return compute()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (w *Workspace) KPIs(id string) (models.KPIs, error) {
	ds, err := w.Dataset(id)
	if err != nil {
		return models.KPIs{}, err
	}
	return memoize(w, ds, "kpis", nil, func() (models.KPIs, error) {
		return ComputeKPIs(ds.table), nil
	})
}

func (w *Workspace) Monthly(id string) ([]models.MonthlyRevenue, error) {
	ds, err := w.Dataset(id)
	if err != nil {
		return nil, err
	}
	return memoize(w, ds, "monthly", nil, func() ([]models.MonthlyRevenue, error) {
		return YearOverYear(ds.table), nil
	})
}

func (w *Workspace) Pareto(id string) ([]models.ParetoEntry, error) {
	ds, err := w.Dataset(id)
	if err != nil {
		return nil, err
	}
	return memoize(w, ds, "pareto", nil, func() ([]models.ParetoEntry, error) {
		return Pareto(ds.table), nil
	})
}

func (w *Workspace) Categories(id string) ([]models.CategoryRevenue, error) {
	ds, err := w.Dataset(id)
	if err != nil {
		return nil, err
	}
	return memoize(w, ds, "categories", nil, func() ([]models.CategoryRevenue, error) {
		return CategoryBreakdown(ds.table), nil
	})
}

func (w *Workspace) PriceVolume(id string) ([]models.ProductPoint, error) {
	ds, err := w.Dataset(id)
	if err != nil {
		return nil, err
	}
	return memoize(w, ds, "price-volume", nil, func() ([]models.ProductPoint, error) {
		return PriceVolume(ds.table), nil
	})
}

// Packs suggests bundles. minTransactions <= 0 uses the configured default.
func (w *Workspace) Packs(id string, minTransactions int) ([]models.PackCandidate, error) {
	ds, err := w.Dataset(id)
	if err != nil {
		return nil, err
	}
	if minTransactions <= 0 {
		minTransactions = w.opts.MinTransactions
	}
	return memoize(w, ds, "packs", []any{minTransactions}, func() ([]models.PackCandidate, error) {
		w.packQueries.Add(1)
		w.metrics.PackSuggested()
		return packs.Suggest(ds.table, minTransactions), nil
	})
}

func (w *Workspace) Forecast(ctx context.Context, id string) ([]models.ProductForecast, error) {
	ds, err := w.Dataset(id)
	if err != nil {
		return nil, err
	}
	return memoize(w, ds, "forecast", nil, func() ([]models.ProductForecast, error) {
		ctx, span := observability.StartSpan(ctx, "workspace.forecast")
		defer span.End(w.logger)
		fc, err := w.predictor.PredictTopProducts(ctx, ds.table)
		if err != nil {
			span.SetError(err)
		}
		return fc, err
	})
}

func (w *Workspace) Prices(ctx context.Context, id string) ([]models.PriceRecommendation, error) {
	fc, err := w.Forecast(ctx, id)
	if err != nil {
		return nil, err
	}
	ds, err := w.Dataset(id)
	if err != nil {
		return nil, err
	}
	return RecommendPrices(ds.table, fc), nil
}

func (w *Workspace) Insights(ctx context.Context, id string) ([]string, error) {
	k, err := w.KPIs(id)
	if err != nil {
		return nil, err
	}
	return w.insights.Generate(ctx, SummaryStats{KPIs: k})
}

func (w *Workspace) AdTargeting(ctx context.Context, id string) ([]models.AdSuggestion, error) {
	fc, err := w.Forecast(ctx, id)
	if err != nil {
		return nil, err
	}
	return w.targeting.Suggest(ctx, fc)
}

// Stats reports workspace counters for monitoring.
func (w *Workspace) Stats() map[string]any {
	w.mu.RLock()
	memoized := 0
	for _, keys := range w.memoKeys {
		memoized += len(keys)
	}
	w.mu.RUnlock()

	return map[string]any{
		"datasets":       w.datasets.Len(),
		"loads":          w.loads.Load(),
		"rows_loaded":    w.rowsLoaded.Load(),
		"pack_queries":   w.packQueries.Load(),
		"memoized":       memoized,
		"cached_results": w.memo.Len(),
	}
}

func failureReason(err error) string {
	var missing *loader.MissingRequiredFieldError
	switch {
	case errors.As(err, &missing):
		return "missing_" + string(missing.Field)
	case errors.Is(err, loader.ErrUnreadableInput):
		return "unreadable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "other"
	}
}
