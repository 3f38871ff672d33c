package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mejd2001/ai-analyzer/internal/adsource"
	"github.com/mejd2001/ai-analyzer/internal/config"
	"github.com/mejd2001/ai-analyzer/internal/handlers"
	"github.com/mejd2001/ai-analyzer/internal/loader"
	"github.com/mejd2001/ai-analyzer/internal/middleware"
	"github.com/mejd2001/ai-analyzer/internal/observability"
	"github.com/mejd2001/ai-analyzer/internal/server"
	"github.com/mejd2001/ai-analyzer/internal/services"
	"github.com/mejd2001/ai-analyzer/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	preloadTimeout = 30 * time.Second
	cacheMaxAge    = "no-cache"
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard(r.URL.Query().Get("dataset")).Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// newWorkspace wires the analysis services from configuration.
func newWorkspace(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*services.Workspace, error) {
	var client adsource.Client
	if cfg.Ads.AccessToken != "" {
		client = adsource.NewGraphClient(cfg.Ads.BaseURL, cfg.Ads.AccessToken, cfg.Ads.Timeout)
	}

	insights := services.NewTemplateInsights(cfg.Insights.Currency)
	return services.NewWorkspace(services.Options{
		Loader: loader.Options{MaxScan: cfg.Loader.HeaderScanRows},
		Predict: services.PredictOptions{
			TopProducts: cfg.Forecast.TopProducts,
			MinHistory:  cfg.Forecast.MinHistory,
			Horizon:     cfg.Forecast.HorizonDays,
			Keep:        cfg.Forecast.Keep,
			Workers:     cfg.Forecast.Workers,
		},
		MinTransactions: cfg.Packs.MinTransactions,
		MaxDatasets:     cfg.Cache.MaxDatasets,
		MemoEntries:     cfg.Cache.MaxEntries,
		CacheDir:        cfg.Cache.Dir,
	}, services.Deps{
		Insights:  insights,
		Targeting: services.RuleTargeting{Region: cfg.Ads.Region},
		Ads:       adsource.NewSource(client, cfg.Ads.DemoDays, logger),
		Metrics:   metrics,
		Logger:    logger,
	})
}

// newHandler builds the routed server wrapped in the middleware chain.
func newHandler(cfg *config.Config, ws *services.Workspace, metrics *observability.Metrics, logger *slog.Logger) http.Handler {
	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}
	srv := server.NewServer(ws, metrics, handlers.Options{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		AdsAccountID:   cfg.Ads.AccountID,
	}, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Metrics(metrics),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)
	return middlewareChain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"addr", cfg.Address(),
		"ads_live", cfg.Ads.AccessToken != "",
	)

	metrics := observability.NewMetrics()
	ws, err := newWorkspace(cfg, metrics, logger)
	if err != nil {
		logger.Error("failed to create workspace", "error", err)
		os.Exit(1)
	}

	if cfg.Server.PreloadFile != "" {
		ctx, cancel := context.WithTimeout(context.Background(), preloadTimeout)
		ds, err := ws.LoadFile(ctx, cfg.Server.PreloadFile)
		cancel()
		if err != nil {
			logger.Error("failed to preload dataset", "file", cfg.Server.PreloadFile, "error", err)
			os.Exit(1)
		}
		logger.Info("dataset preloaded", "id", ds.ID, "rows", ds.Rows)
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, ws, metrics, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down analysis workspace", "stats", ws.Stats())
		return nil
	})

	if err := gracefulServer.ListenAndServe(context.Background()); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
