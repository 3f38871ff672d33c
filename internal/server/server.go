package server

import (
	"log/slog"
	"net/http"

	"github.com/mejd2001/ai-analyzer/internal/handlers"
	"github.com/mejd2001/ai-analyzer/internal/observability"
	"github.com/mejd2001/ai-analyzer/internal/services"
)

type Server struct {
	workspace   *services.Workspace
	metrics     *observability.Metrics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(workspace *services.Workspace, metrics *observability.Metrics, opts handlers.Options, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		workspace:   workspace,
		metrics:     metrics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(workspace, opts, logger),
		sseHandlers: handlers.NewSSEHandlers(workspace, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	if templateHandlers != nil && templateHandlers.Dashboard != nil {
		s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	}
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// Datasets
	s.mux.HandleFunc("POST /api/datasets", s.apiHandlers.HandleUpload)
	s.mux.HandleFunc("POST /api/datasets/ads", s.apiHandlers.HandleLoadAds)
	s.mux.HandleFunc("GET /api/datasets/{id}", s.apiHandlers.HandleGetDataset)
	s.mux.HandleFunc("DELETE /api/datasets/{id}", s.apiHandlers.HandleDeleteDataset)

	// Analytics
	s.mux.HandleFunc("GET /api/datasets/{id}/kpis", s.apiHandlers.HandleKPIs)
	s.mux.HandleFunc("GET /api/datasets/{id}/monthly", s.apiHandlers.HandleMonthly)
	s.mux.HandleFunc("GET /api/datasets/{id}/pareto", s.apiHandlers.HandlePareto)
	s.mux.HandleFunc("GET /api/datasets/{id}/categories", s.apiHandlers.HandleCategories)
	s.mux.HandleFunc("GET /api/datasets/{id}/price-volume", s.apiHandlers.HandlePriceVolume)
	s.mux.HandleFunc("GET /api/datasets/{id}/packs", s.apiHandlers.HandlePacks)
	s.mux.HandleFunc("GET /api/datasets/{id}/forecast", s.apiHandlers.HandleForecast)
	s.mux.HandleFunc("GET /api/datasets/{id}/prices", s.apiHandlers.HandlePrices)
	s.mux.HandleFunc("GET /api/datasets/{id}/insights", s.apiHandlers.HandleInsights)
	s.mux.HandleFunc("GET /api/datasets/{id}/ad-targeting", s.apiHandlers.HandleAdTargeting)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/datasets/{id}/refresh-all", s.sseHandlers.HandleRefreshAll)
	s.mux.HandleFunc("GET /sse/datasets/{id}/packs", s.sseHandlers.HandlePacks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
