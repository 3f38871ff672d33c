package handlers

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mejd2001/ai-analyzer/internal/errors"
	"github.com/mejd2001/ai-analyzer/internal/loader"
	"github.com/mejd2001/ai-analyzer/internal/observability"
	"github.com/mejd2001/ai-analyzer/internal/services"
)

const (
	uploadField   = "file"
	notEnoughData = "not enough data"
	cacheMaxAge   = "private, max-age=300"
)

var cacheHeaders = map[string]string{"Cache-Control": cacheMaxAge}

type Options struct {
	MaxUploadBytes int64
	// AdsAccountID is used when a request does not name an account.
	AdsAccountID string
}

type APIHandlers struct {
	workspace *services.Workspace
	opts      Options
	logger    *slog.Logger
}

func NewAPIHandlers(workspace *services.Workspace, opts Options, logger *slog.Logger) *APIHandlers {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	return &APIHandlers{
		workspace: workspace,
		opts:      opts,
		logger:    logger,
	}
}

// HandleUpload loads the multipart "file" field as a new dataset.
func (h *APIHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			h.writeError(w, r, errors.TooLarge("Upload exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes"))
			return
		}
		h.writeError(w, r, errors.BadRequestWrap(err, "Multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, r, errors.BadRequestWrap(err, "Failed to read upload"))
		return
	}

	ds, err := h.workspace.LoadDataset(r.Context(), header.Filename, services.SourceUpload, data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/datasets/"+ds.ID)
	errors.WriteSuccess(w, ds)
}

// HandleLoadAds loads ad insights for ?account_id, falling back to demo data.
func (h *APIHandlers) HandleLoadAds(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account_id")
	if account == "" {
		account = h.opts.AdsAccountID
	}

	ds, err := h.workspace.LoadAds(r.Context(), account)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccess(w, ds)
}

func (h *APIHandlers) HandleGetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.workspace.Dataset(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccess(w, ds)
}

func (h *APIHandlers) HandleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.workspace.Remove(id); err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccess(w, map[string]string{"id": id})
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	k, err := h.workspace.KPIs(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, k, cacheHeaders)
}

func (h *APIHandlers) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	data, err := h.workspace.Monthly(r.PathValue("id"))
	writeList(h, w, r, data, err)
}

func (h *APIHandlers) HandlePareto(w http.ResponseWriter, r *http.Request) {
	data, err := h.workspace.Pareto(r.PathValue("id"))
	writeList(h, w, r, data, err)
}

func (h *APIHandlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	data, err := h.workspace.Categories(r.PathValue("id"))
	writeList(h, w, r, data, err)
}

func (h *APIHandlers) HandlePriceVolume(w http.ResponseWriter, r *http.Request) {
	data, err := h.workspace.PriceVolume(r.PathValue("id"))
	writeList(h, w, r, data, err)
}

// HandlePacks accepts an optional ?min_transactions.
func (h *APIHandlers) HandlePacks(w http.ResponseWriter, r *http.Request) {
	minTx, err := minTransactions(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	data, err := h.workspace.Packs(r.PathValue("id"), minTx)
	writeList(h, w, r, data, err)
}

func (h *APIHandlers) HandleForecast(w http.ResponseWriter, r *http.Request) {
	data, err := h.workspace.Forecast(r.Context(), r.PathValue("id"))
	writeList(h, w, r, data, err)
}

func (h *APIHandlers) HandlePrices(w http.ResponseWriter, r *http.Request) {
	data, err := h.workspace.Prices(r.Context(), r.PathValue("id"))
	writeList(h, w, r, data, err)
}

func (h *APIHandlers) HandleInsights(w http.ResponseWriter, r *http.Request) {
	data, err := h.workspace.Insights(r.Context(), r.PathValue("id"))
	writeList(h, w, r, data, err)
}

func (h *APIHandlers) HandleAdTargeting(w http.ResponseWriter, r *http.Request) {
	data, err := h.workspace.AdTargeting(r.Context(), r.PathValue("id"))
	writeList(h, w, r, data, err)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.workspace.Stats())
}

// writeList sends an empty result as success with a note instead of a bare
// empty array.
func writeList[T any](h *APIHandlers, w http.ResponseWriter, r *http.Request, data []T, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(data) == 0 {
		errors.WriteSuccessMessage(w, data, notEnoughData)
		return
	}
	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, toAppError(err), observability.GetRequestID(r.Context()))
}

// toAppError maps domain errors onto HTTP error codes.
func toAppError(err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}

	var missing *loader.MissingRequiredFieldError
	switch {
	case stderrors.Is(err, services.ErrDatasetNotFound):
		return errors.NotFound("Dataset not found").WithDetails(err.Error())
	case stderrors.As(err, &missing):
		return errors.UnprocessableWrap(err, "Required column missing: "+string(missing.Field))
	case stderrors.Is(err, loader.ErrUnreadableInput):
		return errors.BadRequestWrap(err, "File is not a readable spreadsheet").WithDetails(err.Error())
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.ServiceUnavailable("Request timed out")
	default:
		return err
	}
}

func minTransactions(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("min_transactions")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.BadRequest("min_transactions must be a positive integer")
	}
	return n, nil
}
