package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/mejd2001/ai-analyzer/internal/models"
	"github.com/mejd2001/ai-analyzer/internal/services"
)

const maxTableRows = 50

var packsTableTemplate = template.Must(template.New("packsTable").Parse(`
<div id="packs-content">
{{if .Rows}}<table class="modern-table">
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.PackName}}</td>
<td>{{.ItemA}}</td>
<td>{{.ItemB}}</td>
<td>{{.TimesBoughtTogether}}</td>
<td>{{printf "%.2f" .TotalValue}}</td>
<td><strong>{{printf "%.2f" .PackPrice}}</strong></td>
<td>{{printf "%.2f" .Savings}}</td>
</tr>{{end}}
</tbody>
</table>{{else}}<p class="empty">Not enough repeat baskets to suggest packs yet.</p>{{end}}
</div>`))

var insightsTemplate = template.Must(template.New("insights").Parse(`
<ul id="insights-content">
{{range .}}<li>{{.}}</li>{{end}}
</ul>`))

var errorTemplate = template.Must(template.New("error").Parse(`<div id="dashboard-error" class="error">{{.}}</div>`))

type SSEHandlers struct {
	workspace *services.Workspace
	logger    *slog.Logger
}

func NewSSEHandlers(workspace *services.Workspace, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		workspace: workspace,
		logger:    logger,
	}
}

type packsTableData struct {
	Columns []string
	Rows    []models.PackCandidate
}

func renderPacksTable(packs []models.PackCandidate) (string, error) {
	if len(packs) > maxTableRows {
		packs = packs[:maxTableRows]
	}
	var buf strings.Builder
	err := packsTableTemplate.Execute(&buf, packsTableData{Columns: models.PackColumns, Rows: packs})
	return buf.String(), err
}

func renderInsights(lines []string) (string, error) {
	var buf strings.Builder
	err := insightsTemplate.Execute(&buf, lines)
	return buf.String(), err
}

// patchError shows a message in the dashboard instead of failing the stream.
func (h *SSEHandlers) patchError(sse *datastar.ServerSentEventGenerator, message string) {
	var buf strings.Builder
	if err := errorTemplate.Execute(&buf, message); err != nil {
		h.logger.Error("render error banner", "error", err)
		return
	}
	if err := sse.PatchElements(buf.String()); err != nil {
		h.logger.Debug("patch error banner", "error", err)
	}
}

// HandlePacks streams the pack table for a dataset. It honours
// ?min_transactions like the JSON endpoint.
func (h *SSEHandlers) HandlePacks(w http.ResponseWriter, r *http.Request) {
	minTx, err := minTransactions(r)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		h.patchError(sse, "min_transactions must be a positive integer")
		return
	}

	packs, err := h.workspace.Packs(r.PathValue("id"), minTx)
	if err != nil {
		h.logger.Warn("packs unavailable", "error", err)
		h.patchError(sse, "Dataset not available")
		return
	}

	html, err := renderPacksTable(packs)
	if err != nil {
		h.logger.Error("render packs table", "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Debug("patch packs table", "error", err)
		return
	}

	signals, err := json.Marshal(map[string]any{"packsData": packs})
	if err != nil {
		h.logger.Error("marshal packs data", "error", err)
		return
	}
	if err := sse.PatchSignals(signals); err != nil {
		h.logger.Debug("patch packs signals", "error", err)
	}
}

// HandleRefreshAll computes every panel and pushes chart data as signals and
// the tables as element patches.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	d, err := h.workspace.Dashboard(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Warn("dashboard unavailable", "error", err)
		h.patchError(sse, "Dataset not available")
		return
	}

	allSignals, err := json.Marshal(map[string]any{
		"kpis":            d.KPIs,
		"monthlyData":     d.Monthly,
		"paretoData":      d.Pareto,
		"categoriesData":  d.Categories,
		"priceVolumeData": d.PriceVolume,
		"forecastData":    d.Forecast,
		"pricesData":      d.Prices,
		"adTargetingData": d.Ads,
		"packsData":       d.Packs,
	})
	if err != nil {
		h.logger.Error("marshal dashboard signals", "error", err)
		return
	}
	if err := sse.PatchSignals(allSignals); err != nil {
		h.logger.Debug("patch dashboard signals", "error", err)
		return
	}

	table, err := renderPacksTable(d.Packs)
	if err != nil {
		h.logger.Error("render packs table", "error", err)
		return
	}
	insights, err := renderInsights(d.Insights)
	if err != nil {
		h.logger.Error("render insights", "error", err)
		return
	}
	for _, html := range []string{table, insights} {
		if err := sse.PatchElements(html); err != nil {
			h.logger.Debug("patch dashboard elements", "error", err)
			return
		}
	}
}
