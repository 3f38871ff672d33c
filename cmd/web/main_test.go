package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mejd2001/ai-analyzer/internal/config"
	"github.com/mejd2001/ai-analyzer/internal/observability"
)

const salesCSV = `Report generated 2024-02-01,,,,
Order Date,Item,Qty,Unit Price,Status
01/01/2024,Tea,2,10,Completed
01/01/2024,Cup,1,5,Completed
02/01/2024,Tea,1,10,Cancelled
`

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	t.Setenv("ANALYZER_LOG_LEVEL", "error")
	t.Setenv("ANALYZER_SECURITY_RATE_LIMIT_ENABLED", "false")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	cfg.Cache.Dir = t.TempDir()

	logger := observability.NewLogger(cfg.Logger)
	metrics := observability.NewMetrics()
	ws, err := newWorkspace(cfg, metrics, logger)
	if err != nil {
		t.Fatalf("newWorkspace() error = %v", err)
	}
	return newHandler(cfg, ws, metrics, logger)
}

func upload(t *testing.T, h http.Handler, content string) string {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "sales.csv")
	fw.Write([]byte(content))
	mw.Close()

	r := httptest.NewRequest(http.MethodPost, "/api/datasets", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	return resp.Data.ID
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	h := newTestHandler(t)
	id := upload(t, h, salesCSV)

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/metrics", http.StatusOK, "text/plain"},
		{"/api/datasets/" + id, http.StatusOK, "application/json"},
		{"/api/datasets/" + id + "/kpis", http.StatusOK, "application/json"},
		{"/api/datasets/" + id + "/monthly", http.StatusOK, "application/json"},
		{"/api/datasets/" + id + "/packs", http.StatusOK, "application/json"},
		{"/api/datasets/" + id + "/forecast", http.StatusOK, "application/json"},
		{"/api/datasets/missing/kpis", http.StatusNotFound, "application/json"},
		{"/sse/datasets/" + id + "/refresh-all", http.StatusOK, "text/event-stream"},
		{"/sse/datasets/" + id + "/packs", http.StatusOK, "text/event-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)

			h.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID header")
			}
		})
	}
}

// The sample keeps two rows: the cancelled one is dropped and the preamble
// row is skipped by header detection.
func TestServer_UploadPipeline(t *testing.T) {
	h := newTestHandler(t)
	id := upload(t, h, salesCSV)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/kpis", nil))

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			TotalRevenue float64 `json:"total_revenue"`
			TotalOrders  int     `json:"total_orders"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if !resp.Success || resp.Data.TotalOrders != 2 || resp.Data.TotalRevenue != 25 {
		t.Errorf("unexpected KPIs: %+v", resp)
	}

	// One day of history is not enough for a forecast.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/forecast", nil))
	if !strings.Contains(w.Body.String(), `"message":"not enough data"`) {
		t.Errorf("forecast body = %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/datasets/"+id, nil))
	if w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
}

func TestServer_Metrics(t *testing.T) {
	h := newTestHandler(t)
	upload(t, h, salesCSV)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := w.Body.String()
	for _, want := range []string{
		`analyzer_datasets_loaded_total{source="upload"} 1`,
		`analyzer_rows_dropped_total{reason="status"} 1`,
		`analyzer_http_requests_total{method="POST",status="200"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics should contain %q", want)
		}
	}
}

// Test error handling for invalid methods
func TestServer_ErrorHandling(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"PUT", "/", http.StatusMethodNotAllowed},
		{"DELETE", "/health", http.StatusMethodNotAllowed},
		{"PATCH", "/api/datasets/x", http.StatusMethodNotAllowed},
		{"GET", "/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			h.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

// Test dashboard template rendering
func TestDashboardTemplate(t *testing.T) {
	w := httptest.NewRecorder()
	const id = "0b7c6f1e-2d4a-4f3b-9a61-5c2e8d9f0a17"
	r := httptest.NewRequest(http.MethodGet, "/?dataset="+id, nil)

	handleDashboard(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	for _, component := range []string{"Sales Analyzer", "/sse/datasets/" + id + "/refresh-all", "Suggested packs"} {
		if !strings.Contains(body, component) {
			t.Errorf("dashboard should contain %q", component)
		}
	}
}
