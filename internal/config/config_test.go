package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8084 {
		t.Errorf("Server.Port = %d, want 8084", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Packs.MinTransactions != 5 {
		t.Errorf("Packs.MinTransactions = %d, want 5", cfg.Packs.MinTransactions)
	}
	if cfg.Forecast.HorizonDays != 30 || cfg.Forecast.TopProducts != 20 || cfg.Forecast.MinHistory != 7 {
		t.Errorf("unexpected forecast defaults: %+v", cfg.Forecast)
	}
	if cfg.Ads.Region != "TN" {
		t.Errorf("Ads.Region = %q, want TN", cfg.Ads.Region)
	}
	if cfg.Insights.Currency != "TND" {
		t.Errorf("Insights.Currency = %q, want TND", cfg.Insights.Currency)
	}
	if got := cfg.Address(); got != "localhost:8084" {
		t.Errorf("Address() = %q", got)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("ANALYZER_SERVER_PORT", "9000")
	t.Setenv("ANALYZER_PACKS_MIN_TRANSACTIONS", "2")
	t.Setenv("ANALYZER_SECURITY_ALLOWED_ORIGINS", "http://a,http://b")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Packs.MinTransactions != 2 {
		t.Errorf("Packs.MinTransactions = %d, want 2", cfg.Packs.MinTransactions)
	}
	if len(cfg.Security.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", cfg.Security.AllowedOrigins)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]struct {
		key, value string
	}{
		"port":      {"ANALYZER_SERVER_PORT", "70000"},
		"log level": {"ANALYZER_LOG_LEVEL", "verbose"},
		"format":    {"ANALYZER_LOG_FORMAT", "xml"},
		"packs":     {"ANALYZER_PACKS_MIN_TRANSACTIONS", "0"},
		"history":   {"ANALYZER_FORECAST_MIN_HISTORY", "1"},
		"not int":   {"ANALYZER_FORECAST_WORKERS", "many"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s should fail", tt.key, tt.value)
			}
		})
	}
}
