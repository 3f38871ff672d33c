package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable, e.g. ANALYZER_SERVER_PORT.
const EnvPrefix = "ANALYZER"

type Config struct {
	Server   ServerConfig   `envconfig:"SERVER"`
	Loader   LoaderConfig   `envconfig:"LOADER"`
	Packs    PacksConfig    `envconfig:"PACKS"`
	Forecast ForecastConfig `envconfig:"FORECAST"`
	Cache    CacheConfig    `envconfig:"CACHE"`
	Ads      AdsConfig      `envconfig:"ADS"`
	Insights InsightsConfig `envconfig:"INSIGHTS"`
	Logger   LoggerConfig   `envconfig:"LOG"`
	Security SecurityConfig `envconfig:"SECURITY"`
}

type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            int           `envconfig:"PORT" default:"8084"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	MaxUploadBytes  int64         `envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
	// PreloadFile, when set, is loaded into the workspace at startup.
	PreloadFile     string        `envconfig:"PRELOAD_FILE"`
}

type LoaderConfig struct {
	HeaderScanRows int `envconfig:"HEADER_SCAN_ROWS" default:"20"`
}

type PacksConfig struct {
	MinTransactions int `envconfig:"MIN_TRANSACTIONS" default:"5"`
}

type ForecastConfig struct {
	HorizonDays int `envconfig:"HORIZON_DAYS" default:"30"`
	TopProducts int `envconfig:"TOP_PRODUCTS" default:"20"`
	MinHistory  int `envconfig:"MIN_HISTORY" default:"7"`
	Keep        int `envconfig:"KEEP" default:"5"`
	Workers     int `envconfig:"WORKERS" default:"4"`
}

type CacheConfig struct {
	Dir         string `envconfig:"DIR" default:".cache"`
	MaxEntries  int    `envconfig:"MAX_ENTRIES" default:"64"`
	MaxDatasets int    `envconfig:"MAX_DATASETS" default:"16"`
}

type AdsConfig struct {
	BaseURL     string        `envconfig:"BASE_URL" default:"https://graph.facebook.com/v19.0"`
	AccessToken string        `envconfig:"ACCESS_TOKEN"`
	AccountID   string        `envconfig:"ACCOUNT_ID"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"15s"`
	Region      string        `envconfig:"REGION" default:"TN"`
	DemoDays    int           `envconfig:"DEMO_DAYS" default:"90"`
}

type InsightsConfig struct {
	Currency string `envconfig:"CURRENCY" default:"TND"`
}

type LoggerConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitRPS    int      `envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst  int      `envconfig:"RATE_LIMIT_BURST" default:"10"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8084"`
	TrustedProxies  []string `envconfig:"TRUSTED_PROXIES" default:"127.0.0.1"`
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}

	if c.Loader.HeaderScanRows <= 0 {
		return fmt.Errorf("header scan rows must be positive")
	}

	if c.Packs.MinTransactions < 1 {
		return fmt.Errorf("pack min transactions must be at least 1, got %d", c.Packs.MinTransactions)
	}

	if c.Forecast.HorizonDays <= 0 || c.Forecast.TopProducts <= 0 || c.Forecast.Keep <= 0 {
		return fmt.Errorf("forecast horizon, top products and keep must be positive")
	}

	if c.Forecast.MinHistory < 2 {
		return fmt.Errorf("forecast min history must be at least 2, got %d", c.Forecast.MinHistory)
	}

	if c.Forecast.Workers <= 0 {
		return fmt.Errorf("forecast workers must be positive")
	}

	if c.Cache.MaxEntries <= 0 || c.Cache.MaxDatasets <= 0 {
		return fmt.Errorf("cache sizes must be positive")
	}

	if c.Ads.DemoDays <= 0 {
		return fmt.Errorf("ads demo days must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
