// Package cli is the command-line front end: it runs the loader and the
// analyses over a local file and prints the results.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mejd2001/ai-analyzer/internal/config"
	"github.com/mejd2001/ai-analyzer/internal/loader"
	"github.com/mejd2001/ai-analyzer/internal/observability"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	logLevel  string
	logFormat string
	scanRows  int
	asJSON    bool
}

// NewRootCommand builds the command tree. Configuration comes from the
// environment first; flags override it when set.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "analyzer",
		Short:         "Load messy sales exports and analyse them",
		Long:          `analyzer reads CSV or Excel sales exports, infers which columns hold dates, products, quantities and prices, and reports KPIs, bundle suggestions and demand forecasts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides ANALYZER_LOG_LEVEL)")
	f.StringVar(&a.logFormat, "log-format", "", "log format: json or text (overrides ANALYZER_LOG_FORMAT)")
	f.IntVar(&a.scanRows, "header-scan-rows", 0, "rows inspected when looking for the header (overrides ANALYZER_LOADER_HEADER_SCAN_ROWS)")
	f.BoolVar(&a.asJSON, "json", false, "print results as JSON")

	root.AddCommand(
		newLoadCommand(a),
		newPacksCommand(a),
		newForecastCommand(a),
		newKPIsCommand(a),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	root := NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.Logger.Level = a.logLevel
	} else if !envSet("ANALYZER_LOG_LEVEL") {
		// Keep the terminal quiet unless asked.
		cfg.Logger.Level = "warn"
	}
	if f.Changed("log-format") {
		cfg.Logger.Format = a.logFormat
	} else if !envSet("ANALYZER_LOG_FORMAT") {
		cfg.Logger.Format = "text"
	}
	if f.Changed("header-scan-rows") {
		if a.scanRows <= 0 {
			return fmt.Errorf("--header-scan-rows must be positive")
		}
		cfg.Loader.HeaderScanRows = a.scanRows
	}

	a.cfg = cfg
	a.logger = observability.NewLoggerTo(cmd.ErrOrStderr(), cfg.Logger)
	return nil
}

func (a *app) load(ctx context.Context, path string) (*loader.Result, error) {
	l := loader.New(loader.Options{MaxScan: a.cfg.Loader.HeaderScanRows}, a.logger)
	res, err := l.LoadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return res, nil
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}
