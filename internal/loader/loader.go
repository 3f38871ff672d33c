// Package loader turns messy spreadsheet exports into the canonical
// transaction table. It finds the header row, maps raw columns onto semantic
// fields by keyword scoring, and coerces each row with safe defaults.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mejd2001/ai-analyzer/internal/models"
)

// Options tunes header detection and column mapping.
type Options struct {
	MaxScan  int
	Keywords KeywordTable
}

func DefaultOptions() Options {
	return Options{
		MaxScan:  DefaultMaxScan,
		Keywords: DefaultKeywords,
	}
}

// Result is a loaded table along with how it was inferred.
type Result struct {
	Table     *models.Table `json:"-"`
	ColumnMap ColumnMap     `json:"column_map"`
	Columns   []string      `json:"columns"`
	HeaderRow int           `json:"header_row"`
	Format    string        `json:"format"`
	Stats     BuildStats    `json:"stats"`
}

type Loader struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Loader {
	if opts.MaxScan <= 0 {
		opts.MaxScan = DefaultMaxScan
	}
	if len(opts.Keywords) == 0 {
		opts.Keywords = DefaultKeywords
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{opts: opts, logger: logger}
}

// LoadFile reads path and loads it.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return l.Load(ctx, data)
}

// Load runs the full pipeline over raw file bytes.
func (l *Loader) Load(ctx context.Context, data []byte) (*Result, error) {
	start := time.Now()

	sheet, err := ReadSheet(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	headerRow := FindHeaderRow(sheet.Rows, l.opts.Keywords, l.opts.MaxScan)
	frame := FrameAt(sheet, headerRow)
	cm := MapColumns(frame.Columns, l.opts.Keywords)

	l.logger.Info("column mapping resolved",
		"format", sheet.Format,
		"header_row", headerRow,
		"mapping", cm,
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, stats, err := Build(frame, cm)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("rows dropped",
		"status", stats.DroppedStatus,
		"unparseable_date", stats.DroppedDate,
	)
	l.logger.Info("dataset loaded",
		"rows", stats.RowsOut,
		"auxiliary", table.Auxiliary,
		"duration", time.Since(start),
	)

	return &Result{
		Table:     table,
		ColumnMap: cm,
		Columns:   frame.Columns,
		HeaderRow: headerRow,
		Format:    sheet.Format,
		Stats:     stats,
	}, nil
}
