package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mejd2001/ai-analyzer/internal/models"
)

const preambleCSV = "Shop export,,\n,,\nDate,Product,Revenue\n01/01/2024,tea,10\n02/01/2024,cup,20\n"

func TestLoad_CSVWithPreamble(t *testing.T) {
	res, err := New(DefaultOptions(), nil).Load(context.Background(), []byte(preambleCSV))
	require.NoError(t, err)

	assert.Equal(t, 2, res.HeaderRow)
	assert.Equal(t, "csv", res.Format)
	assert.Equal(t, []string{"Date", "Product", "Revenue"}, res.Columns)
	assert.Equal(t, ColumnMap{FieldDate: "Date", FieldProduct: "Product", FieldRevenue: "Revenue"}, res.ColumnMap)
	require.Equal(t, 2, res.Table.Len())

	tx := res.Table.Transactions[1]
	assert.Equal(t, "Cup", tx.Product)
	assert.Equal(t, 1, tx.Quantity)
	assert.Equal(t, 20.0, tx.Revenue)
	assert.Equal(t, 20.0, tx.Price)
	assert.Equal(t, []string{"2024-01-02 00:00:00", "Cup", "General", "1", "20", "20", "Unknown", "Unknown"}, tx.Record())
}

func TestLoad_XLSXSerialDates(t *testing.T) {
	data := xlsxBytes(t,
		[]any{"Order Date", "Article", "Qté", "Prix"},
		[]any{45293, "mug", 3, 4},
		[]any{45292, "mug", 1, 4},
	)

	res, err := New(DefaultOptions(), nil).Load(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, "xlsx", res.Format)
	require.Equal(t, 2, res.Table.Len())

	first := res.Table.Transactions[0]
	assert.Equal(t, 2024, first.Date.Year())
	assert.Equal(t, 1, first.Date.Day())
	assert.Equal(t, 4.0, first.Revenue)
	assert.Equal(t, 12.0, res.Table.Transactions[1].Revenue)
}

func TestLoad_Errors(t *testing.T) {
	l := New(Options{}, nil)

	t.Run("no date column", func(t *testing.T) {
		_, err := l.Load(context.Background(), []byte("Product,Revenue\ntea,10\n"))
		var missing *MissingRequiredFieldError
		assert.True(t, errors.As(err, &missing))
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := l.Load(context.Background(), nil)
		assert.ErrorIs(t, err, ErrUnreadableInput)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := l.Load(ctx, []byte(preambleCSV))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(preambleCSV), 0o600))

	res, err := New(DefaultOptions(), nil).LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, models.CanonicalColumns, res.Table.Columns())

	_, err = New(DefaultOptions(), nil).LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
