package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func xlsxBytes(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellRef, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadSheet_XLSX(t *testing.T) {
	data := xlsxBytes(t,
		[]any{"Date", "Product", "Qty", "Price"},
		[]any{45292, "tea", 2, 3.5},
	)

	sheet, err := ReadSheet(data)
	require.NoError(t, err)
	assert.Equal(t, "xlsx", sheet.Format)
	assert.True(t, sheet.ExcelDates)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, []string{"Date", "Product", "Qty", "Price"}, sheet.Rows[0])
	assert.Equal(t, "45292", sheet.Rows[1][0])
	assert.Equal(t, "3.5", sheet.Rows[1][3])
}

func TestReadSheet_CSV(t *testing.T) {
	t.Run("utf-8 with bom", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, "Date,Product\n01/01/2024,tea\n"...)
		sheet, err := ReadSheet(data)
		require.NoError(t, err)
		assert.Equal(t, "csv", sheet.Format)
		assert.False(t, sheet.ExcelDates)
		assert.Equal(t, [][]string{{"Date", "Product"}, {"01/01/2024", "tea"}}, sheet.Rows)
	})

	t.Run("latin-1 semicolons", func(t *testing.T) {
		data, err := charmap.ISO8859_1.NewEncoder().String("Date;Produit;Qté\n01/01/2024;Crème;2\n")
		require.NoError(t, err)

		sheet, err := ReadSheet([]byte(data))
		require.NoError(t, err)
		assert.Equal(t, "csv-latin1", sheet.Format)
		assert.Equal(t, []string{"Date", "Produit", "Qté"}, sheet.Rows[0])
		assert.Equal(t, "Crème", sheet.Rows[1][1])
	})

	t.Run("ragged rows and blank lines", func(t *testing.T) {
		sheet, err := ReadSheet([]byte("Report\n\nDate,Product,Qty\n01/01/2024,tea\n"))
		require.NoError(t, err)
		require.Len(t, sheet.Rows, 3)
		assert.Equal(t, []string{"Report"}, sheet.Rows[0])
		assert.Len(t, sheet.Rows[2], 2)
	})
}

func TestReadSheet_Unreadable(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("   \n\t")} {
		_, err := ReadSheet(data)
		assert.ErrorIs(t, err, ErrUnreadableInput, "input %q", data)
	}
}

func TestSniffDelimiter(t *testing.T) {
	tests := map[string]struct {
		in   string
		want rune
	}{
		"comma":     {"a,b,c\n1,2,3", ','},
		"semicolon": {"a;b;c\n1;2,5;3", ';'},
		"tab":       {"a\tb\tc", '\t'},
		"tie":       {"a,b;c", ','},
		"none":      {"abc", ','},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, sniffDelimiter([]byte(tt.in)))
		})
	}
}
