package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// ErrUnreadableInput means the bytes could not be read as a table in any
// supported format.
var ErrUnreadableInput = errors.New("unreadable input")

// Sheet is a headerless grid of cells.
type Sheet struct {
	Rows [][]string
	// ExcelDates is set when numeric cells may be spreadsheet date serials.
	ExcelDates bool
	Format     string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadSheet reads the first worksheet of an XLSX workbook, or falls back to
// delimited text: UTF-8 first, then Latin-1.
func ReadSheet(data []byte) (*Sheet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnreadableInput)
	}

	sheet, xlsxErr := readXLSX(data)
	if xlsxErr == nil {
		return sheet, nil
	}

	text := bytes.TrimPrefix(data, utf8BOM)
	format := "csv"
	if !utf8.Valid(text) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(text)
		if err != nil {
			return nil, fmt.Errorf("%w: decode latin-1: %v", ErrUnreadableInput, err)
		}
		text = decoded
		format = "csv-latin1"
	}

	rows, err := readCSV(text)
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v; csv: %v", ErrUnreadableInput, xlsxErr, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrUnreadableInput)
	}
	return &Sheet{Rows: rows, Format: format}, nil
}

func readXLSX(data []byte) (*Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}
	return &Sheet{Rows: rows, ExcelDates: true, Format: "xlsx"}, nil
}

func readCSV(text []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// sniffDelimiter picks the most frequent of comma, semicolon and tab across
// the first lines. Comma wins ties.
func sniffDelimiter(text []byte) rune {
	lines := strings.SplitN(string(text), "\n", 11)
	if len(lines) > 10 {
		lines = lines[:10]
	}
	sample := strings.Join(lines, "\n")

	best, bestCount := ',', strings.Count(sample, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(sample, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
