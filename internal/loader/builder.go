package loader

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mejd2001/ai-analyzer/internal/models"
)

const (
	unknownProduct  = "Unknown Product"
	defaultCategory = "General"
	syntheticSuffix = " Item"
	unknownAgeGroup = "Unknown"
)

// MissingRequiredFieldError is returned when a field the table cannot be
// built without was not resolved from the headers.
type MissingRequiredFieldError struct {
	Field Field
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("no %s column found", e.Field)
}

// Frame is the sheet below its header row.
type Frame struct {
	Columns    []string
	Rows       [][]string
	ExcelDates bool
}

// FrameAt splits a sheet at headerRow.
func FrameAt(sheet *Sheet, headerRow int) *Frame {
	f := &Frame{ExcelDates: sheet.ExcelDates}
	if headerRow >= len(sheet.Rows) {
		return f
	}
	for _, h := range sheet.Rows[headerRow] {
		f.Columns = append(f.Columns, strings.TrimSpace(h))
	}
	f.Rows = sheet.Rows[headerRow+1:]
	return f
}

func (f *Frame) index(column string) int {
	return slices.Index(f.Columns, column)
}

// BuildStats counts what happened to the input rows.
type BuildStats struct {
	RowsIn        int `json:"rows_in"`
	DroppedStatus int `json:"dropped_status"`
	DroppedDate   int `json:"dropped_date"`
	RowsOut       int `json:"rows_out"`
}

type sourceColumns struct {
	date, product, category, quantity, revenue, price, gender, age, status int
}

func (f *Frame) resolve(cm ColumnMap) sourceColumns {
	idx := func(field Field) int {
		col, ok := cm[field]
		if !ok {
			return -1
		}
		return f.index(col)
	}
	return sourceColumns{
		date:     idx(FieldDate),
		product:  idx(FieldProduct),
		category: idx(FieldCategory),
		quantity: idx(FieldQuantity),
		revenue:  idx(FieldRevenue),
		price:    idx(FieldPrice),
		gender:   idx(FieldGender),
		age:      idx(FieldAge),
		status:   idx(FieldStatus),
	}
}

// Build turns a framed sheet into the canonical table.
func Build(f *Frame, cm ColumnMap) (*models.Table, BuildStats, error) {
	stats := BuildStats{RowsIn: len(f.Rows)}
	if !cm.Has(FieldDate) {
		return nil, stats, &MissingRequiredFieldError{Field: FieldDate}
	}
	src := f.resolve(cm)
	aux := f.auxiliaryColumns(cm)
	title := cases.Title(language.Und)

	rows := f.Rows
	if src.status >= 0 {
		rows = slices.DeleteFunc(slices.Clone(rows), func(row []string) bool {
			_, bad := cancelledStatuses[strings.ToLower(strings.TrimSpace(cell(row, src.status)))]
			return bad
		})
		stats.DroppedStatus = len(f.Rows) - len(rows)
	}

	txs := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		date, ok := ParseDate(cell(row, src.date), f.ExcelDates)
		if !ok {
			stats.DroppedDate++
			continue
		}
		tx := models.Transaction{
			Date:           date,
			Category:       defaultCategory,
			Quantity:       1,
			CustomerGender: models.GenderUnknown,
			AgeGroup:       unknownAgeGroup,
		}

		category := ""
		if src.category >= 0 {
			category = strings.TrimSpace(title.String(cell(row, src.category)))
			if category != "" {
				tx.Category = category
			}
		}
		switch {
		case src.product >= 0:
			tx.Product = strings.TrimSpace(title.String(cell(row, src.product)))
			if tx.Product == "" {
				tx.Product = unknownProduct
			}
		case src.category >= 0:
			tx.Product = tx.Category + syntheticSuffix
		default:
			tx.Product = unknownProduct
		}

		if src.quantity >= 0 {
			if raw := cell(row, src.quantity); !isMissing(raw) {
				tx.Quantity = int(min(CleanCurrency(raw), math.MaxInt32))
			}
		}
		if src.revenue >= 0 {
			tx.Revenue = CleanCurrency(cell(row, src.revenue))
		}
		if src.price >= 0 {
			tx.Price = CleanCurrency(cell(row, src.price))
		}

		if src.gender >= 0 {
			if g, ok := genderAliases[strings.ToUpper(strings.TrimSpace(cell(row, src.gender)))]; ok {
				tx.CustomerGender = g
			}
		}
		if src.age >= 0 {
			if age := strings.TrimSpace(cell(row, src.age)); age != "" {
				tx.AgeGroup = age
			}
		}

		if len(aux) > 0 {
			tx.Attributes = make(map[string]string, len(aux))
			for _, a := range aux {
				tx.Attributes[a.name] = strings.TrimSpace(cell(row, a.index))
			}
		}
		txs = append(txs, tx)
	}

	crossFill(txs, src.price >= 0, src.revenue >= 0)

	slices.SortStableFunc(txs, func(a, b models.Transaction) int {
		return a.Date.Compare(b.Date)
	})
	stats.RowsOut = len(txs)

	table := &models.Table{Transactions: txs}
	for _, a := range aux {
		table.Auxiliary = append(table.Auxiliary, a.name)
	}
	return table, stats, nil
}

// crossFill derives a zero Revenue from Price×Quantity, then a zero Price
// from Revenue/Quantity (Quantity 0 counts as 1). A genuine zero price or
// revenue is overwritten too.
func crossFill(txs []models.Transaction, priceMapped, revenueMapped bool) {
	if priceMapped {
		for i := range txs {
			if txs[i].Revenue == 0 {
				txs[i].Revenue = txs[i].Price * float64(txs[i].Quantity)
			}
		}
	}
	if revenueMapped {
		for i := range txs {
			if txs[i].Price == 0 {
				txs[i].Price = txs[i].Revenue / float64(max(txs[i].Quantity, 1))
			}
		}
	}
}

type auxColumn struct {
	name  string
	index int
}

// auxiliaryColumns picks unmapped columns that look like order identifiers
// or basket proxies.
func (f *Frame) auxiliaryColumns(cm ColumnMap) []auxColumn {
	mapped := make(map[string]bool, len(cm))
	for _, col := range cm {
		mapped[col] = true
	}
	tokens := slices.Clone(models.OrderIDTokens)
	for _, p := range models.ProxyColumns {
		tokens = append(tokens, strings.ToLower(p))
	}

	var out []auxColumn
	seen := make(map[string]bool)
	for i, col := range f.Columns {
		if mapped[col] {
			continue
		}
		name := Normalize(col)
		if name == "" || seen[name] || !containsAny(name, tokens) {
			continue
		}
		seen[name] = true
		out = append(out, auxColumn{name: name, index: i})
	}
	return out
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
