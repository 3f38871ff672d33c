package models

import (
	"strconv"
	"time"
)

// Gender values emitted by the loader.
const (
	GenderMale    = "Male"
	GenderFemale  = "Female"
	GenderUnknown = "Unknown"
)

// Canonical column names, in output order.
const (
	ColDate           = "Date"
	ColProduct        = "Product"
	ColCategory       = "Category"
	ColQuantity       = "Quantity"
	ColPrice          = "Price"
	ColRevenue        = "Revenue"
	ColCustomerGender = "Customer_Gender"
	ColAgeGroup       = "Age_Group"
)

var CanonicalColumns = []string{
	ColDate, ColProduct, ColCategory, ColQuantity,
	ColPrice, ColRevenue, ColCustomerGender, ColAgeGroup,
}

// Transaction is one row of the canonical table.
type Transaction struct {
	Date           time.Time         `json:"date"`
	Product        string            `json:"product"`
	Category       string            `json:"category"`
	Quantity       int               `json:"quantity"`
	Price          float64           `json:"price"`
	Revenue        float64           `json:"revenue"`
	CustomerGender string            `json:"customer_gender"`
	AgeGroup       string            `json:"age_group"`
	Attributes     map[string]string `json:"-"`
}

// Value returns the cell for column as a string. Canonical columns are
// formatted from the typed fields; anything else is looked up in Attributes.
func (tx Transaction) Value(column string) string {
	switch column {
	case ColDate:
		return tx.Date.Format(time.RFC3339Nano)
	case ColProduct:
		return tx.Product
	case ColCategory:
		return tx.Category
	case ColQuantity:
		return strconv.Itoa(tx.Quantity)
	case ColPrice:
		return strconv.FormatFloat(tx.Price, 'f', -1, 64)
	case ColRevenue:
		return strconv.FormatFloat(tx.Revenue, 'f', -1, 64)
	case ColCustomerGender:
		return tx.CustomerGender
	case ColAgeGroup:
		return tx.AgeGroup
	}
	return tx.Attributes[column]
}

// Record renders the canonical columns in CanonicalColumns order.
func (tx Transaction) Record() []string {
	rec := make([]string, len(CanonicalColumns))
	for i, c := range CanonicalColumns {
		rec[i] = tx.Value(c)
	}
	rec[0] = tx.Date.Format("2006-01-02 15:04:05")
	return rec
}

// Table is the canonical transaction table. Rows are sorted by Date.
// Auxiliary lists identifier columns carried through from the source file;
// they are only used for basket grouping.
type Table struct {
	Transactions []Transaction `json:"transactions"`
	Auxiliary    []string      `json:"auxiliary,omitempty"`
}

// Columns returns the canonical columns followed by the auxiliary ones.
func (t *Table) Columns() []string {
	cols := make([]string, 0, len(CanonicalColumns)+len(t.Auxiliary))
	cols = append(cols, CanonicalColumns...)
	return append(cols, t.Auxiliary...)
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Transactions)
}

func (t *Table) Empty() bool {
	return t.Len() == 0
}
