package loader

// Field is a canonical semantic column the mapper tries to resolve.
type Field string

const (
	FieldDate     Field = "date"
	FieldProduct  Field = "product"
	FieldCategory Field = "category"
	FieldQuantity Field = "quantity"
	FieldRevenue  Field = "revenue"
	FieldPrice    Field = "price"
	FieldGender   Field = "gender"
	FieldAge      Field = "age"
	FieldStatus   Field = "status"
)

// KeywordSet is the lower-case vocabulary recognised for one field.
type KeywordSet struct {
	Field    Field
	Keywords []string
}

// KeywordTable maps every field to its vocabulary. Order matters: candidates
// are collected field by field, which decides ties in the greedy assignment.
type KeywordTable []KeywordSet

// DefaultKeywords covers English and French export headers.
var DefaultKeywords = KeywordTable{
	{FieldDate, []string{"date", "time", "jour", "heure", "created_at", "timestamp", "order_date"}},
	{FieldProduct, []string{"product", "item", "produit", "article", "name", "designation", "sku", "model"}},
	{FieldCategory, []string{"category", "cat", "type", "famille", "rayon", "group", "product_category"}},
	{FieldQuantity, []string{"qty", "quantity", "qte", "qté", "quantité", "units", "count", "nombre", "volume", "order_quantity"}},
	{FieldRevenue, []string{"rev", "revenue", "sales", "total", "amount", "montant", "prix_total", "ttc", "turnover", "ca"}},
	{FieldPrice, []string{"price", "prix", "unit_price", "selling_price", "tarif", "pu", "unitaire", "cost", "unit_cost", "product_price"}},
	{FieldGender, []string{"gender", "sex", "genre", "sexe", "civilite", "customer_gender"}},
	{FieldAge, []string{"age", "birth", "naissance", "customer_age", "age_group"}},
	{FieldStatus, []string{"status", "etat", "statut", "delivery", "shipment", "order_status"}},
}

// Vocabulary flattens every keyword of the table, field order preserved.
func (kt KeywordTable) Vocabulary() []string {
	var all []string
	for _, set := range kt {
		all = append(all, set.Keywords...)
	}
	return all
}

// productBlacklist disqualifies a column from the product field when its
// normalized name contains any of these.
var productBlacklist = []string{
	"price", "cost", "revenue", "total", "amount", "qty", "quantity", "date", "id", "category",
}

// cancelledStatuses are dropped before any other processing.
var cancelledStatuses = map[string]struct{}{
	"cancelled": {},
	"canceled":  {},
	"annule":    {},
	"annulé":    {},
	"returned":  {},
	"retour":    {},
	"refunded":  {},
}

var genderAliases = map[string]string{
	"M":      "Male",
	"MALE":   "Male",
	"HOMME":  "Male",
	"MR":     "Male",
	"F":      "Female",
	"FEMALE": "Female",
	"FEMME":  "Female",
	"MME":    "Female",
}
