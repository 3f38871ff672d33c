package models

// OrderIDTokens mark a column as an explicit order identifier.
var OrderIDTokens = []string{"order_id", "transaction_id", "invoice_no", "basket_id"}

// ProxyColumns approximate an order boundary when no identifier exists,
// in priority order.
var ProxyColumns = []string{
	"Customer_ID", "Customer_Name", "Email", "Phone", "Country",
	"Region", "State", "City", ColCustomerGender, ColAgeGroup,
}
