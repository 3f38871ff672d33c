package models

type KPIs struct {
	TotalRevenue          float64 `json:"total_revenue"`
	TotalOrders           int     `json:"total_orders"`
	AverageOrderValue     float64 `json:"average_order_value"`
	MostProfitableProduct string  `json:"most_profitable_product"`
	TopCategory           string  `json:"top_category"`
	BestDay               string  `json:"best_day"`
}

type MonthlyRevenue struct {
	Year    int     `json:"year"`
	Month   string  `json:"month"`
	MonthNo int     `json:"month_no"`
	Revenue float64 `json:"revenue"`
}

type ParetoEntry struct {
	Product       string  `json:"product"`
	Revenue       float64 `json:"revenue"`
	CumulativePct float64 `json:"cumulative_pct"`
}

type CategoryRevenue struct {
	Category string  `json:"category"`
	Product  string  `json:"product"`
	Revenue  float64 `json:"revenue"`
}

type ProductPoint struct {
	Product  string  `json:"product"`
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Quantity int     `json:"quantity"`
	AvgPrice float64 `json:"avg_price"`
}
