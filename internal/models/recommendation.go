package models

import "strconv"

// PackColumns is the header of the pack suggestion table.
var PackColumns = []string{
	"Pack Name", "Item A", "Item B", "Times Bought Together",
	"Total Value", "Suggested Pack Price (10% Off)", "Savings",
}

// PackCandidate is a product pair frequently bought together, priced as a bundle.
type PackCandidate struct {
	PackName            string  `json:"pack_name"`
	ItemA               string  `json:"item_a"`
	ItemB               string  `json:"item_b"`
	TimesBoughtTogether int     `json:"times_bought_together"`
	TotalValue          float64 `json:"total_value"`
	PackPrice           float64 `json:"suggested_pack_price"`
	Savings             float64 `json:"savings"`
}

// Record renders the candidate in PackColumns order.
func (p PackCandidate) Record() []string {
	return []string{
		p.PackName,
		p.ItemA,
		p.ItemB,
		strconv.Itoa(p.TimesBoughtTogether),
		strconv.FormatFloat(p.TotalValue, 'f', 2, 64),
		strconv.FormatFloat(p.PackPrice, 'f', 2, 64),
		strconv.FormatFloat(p.Savings, 'f', 2, 64),
	}
}

type ProductForecast struct {
	Product        string  `json:"product"`
	PredictedUnits int     `json:"predicted_units_next_30_days"`
	MalePct        float64 `json:"male_pct"`
	FemalePct      float64 `json:"female_pct"`
	TopAgeGroup    string  `json:"top_age_group"`
	TopAgePct      float64 `json:"top_age_pct"`
}

type PriceRecommendation struct {
	Product          string  `json:"product"`
	CurrentAvgPrice  float64 `json:"current_avg_price"`
	RecommendedPrice float64 `json:"recommended_price"`
}

type RegionKey struct {
	Key string `json:"key"`
}

// Targeting holds the ad-platform audience fields we fill in.
type Targeting struct {
	Genders []int       `json:"genders"`
	AgeMin  int         `json:"age_min"`
	AgeMax  int         `json:"age_max"`
	Regions []RegionKey `json:"regions"`
}

type AdSuggestion struct {
	Product   string    `json:"product"`
	Targeting Targeting `json:"suggested_targeting"`
}
