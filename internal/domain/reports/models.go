package reports

type IncomeData struct {
	Entity   string  `json:"entity"`
	Year     int     `json:"year"`
	Period   int     `json:"period"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// ConsolidatedEntity is the pseudo-entity meaning "no entity filter".
const ConsolidatedEntity = "Consolidated"

type GroupedAmount struct {
	Category string  `json:"category"`
	Period   int     `json:"period"`
	Amount   float64 `json:"amount"`
}

type NetIncome struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
}

type SummaryRow struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	TotalAmount float64 `json:"totalAmount"`
}

type ChartRow struct {
	Period      int     `json:"period"`
	Category    string  `json:"category"`
	TotalAmount float64 `json:"totalAmount"`
}
