package payout

// ModOnly marks a payout or draft key that refers to the mod itself rather
// than one of its breakouts.
const ModOnly = "MOD_ONLY"

type PayoutLine struct {
	EmployeeID string   `json:"employeeId"`
	Override   *float64 `json:"override,omitempty"`
}

type ApproveRequest struct {
	ModID            string
	BreakoutID       string
	Payouts          []PayoutLine
	FinancialNotes   string
	PayoutPercentage *float64
}

type ApprovedResult struct {
	EmployeeID string  `json:"employeeId"`
	FullName   string  `json:"fullName"`
	Average    float64 `json:"average"`
	Amount     float64 `json:"allocationAmount"`
}

type ApprovedAllocation struct {
	ModID          string  `json:"modId"`
	BreakoutID     string  `json:"breakoutId,omitempty"`
	EmployeeID     string  `json:"employeeId"`
	FullName       string  `json:"fullName"`
	Amount         float64 `json:"allocationAmount"`
	FinancialNotes string  `json:"financialNotes"`
}

type PayoutPercentage struct {
	PayoutKey        string  `json:"payoutKey"`
	ModID            string  `json:"modId"`
	BreakoutID       string  `json:"breakoutId,omitempty"`
	ChargeCode       string  `json:"chargeCode"`
	FundingAmount    float64 `json:"fundingAmount"`
	PayoutPercentage float64 `json:"payoutPercentage"`
	TotalPayout      float64 `json:"totalPayout"`
}

type HistoricalPayout struct {
	ChargeCode           string  `json:"chargeCode"`
	FundingType          string  `json:"fundingType"`
	CTDProfit            float64 `json:"ctdProfit"`
	HistoricalPercentage float64 `json:"historicalPercentage"`
	ExpectedProfit       string  `json:"expectedProfit"`
}

// ExpectedProfitBuckets is the fixed set of labels the expected-profit field
// accepts. They are buckets, not numbers.
var ExpectedProfitBuckets = []string{"<0", "5", "10", "15", ">15"}

type DraftApproval struct {
	DraftKey       string `json:"draftKey"`
	ModID          string `json:"modId"`
	BreakoutID     string `json:"breakoutId,omitempty"`
	FinancialNotes string `json:"financialNotes"`
}

type Tip struct {
	TipID           string  `json:"tipId"`
	EmployeeID      string  `json:"employeeId"`
	FullName        string  `json:"fullName"`
	SubmittedBy     string  `json:"submittedBy"`
	SubmittedByName string  `json:"submittedByName"`
	TipAllocation   float64 `json:"tipAllocation"`
}

type SummaryRow struct {
	EmployeeID    string  `json:"employeeId"`
	FullName      string  `json:"fullName"`
	TotalApproved float64 `json:"totalApproved"`
	TotalTips     float64 `json:"totalTips"`
}

type HistoryRow struct {
	ModID          string  `json:"modId"`
	BreakoutID     string  `json:"breakoutId,omitempty"`
	ChargeCode     string  `json:"chargeCode"`
	PayoutPeriod   string  `json:"payoutPeriod"`
	Amount         float64 `json:"allocationAmount"`
	FinancialNotes string  `json:"financialNotes"`
}

// Key builds the synthetic key used by payout_percentages and
// draft_approvals: "{mod_id}|{breakout_id or MOD_ONLY}".
func Key(modID, breakoutID string) string {
	if breakoutID == "" {
		return modID + "|" + ModOnly
	}
	return modID + "|" + breakoutID
}
