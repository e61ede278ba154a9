package contracts

type Mod struct {
	ModID              string  `json:"modId"`
	ChargeCode         string  `json:"chargeCode"`
	Customer           string  `json:"customer"`
	FundingAmount      float64 `json:"fundingAmount"`
	FundingType        string  `json:"fundingType"`
	ModType            string  `json:"modType"`
	ContractType       string  `json:"contractType"`
	Description        string  `json:"description"`
	FlaggedForApproval bool    `json:"flaggedForApproval"`
	PayoutPeriod       string  `json:"payoutPeriod"`
}

type ModDetails struct {
	Customer     string `json:"customer"`
	ModType      string `json:"modType"`
	ContractType string `json:"contractType"`
	Description  string `json:"description"`
}

type Breakout struct {
	BreakoutID         string  `json:"breakoutId"`
	ModID              string  `json:"modId"`
	ChargeCode         string  `json:"chargeCode"`
	FundingAmount      float64 `json:"fundingAmount"`
	FundingType        string  `json:"fundingType"`
	FlaggedForApproval bool    `json:"flaggedForApproval"`
}

type BreakoutInput struct {
	ChargeCode    string  `json:"chargeCode"`
	FundingAmount float64 `json:"fundingAmount"`
	FundingType   string  `json:"fundingType"`
}

type CaptureLead struct {
	EmployeeID string `json:"employeeId"`
	FullName   string `json:"fullName"`
}

// UnitRef identifies a fundable unit: a mod, or one of its breakouts.
// BreakoutID empty means the mod itself.
type UnitRef struct {
	ModID      string
	BreakoutID string
}

func (u UnitRef) IsBreakout() bool {
	return u.BreakoutID != ""
}
