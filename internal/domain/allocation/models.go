package allocation

type Line struct {
	EmployeeID string  `json:"employeeId"`
	FullName   string  `json:"fullName"`
	Percent    float64 `json:"allocation"`
}

type Submission struct {
	ModID       string
	BreakoutID  string
	SubmittedBy string
	Lines       []Line
	Notes       string
}

// Ballot is one voter's percentage for one nominee on one unit, as stored.
type Ballot struct {
	SubmittedBy string  `json:"submittedBy"`
	EmployeeID  string  `json:"employeeId"`
	Percent     float64 `json:"allocation"`
}

type SubmissionView struct {
	Allocations []Line `json:"allocations"`
	Notes       string `json:"notes"`
}

// NomineeSummary aggregates every submitter's vote for one nominee on one
// unit, with the arithmetic-mean average the approver starts from.
type NomineeSummary struct {
	EmployeeID string             `json:"employeeId"`
	FullName   string             `json:"fullName"`
	Votes      map[string]float64 `json:"votes"`
	Average    float64            `json:"average"`
}

type UnitSummary struct {
	ModID      string           `json:"modId"`
	BreakoutID string           `json:"breakoutId,omitempty"`
	Submitters []string         `json:"submitters"`
	Nominees   []NomineeSummary `json:"nominees"`
}

// Voter workflow states for a unit.
const (
	StatusNoDraft    = "NO_DRAFT"
	StatusDraftSaved = "DRAFT_SAVED"
	StatusSubmitted  = "SUBMITTED"
)

// Approver workflow states for a unit.
const (
	StatusUnapproved = "UNAPPROVED"
	StatusFlagged    = "FLAGGED"
	StatusApproved   = "APPROVED"
)
