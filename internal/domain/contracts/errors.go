package contracts

import (
	"errors"
	"fmt"
)

var (
	ErrModNotFound      = errors.New("mod not found")
	ErrBreakoutNotFound = errors.New("breakout not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrUnitAmbiguous    = errors.New("a mod id or breakout id is required")
)

// FundingMismatchError reports a bulk breakout submission whose funding does
// not add up to the parent mod's funding amount.
type FundingMismatchError struct {
	ParentFunding    float64
	SubmittedFunding float64
}

func (e *FundingMismatchError) Error() string {
	return fmt.Sprintf("breakout funding must equal parent funding %.2f; %.2f remains unallocated", e.ParentFunding, e.Remaining())
}

func (e *FundingMismatchError) Remaining() float64 {
	return e.ParentFunding - e.SubmittedFunding
}
