package allocation

import "errors"

var (
	ErrEmptySubmission  = errors.New("submission has no allocation lines")
	ErrTotalNotHundred  = errors.New("allocation percentages must sum to exactly 100")
	ErrBreakoutRequired = errors.New("mod has breakouts; allocations must be entered per breakout")
	ErrNomineeUnknown   = errors.New("nominee is not a known employee")
	ErrSubmitterUnknown = errors.New("submitter is not a known employee")
)
