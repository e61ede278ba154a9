package payout

import "errors"

var (
	ErrNoPayoutPercentage = errors.New("no payout percentage recorded for unit")
	ErrUnitNotFound       = errors.New("fundable unit not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrTipNotFound        = errors.New("tip not found")
	ErrEmptyApproval      = errors.New("approval has no payout lines")
	ErrUnknownBucket      = errors.New("expected profit must be one of the known buckets")
)
