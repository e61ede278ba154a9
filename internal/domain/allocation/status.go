package allocation

// VoterStatus derives the voter-side workflow state for one (unit,
// submitter) pair. A submitted set wins over a lingering draft.
func VoterStatus(hasSubmitted, hasDraft bool) string {
	switch {
	case hasSubmitted:
		return StatusSubmitted
	case hasDraft:
		return StatusDraftSaved
	default:
		return StatusNoDraft
	}
}

// ApproverStatus derives the approver-side workflow state for a unit.
// Approval is terminal; the flag only matters while unapproved.
func ApproverStatus(approved, flagged bool) string {
	switch {
	case approved:
		return StatusApproved
	case flagged:
		return StatusFlagged
	default:
		return StatusUnapproved
	}
}
