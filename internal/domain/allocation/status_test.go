package allocation

import "testing"

func TestVoterStatus(t *testing.T) {
	cases := []struct {
		submitted bool
		draft     bool
		want      string
	}{
		{false, false, StatusNoDraft},
		{false, true, StatusDraftSaved},
		{true, false, StatusSubmitted},
		{true, true, StatusSubmitted},
	}
	for _, tc := range cases {
		if got := VoterStatus(tc.submitted, tc.draft); got != tc.want {
			t.Errorf("VoterStatus(%v, %v) = %s, want %s", tc.submitted, tc.draft, got, tc.want)
		}
	}
}

func TestApproverStatus(t *testing.T) {
	cases := []struct {
		approved bool
		flagged  bool
		want     string
	}{
		{false, false, StatusUnapproved},
		{false, true, StatusFlagged},
		{true, false, StatusApproved},
		{true, true, StatusApproved},
	}
	for _, tc := range cases {
		if got := ApproverStatus(tc.approved, tc.flagged); got != tc.want {
			t.Errorf("ApproverStatus(%v, %v) = %s, want %s", tc.approved, tc.flagged, got, tc.want)
		}
	}
}
