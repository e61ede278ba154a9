package allocation

import (
	"math"
	"testing"
)

func TestValidTotal(t *testing.T) {
	cases := []struct {
		name     string
		percents []float64
		want     bool
	}{
		{"exact hundred", []float64{60, 40}, true},
		{"single line", []float64{100}, true},
		{"fractional parts", []float64{33.3, 33.3, 33.4}, true},
		{"ninety nine", []float64{60, 39}, false},
		{"hundred and one", []float64{60, 41}, false},
		{"empty", nil, false},
	}
	for _, tc := range cases {
		var lines []Line
		for _, p := range tc.percents {
			lines = append(lines, Line{Percent: p})
		}
		if got := ValidTotal(lines); got != tc.want {
			t.Errorf("%s: ValidTotal = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAverageByNomineeCountsAbsentSubmittersAsZero(t *testing.T) {
	ballots := []Ballot{
		{SubmittedBy: "v1", EmployeeID: "smith", Percent: 100},
		{SubmittedBy: "v2", EmployeeID: "smith", Percent: 50},
		{SubmittedBy: "v2", EmployeeID: "jones", Percent: 50},
	}

	averages := AverageByNominee(ballots)
	if got := averages["smith"]; got != 75 {
		t.Fatalf("expected smith average 75, got %v", got)
	}
	// v1 never voted on jones; the absent ballot counts as 0.
	if got := averages["jones"]; got != 25 {
		t.Fatalf("expected jones average 25, got %v", got)
	}
}

func TestAverageByNomineeEmpty(t *testing.T) {
	if averages := AverageByNominee(nil); len(averages) != 0 {
		t.Fatalf("expected empty map, got %v", averages)
	}
}

func TestPayoutAmountScenario(t *testing.T) {
	// Mod funded at 100000 with a 10% payout pool; both submitters gave the
	// nominee 100%.
	ballots := []Ballot{
		{SubmittedBy: "v1", EmployeeID: "smith", Percent: 100},
		{SubmittedBy: "v2", EmployeeID: "smith", Percent: 100},
	}
	average := AverageByNominee(ballots)["smith"]
	if average != 100 {
		t.Fatalf("expected average 100, got %v", average)
	}

	payout := PayoutAmount(100000, 10, average)
	if payout != 10000.00 {
		t.Fatalf("expected payout 10000.00, got %v", payout)
	}
}

func TestPayoutAmountRoundsToCents(t *testing.T) {
	payout := PayoutAmount(100000, 10, 33.333)
	if math.Abs(payout-3333.30) > 1e-9 {
		t.Fatalf("expected 3333.30, got %v", payout)
	}

	payout = PayoutAmount(12345.67, 7.5, 41.2)
	want := math.Round(12345.67*0.075*0.412*100) / 100
	if payout != want {
		t.Fatalf("expected %v, got %v", want, payout)
	}
}
