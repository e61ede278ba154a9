package allocation

import "math"

const sumTolerance = 1e-9

// ValidTotal reports whether the submitted percentages sum to exactly 100.
func ValidTotal(lines []Line) bool {
	var total float64
	for _, line := range lines {
		total += line.Percent
	}
	return math.Abs(total-100) <= sumTolerance
}

// AverageByNominee computes the arithmetic mean percentage per nominee
// across every submitter that voted on the unit. A submitter with no ballot
// for a given nominee counts as 0 for that nominee, so the denominator is
// always the number of distinct submitters.
func AverageByNominee(ballots []Ballot) map[string]float64 {
	submitters := map[string]struct{}{}
	sums := map[string]float64{}
	for _, ballot := range ballots {
		submitters[ballot.SubmittedBy] = struct{}{}
		sums[ballot.EmployeeID] += ballot.Percent
	}

	averages := make(map[string]float64, len(sums))
	denominator := float64(len(submitters))
	if denominator == 0 {
		return averages
	}
	for nominee, sum := range sums {
		averages[nominee] = sum / denominator
	}
	return averages
}

// PayoutAmount converts a nominee's average share of a unit into dollars:
// funding * payoutPercent/100 * average/100, rounded to cents.
func PayoutAmount(fundingAmount, payoutPercent, average float64) float64 {
	amount := fundingAmount * (payoutPercent / 100) * (average / 100)
	return math.Round(amount*100) / 100
}
