package shared

import "testing"

func TestValidatorCollectsAndSortsIssues(t *testing.T) {
	v := NewValidator()
	v.Required("modId", "", "mod id is required")
	v.Percent("allocation", 120)
	v.Positive("fundingAmount", 0, "must be positive")

	if !v.HasIssues() {
		t.Fatal("expected issues")
	}
	issues := v.Issues()
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %d", len(issues))
	}
	if issues[0].Field != "allocation" {
		t.Fatalf("expected issues sorted by field, got %s first", issues[0].Field)
	}
}

func TestValidatorEnum(t *testing.T) {
	v := NewValidator()
	v.Enum("expectedProfit", "10", []string{"<0", "5", "10", "15", ">15"}, "unknown bucket")
	if v.HasIssues() {
		t.Fatalf("expected no issues for valid bucket, got %v", v.Issues())
	}

	v.Enum("expectedProfit", "20", []string{"<0", "5", "10", "15", ">15"}, "unknown bucket")
	if !v.HasIssues() {
		t.Fatal("expected issue for unknown bucket")
	}
}

func TestValidatorPercentBounds(t *testing.T) {
	v := NewValidator()
	v.Percent("allocation", 0)
	v.Percent("allocation", 100)
	if v.HasIssues() {
		t.Fatalf("0 and 100 are valid percentages, got %v", v.Issues())
	}
	v.Percent("allocation", -1)
	if !v.HasIssues() {
		t.Fatal("expected issue for negative percentage")
	}
}
