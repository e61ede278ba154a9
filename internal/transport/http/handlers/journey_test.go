package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"corvid/internal/app/server"
	"corvid/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestApp(t *testing.T) *server.App {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:        dbURL,
		FrontendDir:        "frontend/dist",
		Environment:        "test",
		MigrationsDir:      filepath.Join("..", "..", "..", "..", "migrations"),
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		ExportDir:          t.TempDir(),
	}

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func createEmployee(t *testing.T, app *server.App, first, last string) string {
	t.Helper()
	email := fmt.Sprintf("%s.%s.%d@corvid.example", first, last, time.Now().UnixNano())
	var id string
	err := app.DB.QueryRow(context.Background(), `
    INSERT INTO financial_data.employee (first_name, last_name, full_name, email, role)
    VALUES ($1, $2, $3, $4, 'EMPLOYEE')
    RETURNING employee_id
  `, first, last, last+", "+first, email).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create employee: %v", err)
	}
	return id
}

func createMod(t *testing.T, app *server.App, funding float64) string {
	t.Helper()
	modID := fmt.Sprintf("MOD-%d", time.Now().UnixNano())
	_, err := app.DB.Exec(context.Background(), `
    INSERT INTO financial_data.mods (mod_id, charge_code, customer, funding_amount, funding_type, mod_type, contract_type, description, payout_period)
    VALUES ($1, $2, 'Test Customer', $3, 'CPFF', 'New Work', 'Prime', 'journey test mod', '2026-Q1')
  `, modID, "CC-"+modID, funding)
	if err != nil {
		t.Fatalf("failed to create mod: %v", err)
	}
	return modID
}

func doJSON(t *testing.T, client *http.Client, method, url string, payload any) (int, envelope) {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, env
}

func TestAllocationApprovalJourney(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	modID := createMod(t, app, 100000)
	nomineeA := createEmployee(t, app, "Ada", "Nominee")
	nomineeB := createEmployee(t, app, "Ben", "Nominee")
	voterOne := createEmployee(t, app, "Vera", "Voter")
	voterTwo := createEmployee(t, app, "Vik", "Voter")

	// First voter drafts, then submits.
	status, _ := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/save-draft-allocation", map[string]any{
		"modId":       modID,
		"submittedBy": voterOne,
		"allocations": []map[string]any{{"employeeId": nomineeA, "allocation": 50}},
		"notes":       "work in progress",
	})
	if status != http.StatusOK {
		t.Fatalf("expected draft save 200, got %d", status)
	}

	status, env := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/allocation-status/"+modID+"?submittedBy="+voterOne, nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}
	var statuses map[string]string
	if err := json.Unmarshal(env.Data, &statuses); err != nil {
		t.Fatalf("failed to decode statuses: %v", err)
	}
	if statuses["voterStatus"] != "DRAFT_SAVED" {
		t.Fatalf("expected DRAFT_SAVED, got %s", statuses["voterStatus"])
	}

	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/submit-allocation", map[string]any{
		"modId":       modID,
		"submittedBy": voterOne,
		"allocations": []map[string]any{
			{"employeeId": nomineeA, "allocation": 60},
			{"employeeId": nomineeB, "allocation": 40},
		},
		"notes": "final",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected submit 201, got %d", status)
	}

	// Submission clears the draft in the same transaction.
	status, env = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/allocation-status/"+modID+"?submittedBy="+voterOne, nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}
	if err := json.Unmarshal(env.Data, &statuses); err != nil {
		t.Fatalf("failed to decode statuses: %v", err)
	}
	if statuses["voterStatus"] != "SUBMITTED" {
		t.Fatalf("expected SUBMITTED, got %s", statuses["voterStatus"])
	}

	// Second voter only scores one nominee.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/submit-allocation", map[string]any{
		"modId":       modID,
		"submittedBy": voterTwo,
		"allocations": []map[string]any{{"employeeId": nomineeA, "allocation": 100}},
	})
	if status != http.StatusCreated {
		t.Fatalf("expected submit 201, got %d", status)
	}

	// Averages divide by distinct submitters, absent ballots count as zero.
	status, env = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/allocation-summary/"+modID, nil)
	if status != http.StatusOK {
		t.Fatalf("expected summary 200, got %d", status)
	}
	var summary struct {
		Nominees []struct {
			EmployeeID string  `json:"employeeId"`
			Average    float64 `json:"average"`
		} `json:"nominees"`
		Submitters []string `json:"submitters"`
	}
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if len(summary.Submitters) != 2 {
		t.Fatalf("expected 2 submitters, got %d", len(summary.Submitters))
	}
	averages := map[string]float64{}
	for _, nominee := range summary.Nominees {
		averages[nominee.EmployeeID] = nominee.Average
	}
	if averages[nomineeA] != 80 {
		t.Fatalf("expected nominee A average 80, got %v", averages[nomineeA])
	}
	if averages[nomineeB] != 20 {
		t.Fatalf("expected nominee B average 20, got %v", averages[nomineeB])
	}

	// Funding percentage is required before approval.
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/approve-payouts", map[string]any{
		"modId":   modID,
		"payouts": []map[string]any{{"employeeId": nomineeA}},
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected approval without percentage to fail with 400, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "no_payout_percentage" {
		t.Fatalf("expected no_payout_percentage error, got %+v", env.Error)
	}

	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/payout-percentage", map[string]any{
		"modId":            modID,
		"payoutPercentage": 10,
	})
	if status != http.StatusOK {
		t.Fatalf("expected percentage save 200, got %d", status)
	}

	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/approve-payouts", map[string]any{
		"modId": modID,
		"payouts": []map[string]any{
			{"employeeId": nomineeA},
			{"employeeId": nomineeB},
		},
		"financialNotes": "Q1 incentive",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected approval 201, got %d", status)
	}
	var approved []struct {
		EmployeeID string  `json:"employeeId"`
		Amount     float64 `json:"allocationAmount"`
	}
	if err := json.Unmarshal(env.Data, &approved); err != nil {
		t.Fatalf("failed to decode approval: %v", err)
	}
	amounts := map[string]float64{}
	for _, line := range approved {
		amounts[line.EmployeeID] = line.Amount
	}
	// funding 100000 * 10% = 10000 pool; 80% and 20% of that.
	if amounts[nomineeA] != 8000 {
		t.Fatalf("expected nominee A amount 8000, got %v", amounts[nomineeA])
	}
	if amounts[nomineeB] != 2000 {
		t.Fatalf("expected nominee B amount 2000, got %v", amounts[nomineeB])
	}

	// Re-approval overwrites rather than duplicates.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/approve-payouts", map[string]any{
		"modId": modID,
		"payouts": []map[string]any{
			{"employeeId": nomineeA},
			{"employeeId": nomineeB},
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("expected re-approval 201, got %d", status)
	}
	var rowCount int
	if err := app.DB.QueryRow(context.Background(), `
    SELECT COUNT(1) FROM financial_data.approved_allocations WHERE mod_id = $1
  `, modID).Scan(&rowCount); err != nil {
		t.Fatalf("failed to count approved rows: %v", err)
	}
	if rowCount != 2 {
		t.Fatalf("expected 2 approved rows after re-approval, got %d", rowCount)
	}

	status, env = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/allocation-status/"+modID, nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}
	if err := json.Unmarshal(env.Data, &statuses); err != nil {
		t.Fatalf("failed to decode statuses: %v", err)
	}
	if statuses["approverStatus"] != "APPROVED" {
		t.Fatalf("expected APPROVED, got %s", statuses["approverStatus"])
	}
}

func TestSubmitAllocationValidation(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	modID := createMod(t, app, 50000)
	nominee := createEmployee(t, app, "Nora", "Nominee")
	voter := createEmployee(t, app, "Val", "Voter")

	// Totals must hit exactly 100.
	status, env := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/submit-allocation", map[string]any{
		"modId":       modID,
		"submittedBy": voter,
		"allocations": []map[string]any{{"employeeId": nominee, "allocation": 99.5}},
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for partial total, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "total_not_hundred" {
		t.Fatalf("expected total_not_hundred, got %+v", env.Error)
	}

	// A mod with breakouts refuses mod-level ballots.
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/submit-breakout", map[string]any{
		"modId":         modID,
		"chargeCode":    "CC-BRK",
		"fundingAmount": 10000,
		"fundingType":   "CPFF",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected breakout create 201, got %d", status)
	}

	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/submit-allocation", map[string]any{
		"modId":       modID,
		"submittedBy": voter,
		"allocations": []map[string]any{{"employeeId": nominee, "allocation": 100}},
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for mod-level ballot, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "breakout_required" {
		t.Fatalf("expected breakout_required, got %+v", env.Error)
	}
}

func TestBreakoutFundingMismatch(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	modID := createMod(t, app, 100000)

	status, env := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/update-breakouts", map[string]any{
		"modId": modID,
		"breakouts": []map[string]any{
			{"chargeCode": "CC-1", "fundingAmount": 60000, "fundingType": "CPFF"},
			{"chargeCode": "CC-2", "fundingAmount": 30000, "fundingType": "CPFF"},
		},
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for funding mismatch, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "funding_mismatch" {
		t.Fatalf("expected funding_mismatch, got %+v", env.Error)
	}

	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/update-breakouts", map[string]any{
		"modId": modID,
		"breakouts": []map[string]any{
			{"chargeCode": "CC-1", "fundingAmount": 60000, "fundingType": "CPFF"},
			{"chargeCode": "CC-2", "fundingAmount": 40000, "fundingType": "CPFF"},
		},
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 for matching funding, got %d", status)
	}
	var breakouts []struct {
		BreakoutID string `json:"breakoutId"`
	}
	if err := json.Unmarshal(env.Data, &breakouts); err != nil {
		t.Fatalf("failed to decode breakouts: %v", err)
	}
	if len(breakouts) != 2 {
		t.Fatalf("expected 2 breakouts, got %d", len(breakouts))
	}

	// Breakout ids are never reused: replacing the set keeps advancing the
	// letter suffix.
	firstIDs := map[string]bool{}
	for _, b := range breakouts {
		firstIDs[b.BreakoutID] = true
	}
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/update-breakouts", map[string]any{
		"modId": modID,
		"breakouts": []map[string]any{
			{"chargeCode": "CC-3", "fundingAmount": 100000, "fundingType": "CPFF"},
		},
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 for replacement, got %d", status)
	}
	if err := json.Unmarshal(env.Data, &breakouts); err != nil {
		t.Fatalf("failed to decode breakouts: %v", err)
	}
	for _, b := range breakouts {
		if firstIDs[b.BreakoutID] {
			t.Fatalf("breakout id %s was reused", b.BreakoutID)
		}
	}
}

func TestCaptureLeadsSkipUnknownNames(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	modID := createMod(t, app, 75000)
	leadID := createEmployee(t, app, "Lena", "Lead")

	var leadName string
	if err := app.DB.QueryRow(context.Background(), `
    SELECT full_name FROM financial_data.employee WHERE employee_id = $1
  `, leadID).Scan(&leadName); err != nil {
		t.Fatalf("failed to read lead name: %v", err)
	}

	status, env := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/submit-capture-leads", map[string]any{
		"modId":         modID,
		"employeeNames": []string{leadName, "Nobody, Known"},
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var leads []struct {
		EmployeeID string `json:"employeeId"`
	}
	if err := json.Unmarshal(env.Data, &leads); err != nil {
		t.Fatalf("failed to decode leads: %v", err)
	}
	if len(leads) != 1 || leads[0].EmployeeID != leadID {
		t.Fatalf("expected only the known lead, got %+v", leads)
	}
}

func TestDraftApprovalRoundTrip(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	modID := createMod(t, app, 30000)

	status, _ := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/save-draft-approval", map[string]any{
		"modId":          modID,
		"financialNotes": "pending CFO review",
	})
	if status != http.StatusOK {
		t.Fatalf("expected draft approval save 200, got %d", status)
	}

	status, env := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/draft-approval/"+modID, nil)
	if status != http.StatusOK {
		t.Fatalf("expected draft approval read 200, got %d", status)
	}
	var draft struct {
		DraftKey       string `json:"draftKey"`
		FinancialNotes string `json:"financialNotes"`
	}
	if err := json.Unmarshal(env.Data, &draft); err != nil {
		t.Fatalf("failed to decode draft: %v", err)
	}
	if draft.DraftKey != modID+"|MOD_ONLY" {
		t.Fatalf("unexpected draft key %s", draft.DraftKey)
	}
	if draft.FinancialNotes != "pending CFO review" {
		t.Fatalf("unexpected notes %q", draft.FinancialNotes)
	}
}

func TestDraftAllocationRoundTripAndUnsubmit(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	modID := createMod(t, app, 50000)
	nomineeA := createEmployee(t, app, "Nia", "Nominee")
	nomineeB := createEmployee(t, app, "Noel", "Nominee")
	voter := createEmployee(t, app, "Val", "Voter")

	status, _ := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/save-draft-allocation", map[string]any{
		"modId":       modID,
		"submittedBy": voter,
		"allocations": []map[string]any{
			{"employeeId": nomineeA, "allocation": 70},
			{"employeeId": nomineeB, "allocation": 25},
		},
		"notes": "still thinking about the split",
	})
	if status != http.StatusOK {
		t.Fatalf("expected draft save 200, got %d", status)
	}

	// Reading the draft back returns exactly what was saved.
	status, env := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/draft-allocations/"+modID+"?submittedBy="+voter, nil)
	if status != http.StatusOK {
		t.Fatalf("expected draft read 200, got %d", status)
	}
	var view struct {
		Allocations []struct {
			EmployeeID string  `json:"employeeId"`
			Percent    float64 `json:"allocation"`
		} `json:"allocations"`
		Notes string `json:"notes"`
	}
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("failed to decode draft: %v", err)
	}
	if len(view.Allocations) != 2 {
		t.Fatalf("expected 2 draft lines, got %d", len(view.Allocations))
	}
	percents := map[string]float64{}
	for _, line := range view.Allocations {
		percents[line.EmployeeID] = line.Percent
	}
	if percents[nomineeA] != 70 || percents[nomineeB] != 25 {
		t.Fatalf("unexpected draft percentages %v", percents)
	}
	if view.Notes != "still thinking about the split" {
		t.Fatalf("unexpected draft notes %q", view.Notes)
	}

	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/submit-allocation", map[string]any{
		"modId":       modID,
		"submittedBy": voter,
		"allocations": []map[string]any{
			{"employeeId": nomineeA, "allocation": 75},
			{"employeeId": nomineeB, "allocation": 25},
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("expected submit 201, got %d", status)
	}

	// Retracting the submission returns the voter to a clean slate.
	status, _ = doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/unsubmit-allocation/"+modID+"?submittedBy="+voter, nil)
	if status != http.StatusOK {
		t.Fatalf("expected unsubmit 200, got %d", status)
	}

	status, env = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/allocation-status/"+modID+"?submittedBy="+voter, nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}
	var statuses map[string]string
	if err := json.Unmarshal(env.Data, &statuses); err != nil {
		t.Fatalf("failed to decode statuses: %v", err)
	}
	if statuses["voterStatus"] != "NO_DRAFT" {
		t.Fatalf("expected NO_DRAFT after unsubmit, got %s", statuses["voterStatus"])
	}

	status, env = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/allocations/"+modID+"?submittedBy="+voter, nil)
	if status != http.StatusOK {
		t.Fatalf("expected allocations read 200, got %d", status)
	}
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("failed to decode allocations: %v", err)
	}
	if len(view.Allocations) != 0 {
		t.Fatalf("expected no submitted lines after unsubmit, got %d", len(view.Allocations))
	}
}

func TestFlagLifecycle(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	modID := createMod(t, app, 80000)
	nominee := createEmployee(t, app, "Finn", "Nominee")
	voter := createEmployee(t, app, "Faye", "Voter")

	status, env := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/update-breakouts", map[string]any{
		"modId": modID,
		"breakouts": []map[string]any{
			{"chargeCode": "CC-F1", "fundingAmount": 50000, "fundingType": "CPFF"},
			{"chargeCode": "CC-F2", "fundingAmount": 30000, "fundingType": "CPFF"},
		},
	})
	if status != http.StatusOK {
		t.Fatalf("expected breakout creation 200, got %d", status)
	}
	var breakouts []struct {
		BreakoutID string `json:"breakoutId"`
	}
	if err := json.Unmarshal(env.Data, &breakouts); err != nil {
		t.Fatalf("failed to decode breakouts: %v", err)
	}
	if len(breakouts) != 2 {
		t.Fatalf("expected 2 breakouts, got %d", len(breakouts))
	}

	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/flag-for-approval", map[string]any{
		"modId":   modID,
		"flagged": true,
	})
	if status != http.StatusOK {
		t.Fatalf("expected mod flag 200, got %d", status)
	}
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/flag-for-approval", map[string]any{
		"breakoutId": breakouts[0].BreakoutID,
		"flagged":    true,
	})
	if status != http.StatusOK {
		t.Fatalf("expected breakout flag 200, got %d", status)
	}

	status, env = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/allocation-status/"+modID, nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}
	var statuses map[string]string
	if err := json.Unmarshal(env.Data, &statuses); err != nil {
		t.Fatalf("failed to decode statuses: %v", err)
	}
	if statuses["approverStatus"] != "FLAGGED" {
		t.Fatalf("expected FLAGGED before approval, got %s", statuses["approverStatus"])
	}

	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/submit-allocation", map[string]any{
		"modId":       modID,
		"submittedBy": voter,
		"allocations": []map[string]any{{"employeeId": nominee, "allocation": 100}},
	})
	if status != http.StatusCreated {
		t.Fatalf("expected submit 201, got %d", status)
	}

	// The percentage override lets the unit be approved without a saved
	// percentage row and records the total on the way through.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/approve-payouts", map[string]any{
		"modId":            modID,
		"payoutPercentage": 5,
		"payouts":          []map[string]any{{"employeeId": nominee}},
	})
	if status != http.StatusCreated {
		t.Fatalf("expected approval 201, got %d", status)
	}

	var totalPayout float64
	if err := app.DB.QueryRow(context.Background(), `
    SELECT total_payout FROM financial_data.payout_percentages WHERE payout_key = $1
  `, modID+"|MOD_ONLY").Scan(&totalPayout); err != nil {
		t.Fatalf("failed to read total payout: %v", err)
	}
	// funding 80000 * 5% pool, entire pool to the single nominee.
	if totalPayout != 4000 {
		t.Fatalf("expected total payout 4000, got %v", totalPayout)
	}

	// A successful approval clears the mod's flag and its breakouts' flags.
	status, env = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/allocation-status/"+modID, nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}
	if err := json.Unmarshal(env.Data, &statuses); err != nil {
		t.Fatalf("failed to decode statuses: %v", err)
	}
	if statuses["approverStatus"] != "APPROVED" {
		t.Fatalf("expected APPROVED after approval, got %s", statuses["approverStatus"])
	}

	var flaggedBreakouts int
	if err := app.DB.QueryRow(context.Background(), `
    SELECT COUNT(1) FROM financial_data.breakouts WHERE mod_id = $1 AND flagged_for_approval
  `, modID).Scan(&flaggedBreakouts); err != nil {
		t.Fatalf("failed to count flagged breakouts: %v", err)
	}
	if flaggedBreakouts != 0 {
		t.Fatalf("expected breakout flags cleared, got %d still flagged", flaggedBreakouts)
	}
}
