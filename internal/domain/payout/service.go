package payout

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"corvid/internal/domain/allocation"
	"corvid/internal/domain/directory"
)

type Service struct {
	db          *pgxpool.Pool
	allocations *allocation.Service
	directory   *directory.Store
}

func NewService(db *pgxpool.Pool, allocations *allocation.Service, dir *directory.Store) *Service {
	return &Service{db: db, allocations: allocations, directory: dir}
}

// Approve finalizes the unit: for every payout line it takes the approver's
// override or the computed voter average, converts it to dollars from the
// unit's funding and payout percentage, and upserts the approved allocation.
// Flag clearing and draft-approval deletion happen in the same transaction
// as the upserts, so a failed approval leaves no partial state.
func (s *Service) Approve(ctx context.Context, req ApproveRequest) ([]ApprovedResult, error) {
	if len(req.Payouts) == 0 {
		return nil, ErrEmptyApproval
	}

	funding, err := s.unitFunding(ctx, req.ModID, req.BreakoutID)
	if err != nil {
		return nil, err
	}

	pct, err := s.payoutPercentage(ctx, req)
	if err != nil {
		return nil, err
	}

	ballots, err := s.allocations.Ballots(ctx, req.ModID, req.BreakoutID)
	if err != nil {
		return nil, err
	}
	averages := allocation.AverageByNominee(ballots)

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	notes := strings.TrimSpace(req.FinancialNotes)
	var results []ApprovedResult
	var total float64
	for _, line := range req.Payouts {
		average := averages[line.EmployeeID]
		if line.Override != nil {
			average = *line.Override
		}
		amount := allocation.PayoutAmount(funding, pct, average)
		total += amount

		if _, err := tx.Exec(ctx, `
      INSERT INTO financial_data.approved_allocations (mod_id, breakout_id, employee_id, allocation_amount, financial_notes)
      VALUES ($1, $2, $3, $4, $5)
      ON CONFLICT (mod_id, COALESCE(breakout_id, ''), employee_id)
      DO UPDATE SET allocation_amount = EXCLUDED.allocation_amount, financial_notes = EXCLUDED.financial_notes
    `, req.ModID, nullIfEmpty(req.BreakoutID), line.EmployeeID, amount, notes); err != nil {
			return nil, err
		}

		results = append(results, ApprovedResult{EmployeeID: line.EmployeeID, Average: average, Amount: amount})
	}

	// An explicit percentage override may approve a unit that never had a
	// saved percentage row, so the denormalized total is an upsert.
	if _, err := tx.Exec(ctx, `
    INSERT INTO financial_data.payout_percentages (payout_key, mod_id, breakout_id, funding_amount, payout_percentage, total_payout)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (payout_key)
    DO UPDATE SET payout_percentage = EXCLUDED.payout_percentage,
                  funding_amount = EXCLUDED.funding_amount,
                  total_payout = EXCLUDED.total_payout
  `, Key(req.ModID, req.BreakoutID), req.ModID, nullIfEmpty(req.BreakoutID), funding, pct, total); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
    UPDATE financial_data.mods SET flagged_for_approval = false WHERE mod_id = $1
  `, req.ModID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
    UPDATE financial_data.breakouts SET flagged_for_approval = false WHERE mod_id = $1
  `, req.ModID); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
    DELETE FROM financial_data.draft_approvals WHERE draft_key = $1
  `, Key(req.ModID, req.BreakoutID)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if err := s.fillNames(ctx, results); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) unitFunding(ctx context.Context, modID, breakoutID string) (float64, error) {
	var funding float64
	var err error
	if breakoutID != "" {
		err = s.db.QueryRow(ctx, `
      SELECT COALESCE(funding_amount, 0) FROM financial_data.breakouts WHERE breakout_id = $1
    `, breakoutID).Scan(&funding)
	} else {
		err = s.db.QueryRow(ctx, `
      SELECT COALESCE(funding_amount, 0) FROM financial_data.mods WHERE mod_id = $1
    `, modID).Scan(&funding)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUnitNotFound
	}
	return funding, err
}

func (s *Service) payoutPercentage(ctx context.Context, req ApproveRequest) (float64, error) {
	if req.PayoutPercentage != nil {
		return *req.PayoutPercentage, nil
	}
	var pct float64
	err := s.db.QueryRow(ctx, `
    SELECT payout_percentage FROM financial_data.payout_percentages WHERE payout_key = $1
  `, Key(req.ModID, req.BreakoutID)).Scan(&pct)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNoPayoutPercentage
	}
	return pct, err
}

func (s *Service) fillNames(ctx context.Context, results []ApprovedResult) error {
	for i := range results {
		var name string
		err := s.db.QueryRow(ctx, `
      SELECT full_name FROM financial_data.employee WHERE employee_id = $1
    `, results[i].EmployeeID).Scan(&name)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		results[i].FullName = name
	}
	return nil
}

func (s *Service) ListApproved(ctx context.Context, modID, breakoutID string) ([]ApprovedAllocation, error) {
	rows, err := s.db.Query(ctx, `
    SELECT a.mod_id, COALESCE(a.breakout_id, ''), a.employee_id, e.full_name,
           a.allocation_amount, COALESCE(a.financial_notes, '')
    FROM financial_data.approved_allocations a
    JOIN financial_data.employee e ON a.employee_id = e.employee_id
    WHERE a.mod_id = $1 AND a.breakout_id IS NOT DISTINCT FROM $2
    ORDER BY e.full_name
  `, modID, nullIfEmpty(breakoutID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approved []ApprovedAllocation
	for rows.Next() {
		var row ApprovedAllocation
		if err := rows.Scan(&row.ModID, &row.BreakoutID, &row.EmployeeID, &row.FullName, &row.Amount, &row.FinancialNotes); err != nil {
			return nil, err
		}
		approved = append(approved, row)
	}
	return approved, rows.Err()
}

// Summary totals approved dollars and spot bonuses per employee.
func (s *Service) Summary(ctx context.Context) ([]SummaryRow, error) {
	rows, err := s.db.Query(ctx, `
    SELECT e.employee_id, e.full_name,
           COALESCE(a.total_approved, 0),
           COALESCE(t.total_tips, 0)
    FROM financial_data.employee e
    LEFT JOIN (
      SELECT employee_id, SUM(allocation_amount) AS total_approved
      FROM financial_data.approved_allocations
      GROUP BY employee_id
    ) a ON a.employee_id = e.employee_id
    LEFT JOIN (
      SELECT employee_id, SUM(tip_allocation) AS total_tips
      FROM financial_data.tips
      GROUP BY employee_id
    ) t ON t.employee_id = e.employee_id
    WHERE COALESCE(a.total_approved, 0) <> 0 OR COALESCE(t.total_tips, 0) <> 0
    ORDER BY e.full_name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summary []SummaryRow
	for rows.Next() {
		var row SummaryRow
		if err := rows.Scan(&row.EmployeeID, &row.FullName, &row.TotalApproved, &row.TotalTips); err != nil {
			return nil, err
		}
		summary = append(summary, row)
	}
	return summary, rows.Err()
}

// History lists the approved payouts for the employee with the given email.
func (s *Service) History(ctx context.Context, email string) ([]HistoryRow, error) {
	employeeID, err := s.directory.IDByEmail(ctx, email)
	if errors.Is(err, directory.ErrNotFound) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
    SELECT a.mod_id, COALESCE(a.breakout_id, ''),
           COALESCE(b.charge_code, m.charge_code, ''),
           COALESCE(m.payout_period, ''),
           a.allocation_amount, COALESCE(a.financial_notes, '')
    FROM financial_data.approved_allocations a
    JOIN financial_data.mods m ON a.mod_id = m.mod_id
    LEFT JOIN financial_data.breakouts b ON a.breakout_id = b.breakout_id
    WHERE a.employee_id = $1
    ORDER BY a.mod_id, a.breakout_id
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []HistoryRow
	for rows.Next() {
		var row HistoryRow
		if err := rows.Scan(&row.ModID, &row.BreakoutID, &row.ChargeCode, &row.PayoutPeriod, &row.Amount, &row.FinancialNotes); err != nil {
			return nil, err
		}
		history = append(history, row)
	}
	return history, rows.Err()
}

// SavePercentage upserts the editable payout pool percentage for a unit,
// refreshing the denormalized display copies.
func (s *Service) SavePercentage(ctx context.Context, modID, breakoutID string, percentage float64) (PayoutPercentage, error) {
	funding, err := s.unitFunding(ctx, modID, breakoutID)
	if err != nil {
		return PayoutPercentage{}, err
	}

	var chargeCode string
	if breakoutID != "" {
		err = s.db.QueryRow(ctx, `
      SELECT COALESCE(charge_code, '') FROM financial_data.breakouts WHERE breakout_id = $1
    `, breakoutID).Scan(&chargeCode)
	} else {
		err = s.db.QueryRow(ctx, `
      SELECT COALESCE(charge_code, '') FROM financial_data.mods WHERE mod_id = $1
    `, modID).Scan(&chargeCode)
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return PayoutPercentage{}, err
	}

	record := PayoutPercentage{
		PayoutKey:        Key(modID, breakoutID),
		ModID:            modID,
		BreakoutID:       breakoutID,
		ChargeCode:       chargeCode,
		FundingAmount:    funding,
		PayoutPercentage: percentage,
	}

	err = s.db.QueryRow(ctx, `
    INSERT INTO financial_data.payout_percentages (payout_key, mod_id, breakout_id, charge_code, funding_amount, payout_percentage, total_payout)
    VALUES ($1, $2, $3, $4, $5, $6, 0)
    ON CONFLICT (payout_key)
    DO UPDATE SET payout_percentage = EXCLUDED.payout_percentage,
                  charge_code = EXCLUDED.charge_code,
                  funding_amount = EXCLUDED.funding_amount
    RETURNING total_payout
  `, record.PayoutKey, modID, nullIfEmpty(breakoutID), chargeCode, funding, percentage).Scan(&record.TotalPayout)
	if err != nil {
		return PayoutPercentage{}, err
	}
	return record, nil
}

func (s *Service) ListPercentages(ctx context.Context) ([]PayoutPercentage, error) {
	rows, err := s.db.Query(ctx, `
    SELECT payout_key, mod_id, COALESCE(breakout_id, ''), COALESCE(charge_code, ''),
           COALESCE(funding_amount, 0), payout_percentage, total_payout
    FROM financial_data.payout_percentages
    ORDER BY payout_key
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var percentages []PayoutPercentage
	for rows.Next() {
		var row PayoutPercentage
		if err := rows.Scan(&row.PayoutKey, &row.ModID, &row.BreakoutID, &row.ChargeCode, &row.FundingAmount, &row.PayoutPercentage, &row.TotalPayout); err != nil {
			return nil, err
		}
		percentages = append(percentages, row)
	}
	return percentages, rows.Err()
}

// SaveExpectedProfit upserts the user-editable expected profit bucket for a
// (charge code, funding type) pair. ctd_profit and historical_percentage
// are computed upstream and left untouched here.
func (s *Service) SaveExpectedProfit(ctx context.Context, chargeCode, fundingType, bucket string) error {
	valid := false
	for _, candidate := range ExpectedProfitBuckets {
		if bucket == candidate {
			valid = true
			break
		}
	}
	if !valid {
		return ErrUnknownBucket
	}

	_, err := s.db.Exec(ctx, `
    INSERT INTO financial_data.historical_payouts (charge_code, funding_type, ctd_profit, historical_percentage, expected_profit)
    VALUES ($1, $2, 0, 0, $3)
    ON CONFLICT (charge_code, funding_type)
    DO UPDATE SET expected_profit = EXCLUDED.expected_profit
  `, chargeCode, fundingType, bucket)
	return err
}

func (s *Service) ListHistorical(ctx context.Context) ([]HistoricalPayout, error) {
	rows, err := s.db.Query(ctx, `
    SELECT charge_code, funding_type, ctd_profit, historical_percentage, COALESCE(expected_profit, '')
    FROM financial_data.historical_payouts
    ORDER BY charge_code, funding_type
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var historical []HistoricalPayout
	for rows.Next() {
		var row HistoricalPayout
		if err := rows.Scan(&row.ChargeCode, &row.FundingType, &row.CTDProfit, &row.HistoricalPercentage, &row.ExpectedProfit); err != nil {
			return nil, err
		}
		historical = append(historical, row)
	}
	return historical, rows.Err()
}

// SaveDraftApproval keeps the approver's in-progress note for a unit until
// the approval lands.
func (s *Service) SaveDraftApproval(ctx context.Context, modID, breakoutID, financialNotes string) error {
	_, err := s.db.Exec(ctx, `
    INSERT INTO financial_data.draft_approvals (draft_key, mod_id, breakout_id, financial_notes)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (draft_key)
    DO UPDATE SET financial_notes = EXCLUDED.financial_notes
  `, Key(modID, breakoutID), modID, nullIfEmpty(breakoutID), financialNotes)
	return err
}

func (s *Service) DraftApproval(ctx context.Context, modID, breakoutID string) (DraftApproval, error) {
	draft := DraftApproval{DraftKey: Key(modID, breakoutID), ModID: modID, BreakoutID: breakoutID}
	err := s.db.QueryRow(ctx, `
    SELECT COALESCE(financial_notes, '')
    FROM financial_data.draft_approvals
    WHERE draft_key = $1
  `, draft.DraftKey).Scan(&draft.FinancialNotes)
	if errors.Is(err, pgx.ErrNoRows) {
		return draft, nil
	}
	return draft, err
}

// CreateTip records a tip, overwriting any previous tip from the same
// submitter for the same employee.
func (s *Service) CreateTip(ctx context.Context, employeeID, submittedBy string, amount float64) (Tip, error) {
	var count int
	if err := s.db.QueryRow(ctx, `
    SELECT COUNT(1) FROM financial_data.employee WHERE employee_id = ANY($1)
  `, []string{employeeID, submittedBy}).Scan(&count); err != nil {
		return Tip{}, err
	}
	want := 2
	if employeeID == submittedBy {
		want = 1
	}
	if count < want {
		return Tip{}, ErrEmployeeNotFound
	}

	tip := Tip{TipID: uuid.NewString(), EmployeeID: employeeID, SubmittedBy: submittedBy, TipAllocation: amount}
	if _, err := s.db.Exec(ctx, `
    INSERT INTO financial_data.tips (tip_id, employee_id, submitted_by, tip_allocation)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (employee_id, submitted_by)
    DO UPDATE SET tip_allocation = EXCLUDED.tip_allocation
  `, tip.TipID, employeeID, submittedBy, amount); err != nil {
		return Tip{}, err
	}
	return tip, nil
}

func (s *Service) ListTips(ctx context.Context) ([]Tip, error) {
	rows, err := s.db.Query(ctx, `
    SELECT t.tip_id, t.employee_id, e.full_name, t.submitted_by, v.full_name, t.tip_allocation
    FROM financial_data.tips t
    JOIN financial_data.employee e ON t.employee_id = e.employee_id
    JOIN financial_data.employee v ON t.submitted_by = v.employee_id
    ORDER BY e.full_name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tips []Tip
	for rows.Next() {
		var tip Tip
		if err := rows.Scan(&tip.TipID, &tip.EmployeeID, &tip.FullName, &tip.SubmittedBy, &tip.SubmittedByName, &tip.TipAllocation); err != nil {
			return nil, err
		}
		tips = append(tips, tip)
	}
	return tips, rows.Err()
}

func (s *Service) UpdateTip(ctx context.Context, employeeID, submittedBy string, amount float64) error {
	tag, err := s.db.Exec(ctx, `
    UPDATE financial_data.tips
    SET tip_allocation = $1
    WHERE employee_id = $2 AND submitted_by = $3
  `, amount, employeeID, submittedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTipNotFound
	}
	return nil
}

func (s *Service) DeleteTip(ctx context.Context, employeeID, submittedBy string) error {
	tag, err := s.db.Exec(ctx, `
    DELETE FROM financial_data.tips
    WHERE employee_id = $1 AND submitted_by = $2
  `, employeeID, submittedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTipNotFound
	}
	return nil
}

func nullIfEmpty(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
