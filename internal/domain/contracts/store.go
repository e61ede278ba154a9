package contracts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListMods(ctx context.Context) ([]Mod, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT mod_id, COALESCE(charge_code, ''), COALESCE(customer, ''),
           COALESCE(funding_amount, 0), COALESCE(funding_type, ''),
           COALESCE(mod_type, ''), COALESCE(contract_type, ''),
           COALESCE(description, ''), flagged_for_approval,
           COALESCE(payout_period, '')
    FROM financial_data.mods
    ORDER BY mod_id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMods(rows)
}

func (s *Store) GetModDetails(ctx context.Context, modID string) (ModDetails, error) {
	var details ModDetails
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(customer, ''), COALESCE(mod_type, ''),
           COALESCE(contract_type, ''), COALESCE(description, '')
    FROM financial_data.mods
    WHERE mod_id = $1
  `, modID).Scan(&details.Customer, &details.ModType, &details.ContractType, &details.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return ModDetails{}, ErrModNotFound
	}
	return details, err
}

func (s *Store) ModFunding(ctx context.Context, modID string) (float64, error) {
	var funding float64
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(funding_amount, 0)
    FROM financial_data.mods
    WHERE mod_id = $1
  `, modID).Scan(&funding)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrModNotFound
	}
	return funding, err
}

// ListModsForCaptureLead returns the mods on which the employee with the
// given email is recorded as a capture lead.
func (s *Store) ListModsForCaptureLead(ctx context.Context, email string) ([]Mod, error) {
	var employeeID string
	err := s.DB.QueryRow(ctx, `
    SELECT employee_id
    FROM financial_data.employee
    WHERE email = $1
  `, email).Scan(&employeeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT m.mod_id, COALESCE(m.charge_code, ''), COALESCE(m.customer, ''),
           COALESCE(m.funding_amount, 0), COALESCE(m.funding_type, ''),
           COALESCE(m.mod_type, ''), COALESCE(m.contract_type, ''),
           COALESCE(m.description, ''), m.flagged_for_approval,
           COALESCE(m.payout_period, '')
    FROM financial_data.mods m
    WHERE m.mod_id IN (
      SELECT cl.mod_id
      FROM financial_data.capture_leads cl
      WHERE cl.employee_id = $1 AND cl.mod_id IS NOT NULL
    )
    ORDER BY m.mod_id
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMods(rows)
}

func (s *Store) ListBreakouts(ctx context.Context, modID string) ([]Breakout, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT breakout_id, mod_id, COALESCE(charge_code, ''),
           COALESCE(funding_amount, 0), COALESCE(funding_type, ''),
           flagged_for_approval
    FROM financial_data.breakouts
    WHERE mod_id = $1
    ORDER BY breakout_id
  `, modID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var breakouts []Breakout
	for rows.Next() {
		var b Breakout
		if err := rows.Scan(&b.BreakoutID, &b.ModID, &b.ChargeCode, &b.FundingAmount, &b.FundingType, &b.FlaggedForApproval); err != nil {
			return nil, err
		}
		breakouts = append(breakouts, b)
	}
	return breakouts, rows.Err()
}

func (s *Store) HasBreakouts(ctx context.Context, modID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM financial_data.breakouts
    WHERE mod_id = $1
  `, modID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListCaptureLeads(ctx context.Context, unit UnitRef) ([]CaptureLead, error) {
	query := `
    SELECT e.employee_id, e.full_name
    FROM financial_data.capture_leads cl
    JOIN financial_data.employee e ON cl.employee_id = e.employee_id
    WHERE cl.mod_id = $1
    ORDER BY e.full_name
  `
	arg := unit.ModID
	if unit.IsBreakout() {
		query = `
      SELECT e.employee_id, e.full_name
      FROM financial_data.capture_leads cl
      JOIN financial_data.employee e ON cl.employee_id = e.employee_id
      WHERE cl.breakout_id = $1
      ORDER BY e.full_name
    `
		arg = unit.BreakoutID
	}

	rows, err := s.DB.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []CaptureLead
	for rows.Next() {
		var lead CaptureLead
		if err := rows.Scan(&lead.EmployeeID, &lead.FullName); err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func scanMods(rows pgx.Rows) ([]Mod, error) {
	var mods []Mod
	for rows.Next() {
		var m Mod
		if err := rows.Scan(&m.ModID, &m.ChargeCode, &m.Customer, &m.FundingAmount, &m.FundingType, &m.ModType, &m.ContractType, &m.Description, &m.FlaggedForApproval, &m.PayoutPeriod); err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
	return mods, rows.Err()
}

