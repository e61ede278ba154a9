package contracts

import (
	"context"
	"errors"
	"math"

	"github.com/jackc/pgx/v5"

	"corvid/internal/domain/directory"
)

type Service struct {
	store     *Store
	directory *directory.Store
}

func NewService(store *Store, dir *directory.Store) *Service {
	return &Service{store: store, directory: dir}
}

func (s *Service) Store() *Store {
	return s.store
}

// CreateBreakout allocates the next breakout id for the mod and inserts the
// breakout. Mod-level capture leads are copied onto the new breakout, the
// same way the mod's leads carry over when funding is split.
func (s *Service) CreateBreakout(ctx context.Context, modID string, input BreakoutInput) (string, error) {
	tx, err := s.store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	breakoutID, err := nextBreakoutID(ctx, tx, modID)
	if err != nil {
		return "", err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO financial_data.breakouts (breakout_id, mod_id, charge_code, funding_amount, funding_type)
    VALUES ($1, $2, $3, $4, $5)
  `, breakoutID, modID, input.ChargeCode, input.FundingAmount, input.FundingType); err != nil {
		return "", err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO financial_data.capture_leads (breakout_id, employee_id)
    SELECT $1, employee_id
    FROM financial_data.capture_leads
    WHERE mod_id = $2
  `, breakoutID, modID); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return breakoutID, nil
}

// ReplaceBreakouts deletes the mod's breakouts and re-inserts the submitted
// set with freshly assigned ids, in one transaction. The submitted funding
// must equal the parent mod's funding exactly. Capture leads previously
// recorded against the old breakouts are re-associated with every new
// breakout; id regeneration makes a per-breakout correspondence impossible.
func (s *Service) ReplaceBreakouts(ctx context.Context, modID string, inputs []BreakoutInput) ([]Breakout, error) {
	parentFunding, err := s.store.ModFunding(ctx, modID)
	if err != nil {
		return nil, err
	}

	var submitted float64
	for _, input := range inputs {
		submitted += input.FundingAmount
	}
	if math.Abs(submitted-parentFunding) > 1e-9 {
		return nil, &FundingMismatchError{ParentFunding: parentFunding, SubmittedFunding: submitted}
	}

	tx, err := s.store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	leadRows, err := tx.Query(ctx, `
    SELECT DISTINCT cl.employee_id
    FROM financial_data.capture_leads cl
    JOIN financial_data.breakouts b ON cl.breakout_id = b.breakout_id
    WHERE b.mod_id = $1
  `, modID)
	if err != nil {
		return nil, err
	}
	var priorLeads []string
	for leadRows.Next() {
		var employeeID string
		if err := leadRows.Scan(&employeeID); err != nil {
			leadRows.Close()
			return nil, err
		}
		priorLeads = append(priorLeads, employeeID)
	}
	leadRows.Close()
	if err := leadRows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
    DELETE FROM financial_data.capture_leads
    WHERE breakout_id IN (SELECT breakout_id FROM financial_data.breakouts WHERE mod_id = $1)
  `, modID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
    DELETE FROM financial_data.breakouts WHERE mod_id = $1
  `, modID); err != nil {
		return nil, err
	}

	var created []Breakout
	for _, input := range inputs {
		breakoutID, err := nextBreakoutID(ctx, tx, modID)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO financial_data.breakouts (breakout_id, mod_id, charge_code, funding_amount, funding_type)
      VALUES ($1, $2, $3, $4, $5)
    `, breakoutID, modID, input.ChargeCode, input.FundingAmount, input.FundingType); err != nil {
			return nil, err
		}
		for _, employeeID := range priorLeads {
			if _, err := tx.Exec(ctx, `
        INSERT INTO financial_data.capture_leads (breakout_id, employee_id)
        VALUES ($1, $2)
      `, breakoutID, employeeID); err != nil {
				return nil, err
			}
		}
		created = append(created, Breakout{
			BreakoutID:    breakoutID,
			ModID:         modID,
			ChargeCode:    input.ChargeCode,
			FundingAmount: input.FundingAmount,
			FundingType:   input.FundingType,
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) DeleteBreakout(ctx context.Context, breakoutID string) error {
	tx, err := s.store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    DELETE FROM financial_data.capture_leads WHERE breakout_id = $1
  `, breakoutID); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
    DELETE FROM financial_data.breakouts WHERE breakout_id = $1
  `, breakoutID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBreakoutNotFound
	}
	return tx.Commit(ctx)
}

// ReplaceCaptureLeads resolves the given full names to employee ids, drops
// every existing lead for the unit and inserts the resolved set. Names with
// no matching employee are skipped, not errors.
func (s *Service) ReplaceCaptureLeads(ctx context.Context, unit UnitRef, fullNames []string) ([]CaptureLead, error) {
	if unit.ModID == "" && unit.BreakoutID == "" {
		return nil, ErrUnitAmbiguous
	}

	var resolved []CaptureLead
	for _, name := range fullNames {
		employeeID, err := s.directory.IDByFullName(ctx, name)
		if errors.Is(err, directory.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, CaptureLead{EmployeeID: employeeID, FullName: name})
	}

	tx, err := s.store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if unit.IsBreakout() {
		if _, err := tx.Exec(ctx, `
      DELETE FROM financial_data.capture_leads WHERE breakout_id = $1
    `, unit.BreakoutID); err != nil {
			return nil, err
		}
		for _, lead := range resolved {
			if _, err := tx.Exec(ctx, `
        INSERT INTO financial_data.capture_leads (breakout_id, employee_id)
        VALUES ($1, $2)
      `, unit.BreakoutID, lead.EmployeeID); err != nil {
				return nil, err
			}
		}
	} else {
		if _, err := tx.Exec(ctx, `
      DELETE FROM financial_data.capture_leads WHERE mod_id = $1
    `, unit.ModID); err != nil {
			return nil, err
		}
		for _, lead := range resolved {
			if _, err := tx.Exec(ctx, `
        INSERT INTO financial_data.capture_leads (mod_id, employee_id)
        VALUES ($1, $2)
      `, unit.ModID, lead.EmployeeID); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return resolved, nil
}

// SetFlag toggles the advisory flagged-for-approval marker on a mod or
// breakout.
func (s *Service) SetFlag(ctx context.Context, unit UnitRef, flagged bool) error {
	if unit.IsBreakout() {
		tag, err := s.store.DB.Exec(ctx, `
      UPDATE financial_data.breakouts SET flagged_for_approval = $1 WHERE breakout_id = $2
    `, flagged, unit.BreakoutID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrBreakoutNotFound
		}
		return nil
	}

	tag, err := s.store.DB.Exec(ctx, `
    UPDATE financial_data.mods SET flagged_for_approval = $1 WHERE mod_id = $2
  `, flagged, unit.ModID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrModNotFound
	}
	return nil
}

// nextBreakoutID bumps the mod's monotonic breakout counter and returns the
// id for the claimed slot.
func nextBreakoutID(ctx context.Context, tx pgx.Tx, modID string) (string, error) {
	var seq int
	err := tx.QueryRow(ctx, `
    UPDATE financial_data.mods
    SET breakout_seq = breakout_seq + 1
    WHERE mod_id = $1
    RETURNING breakout_seq - 1
  `, modID).Scan(&seq)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrModNotFound
	}
	if err != nil {
		return "", err
	}
	return modID + BreakoutSuffix(seq), nil
}
