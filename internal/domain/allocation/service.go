package allocation

import (
	"context"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"corvid/internal/domain/contracts"
)

type Service struct {
	db        *pgxpool.Pool
	contracts *contracts.Store
}

func NewService(db *pgxpool.Pool, contractsStore *contracts.Store) *Service {
	return &Service{db: db, contracts: contractsStore}
}

// Submit replaces the voter's active allocation set for the unit. The
// percentages must sum to exactly 100, and a mod that has breakouts only
// accepts breakout-level submissions. Any saved draft for the pair is
// cleared in the same transaction.
func (s *Service) Submit(ctx context.Context, sub Submission) error {
	if len(sub.Lines) == 0 {
		return ErrEmptySubmission
	}
	if !ValidTotal(sub.Lines) {
		return ErrTotalNotHundred
	}
	if sub.BreakoutID == "" {
		hasBreakouts, err := s.contracts.HasBreakouts(ctx, sub.ModID)
		if err != nil {
			return err
		}
		if hasBreakouts {
			return ErrBreakoutRequired
		}
	}
	if err := s.checkEmployees(ctx, sub); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := deleteForSubmitter(ctx, tx, "allocations", sub.ModID, sub.BreakoutID, sub.SubmittedBy); err != nil {
		return err
	}
	if err := deleteForSubmitter(ctx, tx, "draft_allocations", sub.ModID, sub.BreakoutID, sub.SubmittedBy); err != nil {
		return err
	}

	notes := strings.TrimSpace(sub.Notes)
	for _, line := range sub.Lines {
		if _, err := tx.Exec(ctx, `
      INSERT INTO financial_data.allocations (mod_id, breakout_id, employee_id, submitted_by, allocation, notes)
      VALUES ($1, $2, $3, $4, $5, $6)
    `, sub.ModID, nullIfEmpty(sub.BreakoutID), line.EmployeeID, sub.SubmittedBy, line.Percent, nullIfEmpty(notes)); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// SaveDraft overwrites the voter's in-progress draft for the unit. Drafts
// carry no 100% constraint and no breakout-level restriction.
func (s *Service) SaveDraft(ctx context.Context, sub Submission) error {
	if err := s.checkEmployees(ctx, sub); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := deleteForSubmitter(ctx, tx, "draft_allocations", sub.ModID, sub.BreakoutID, sub.SubmittedBy); err != nil {
		return err
	}

	notes := strings.TrimSpace(sub.Notes)
	for _, line := range sub.Lines {
		if _, err := tx.Exec(ctx, `
      INSERT INTO financial_data.draft_allocations (mod_id, breakout_id, employee_id, submitted_by, allocation, notes)
      VALUES ($1, $2, $3, $4, $5, $6)
    `, sub.ModID, nullIfEmpty(sub.BreakoutID), line.EmployeeID, sub.SubmittedBy, line.Percent, nullIfEmpty(notes)); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Unsubmit deletes the voter's active allocation rows for the unit, sending
// the pair back to DRAFT_SAVED or NO_DRAFT.
func (s *Service) Unsubmit(ctx context.Context, modID, breakoutID, submittedBy string) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := deleteForSubmitter(ctx, tx, "allocations", modID, breakoutID, submittedBy); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Service) ClearDraft(ctx context.Context, modID, breakoutID, submittedBy string) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := deleteForSubmitter(ctx, tx, "draft_allocations", modID, breakoutID, submittedBy); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Submitted returns the voter's active allocation set for the unit. A pair
// with no rows yields an empty view, never an error.
func (s *Service) Submitted(ctx context.Context, modID, breakoutID, submittedBy string) (SubmissionView, error) {
	return s.readSet(ctx, "allocations", modID, breakoutID, submittedBy)
}

func (s *Service) Draft(ctx context.Context, modID, breakoutID, submittedBy string) (SubmissionView, error) {
	return s.readSet(ctx, "draft_allocations", modID, breakoutID, submittedBy)
}

func (s *Service) readSet(ctx context.Context, table, modID, breakoutID, submittedBy string) (SubmissionView, error) {
	rows, err := s.db.Query(ctx, `
    SELECT a.employee_id, e.full_name, a.allocation, COALESCE(a.notes, '')
    FROM financial_data.`+table+` a
    JOIN financial_data.employee e ON a.employee_id = e.employee_id
    WHERE a.mod_id = $1
      AND a.breakout_id IS NOT DISTINCT FROM $2
      AND a.submitted_by = $3
    ORDER BY e.full_name
  `, modID, nullIfEmpty(breakoutID), submittedBy)
	if err != nil {
		return SubmissionView{}, err
	}
	defer rows.Close()

	view := SubmissionView{Allocations: []Line{}}
	for rows.Next() {
		var line Line
		var notes string
		if err := rows.Scan(&line.EmployeeID, &line.FullName, &line.Percent, &notes); err != nil {
			return SubmissionView{}, err
		}
		view.Allocations = append(view.Allocations, line)
		view.Notes = notes
	}
	return view, rows.Err()
}

// Ballots returns every submitter's stored lines for the unit.
func (s *Service) Ballots(ctx context.Context, modID, breakoutID string) ([]Ballot, error) {
	rows, err := s.db.Query(ctx, `
    SELECT submitted_by, employee_id, allocation
    FROM financial_data.allocations
    WHERE mod_id = $1 AND breakout_id IS NOT DISTINCT FROM $2
  `, modID, nullIfEmpty(breakoutID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ballots []Ballot
	for rows.Next() {
		var ballot Ballot
		if err := rows.Scan(&ballot.SubmittedBy, &ballot.EmployeeID, &ballot.Percent); err != nil {
			return nil, err
		}
		ballots = append(ballots, ballot)
	}
	return ballots, rows.Err()
}

// Summary groups all ballots for the unit per nominee with computed
// averages, the aggregation view the approver works from.
func (s *Service) Summary(ctx context.Context, modID, breakoutID string) (UnitSummary, error) {
	ballots, err := s.Ballots(ctx, modID, breakoutID)
	if err != nil {
		return UnitSummary{}, err
	}

	summary := UnitSummary{ModID: modID, BreakoutID: breakoutID, Nominees: []NomineeSummary{}}
	if len(ballots) == 0 {
		return summary, nil
	}

	averages := AverageByNominee(ballots)
	submitterSet := map[string]struct{}{}
	votes := map[string]map[string]float64{}
	for _, ballot := range ballots {
		submitterSet[ballot.SubmittedBy] = struct{}{}
		if votes[ballot.EmployeeID] == nil {
			votes[ballot.EmployeeID] = map[string]float64{}
		}
		votes[ballot.EmployeeID][ballot.SubmittedBy] = ballot.Percent
	}

	names, err := s.employeeNames(ctx, keys(votes))
	if err != nil {
		return UnitSummary{}, err
	}

	for nominee, nomineeVotes := range votes {
		summary.Nominees = append(summary.Nominees, NomineeSummary{
			EmployeeID: nominee,
			FullName:   names[nominee],
			Votes:      nomineeVotes,
			Average:    averages[nominee],
		})
	}
	sort.Slice(summary.Nominees, func(i, j int) bool {
		return summary.Nominees[i].FullName < summary.Nominees[j].FullName
	})

	summary.Submitters = keys(submitterSet)
	sort.Strings(summary.Submitters)
	return summary, nil
}

func (s *Service) VoterStatusFor(ctx context.Context, modID, breakoutID, submittedBy string) (string, error) {
	hasSubmitted, err := s.exists(ctx, "allocations", modID, breakoutID, submittedBy)
	if err != nil {
		return "", err
	}
	hasDraft, err := s.exists(ctx, "draft_allocations", modID, breakoutID, submittedBy)
	if err != nil {
		return "", err
	}
	return VoterStatus(hasSubmitted, hasDraft), nil
}

func (s *Service) ApproverStatusFor(ctx context.Context, modID, breakoutID string) (string, error) {
	var approvedCount int
	if err := s.db.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM financial_data.approved_allocations
    WHERE mod_id = $1 AND breakout_id IS NOT DISTINCT FROM $2
  `, modID, nullIfEmpty(breakoutID)).Scan(&approvedCount); err != nil {
		return "", err
	}

	var flagged bool
	if breakoutID != "" {
		if err := s.db.QueryRow(ctx, `
      SELECT flagged_for_approval FROM financial_data.breakouts WHERE breakout_id = $1
    `, breakoutID).Scan(&flagged); err != nil {
			return "", err
		}
	} else {
		if err := s.db.QueryRow(ctx, `
      SELECT flagged_for_approval FROM financial_data.mods WHERE mod_id = $1
    `, modID).Scan(&flagged); err != nil {
			return "", err
		}
	}

	return ApproverStatus(approvedCount > 0, flagged), nil
}

func (s *Service) checkEmployees(ctx context.Context, sub Submission) error {
	var count int
	if err := s.db.QueryRow(ctx, `
    SELECT COUNT(1) FROM financial_data.employee WHERE employee_id = $1
  `, sub.SubmittedBy).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return ErrSubmitterUnknown
	}
	for _, line := range sub.Lines {
		if err := s.db.QueryRow(ctx, `
      SELECT COUNT(1) FROM financial_data.employee WHERE employee_id = $1
    `, line.EmployeeID).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			return ErrNomineeUnknown
		}
	}
	return nil
}

func (s *Service) exists(ctx context.Context, table, modID, breakoutID, submittedBy string) (bool, error) {
	var count int
	err := s.db.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM financial_data.`+table+`
    WHERE mod_id = $1 AND breakout_id IS NOT DISTINCT FROM $2 AND submitted_by = $3
  `, modID, nullIfEmpty(breakoutID), submittedBy).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) employeeNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	rows, err := s.db.Query(ctx, `
    SELECT employee_id, full_name
    FROM financial_data.employee
    WHERE employee_id = ANY($1)
  `, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

func deleteForSubmitter(ctx context.Context, tx pgx.Tx, table, modID, breakoutID, submittedBy string) error {
	_, err := tx.Exec(ctx, `
    DELETE FROM financial_data.`+table+`
    WHERE mod_id = $1 AND breakout_id IS NOT DISTINCT FROM $2 AND submitted_by = $3
  `, modID, nullIfEmpty(breakoutID), submittedBy)
	return err
}

func nullIfEmpty(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func keys[K comparable, V any](m map[K]V) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
