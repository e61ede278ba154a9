package reports

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type IncomeDataFilter struct {
	Year     int
	Category string
	Entity   string
	Limit    int
	Offset   int
}

func (s *Store) ListIncomeData(ctx context.Context, filter IncomeDataFilter) ([]IncomeData, error) {
	query := `
    SELECT entity, year, period, category, amount
    FROM financial_data.income_data
    WHERE 1=1
  `
	var args []any
	if filter.Year != 0 {
		args = append(args, filter.Year)
		query += " AND year = $" + strconv.Itoa(len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += " AND category = $" + strconv.Itoa(len(args))
	}
	if filter.Entity != "" {
		args = append(args, filter.Entity)
		query += " AND entity = $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY year, period, category"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IncomeData
	for rows.Next() {
		var row IncomeData
		if err := rows.Scan(&row.Entity, &row.Year, &row.Period, &row.Category, &row.Amount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ConsolidatedIncome sums consolidated_income per category and period.
// The "Consolidated" entity (or empty) means all entities.
func (s *Store) ConsolidatedIncome(ctx context.Context, entity string) ([]GroupedAmount, error) {
	return s.groupedAmounts(ctx, "consolidated_income", entity)
}

func (s *Store) ConsolidatedBalance(ctx context.Context, entity string) ([]GroupedAmount, error) {
	return s.groupedAmounts(ctx, "consolidated_balance", entity)
}

func (s *Store) groupedAmounts(ctx context.Context, table, entity string) ([]GroupedAmount, error) {
	query := `
    SELECT category, period, SUM(amount) AS amount
    FROM financial_data.` + table
	var args []any
	if entity != "" && entity != ConsolidatedEntity {
		query += " WHERE entity = $1"
		args = append(args, entity)
	}
	query += " GROUP BY category, period ORDER BY category, period"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GroupedAmount
	for rows.Next() {
		var row GroupedAmount
		if err := rows.Scan(&row.Category, &row.Period, &row.Amount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// NetIncome returns the NET INCOME totals for the requested period and the
// one before it.
func (s *Store) NetIncome(ctx context.Context, entity string, period int) (NetIncome, error) {
	query := `
    SELECT period, SUM(amount) AS amount
    FROM financial_data.consolidated_income
    WHERE UPPER(category) = 'NET INCOME'
      AND period IN ($1, $2)
  `
	args := []any{period, period - 1}
	if entity != "" && entity != ConsolidatedEntity {
		query += " AND entity = $3"
		args = append(args, entity)
	}
	query += " GROUP BY period ORDER BY period"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return NetIncome{}, err
	}
	defer rows.Close()

	var result NetIncome
	for rows.Next() {
		var p int
		var amount float64
		if err := rows.Scan(&p, &amount); err != nil {
			return NetIncome{}, err
		}
		switch p {
		case period:
			result.Current = amount
		case period - 1:
			result.Previous = amount
		}
	}
	return result, rows.Err()
}

func (s *Store) BalanceSummary(ctx context.Context, year, period int, entity string) ([]SummaryRow, error) {
	return s.summaryRows(ctx, "balance_sheets", year, period, entity)
}

func (s *Store) IncomeSummary(ctx context.Context, year, period int, entity string) ([]SummaryRow, error) {
	return s.summaryRows(ctx, "income_statements", year, period, entity)
}

func (s *Store) summaryRows(ctx context.Context, table string, year, period int, entity string) ([]SummaryRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT category, COALESCE(subcategory, ''), SUM(amount) AS total_amount
    FROM financial_data.`+table+`
    WHERE year = $1 AND period = $2 AND entity = $3
    GROUP BY category, subcategory
    ORDER BY category, subcategory
  `, year, period, entity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SummaryRow
	for rows.Next() {
		var row SummaryRow
		if err := rows.Scan(&row.Category, &row.Subcategory, &row.TotalAmount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) IncomeChart(ctx context.Context, year int, entity, category string) ([]ChartRow, error) {
	query := `
    SELECT period, category, SUM(amount) AS total_amount
    FROM financial_data.income_statements
    WHERE year = $1 AND entity = $2
  `
	args := []any{year, entity}
	if category != "" {
		query += " AND category = $3"
		args = append(args, category)
	}
	query += " GROUP BY period, category ORDER BY period"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChartRow
	for rows.Next() {
		var row ChartRow
		if err := rows.Scan(&row.Period, &row.Category, &row.TotalAmount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
