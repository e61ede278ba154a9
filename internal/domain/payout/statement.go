package payout

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jung-kurt/gofpdf"
)

// GenerateStatementPDF writes a payout statement for the employee with the
// given email and returns the file path.
func (s *Service) GenerateStatementPDF(ctx context.Context, email, exportDir string) (string, error) {
	var fullName string
	err := s.db.QueryRow(ctx, `
    SELECT full_name FROM financial_data.employee WHERE email = $1
  `, email).Scan(&fullName)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrEmployeeNotFound
	}
	if err != nil {
		return "", err
	}

	history, err := s.History(ctx, email)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(exportDir, fmt.Sprintf("payout-statement-%d.pdf", time.Now().UnixNano()))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payout Statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", fullName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", email))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(35, 8, "Mod", "1", 0, "", false, 0, "")
	pdf.CellFormat(35, 8, "Breakout", "1", 0, "", false, 0, "")
	pdf.CellFormat(40, 8, "Charge Code", "1", 0, "", false, 0, "")
	pdf.CellFormat(30, 8, "Period", "1", 0, "", false, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	var total float64
	for _, row := range history {
		pdf.CellFormat(35, 8, row.ModID, "1", 0, "", false, 0, "")
		pdf.CellFormat(35, 8, row.BreakoutID, "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 8, row.ChargeCode, "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 8, row.PayoutPeriod, "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", row.Amount), "1", 1, "R", false, 0, "")
		total += row.Amount
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(140, 8, "Total", "1", 0, "", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", total), "1", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}
