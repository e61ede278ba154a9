package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportIncomeSummaryXLSX writes the income-statement summary for one
// (year, period, entity) to a spreadsheet and returns the file path.
func (s *Store) ExportIncomeSummaryXLSX(ctx context.Context, year, period int, entity, exportDir string) (string, error) {
	summary, err := s.IncomeSummary(ctx, year, period, entity)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(exportDir, fmt.Sprintf("income-summary-%d.xlsx", time.Now().UnixNano()))

	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(0)
	headers := []string{"Category", "Subcategory", "Total Amount"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return "", err
		}
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return "", err
		}
	}

	for rowIdx, row := range summary {
		values := []any{row.Category, row.Subcategory, row.TotalAmount}
		for colIdx, value := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return "", err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return "", err
			}
		}
	}

	if err := file.SaveAs(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}
