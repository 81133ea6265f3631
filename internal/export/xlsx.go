package export

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-insights/internal/entity"
)

// writeMasterListXLSX renders the aggregated master list as a workbook.
func (s *Service) writeMasterListXLSX(list []entity.MasterItem, ts string) (string, error) {
	f := excelize.NewFile()
	const sheet = "Master List"
	if _, err := f.NewSheet(sheet); err != nil {
		return "", err
	}
	if idx, _ := f.GetSheetIndex(sheet); idx != -1 {
		f.SetActiveSheet(idx)
	}
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"Description", "Total Quantity", "Unit",
		"Price Min", "Price Max", "Occurrences",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, item := range list {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, item.Description)
		write(2, item.TotalQuantity)
		if item.Unit != nil {
			write(3, *item.Unit)
		}
		if item.PriceMin != nil {
			write(4, *item.PriceMin)
		}
		if item.PriceMax != nil {
			write(5, *item.PriceMax)
		}
		write(6, item.Occurrences)
	}

	_ = f.SetColWidth(sheet, "A", "A", 40)
	_ = f.SetColWidth(sheet, "B", "E", 14)
	_ = f.SetColWidth(sheet, "F", "F", 12)

	path := filepath.Join(s.outputDir, fmt.Sprintf("master_list_%s.xlsx", ts))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok", "path", path, "rows", len(list))
	return path, nil
}

// writeSavingsXLSX renders the savings ranking plus a totals block.
func (s *Service) writeSavingsXLSX(report entity.SavingsReport, ts string) (string, error) {
	f := excelize.NewFile()
	const sheet = "Savings Analysis"
	if _, err := f.NewSheet(sheet); err != nil {
		return "", err
	}
	if idx, _ := f.GetSheetIndex(sheet); idx != -1 {
		f.SetActiveSheet(idx)
	}
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"Item", "Current Spend", "Market Price", "Saving",
		"Discount %", "Unit", "Occurrences", "Total Quantity",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, item := range report.TopItems {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, item.Name)
		write(2, item.CurrentPrice)
		write(3, item.MarketPrice)
		write(4, item.SavingAmount)
		write(5, item.DiscountPercent)
		if item.Unit != nil {
			write(6, *item.Unit)
		}
		write(7, item.Occurrences)
		write(8, item.TotalQuantity)
		row++
	}

	row++ // blank spacer before totals
	totals := [][2]any{
		{"Currency", report.Currency},
		{"Total Current Spending", report.TotalCurrentSpending},
		{"Total Savings", report.TotalSavings},
		{"Cost Reduction %", report.CostReductionPercent},
		{"Items Analyzed", report.TotalItemsAnalyzed},
		{"Items With Reduction", report.NumItemsWithCostReduction},
	}
	for _, t := range totals {
		kCell, _ := excelize.CoordinatesToCellName(1, row)
		vCell, _ := excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(sheet, kCell, t[0])
		_ = f.SetCellValue(sheet, vCell, t[1])
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 40)
	_ = f.SetColWidth(sheet, "B", "E", 16)
	_ = f.SetColWidth(sheet, "F", "H", 14)

	path := filepath.Join(s.outputDir, fmt.Sprintf("savings_analysis_%s.xlsx", ts))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok", "path", path, "rows", len(report.TopItems))
	return path, nil
}
