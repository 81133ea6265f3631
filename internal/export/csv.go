package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joseph-ayodele/invoice-insights/internal/entity"
)

var itemsHeader = []string{
	"filename", "invoice_number", "invoice_date", "vendor_name",
	"customer_name", "currency", "item_number", "description", "quantity",
	"unit", "unit_price", "item_total", "invoice_subtotal", "invoice_tax",
	"invoice_total", "processing_time", "model_used",
}

var summaryHeader = []string{
	"filename", "success", "processing_time", "model_used", "error",
	"invoice_number", "invoice_date", "vendor_name", "customer_name",
	"total_items", "total_amount", "currency",
}

// writeItemsCSV flattens every line item of every successful result into one
// row. An invoice without items still contributes a metadata-only row so the
// file accounts for every parsed document.
func (s *Service) writeItemsCSV(results []entity.ExtractionResult, ts string) (string, error) {
	path := filepath.Join(s.outputDir, fmt.Sprintf("invoice_items_%s.csv", ts))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create items csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(itemsHeader); err != nil {
		return "", err
	}

	rows := 0
	for _, res := range results {
		if !res.Success || res.Invoice == nil {
			continue
		}
		inv := res.Invoice
		meta := []string{
			res.Filename,
			strOrEmpty(inv.InvoiceNumber),
			strOrEmpty(inv.InvoiceDate),
			strOrEmpty(inv.VendorName),
			strOrEmpty(inv.CustomerName),
			strOrEmpty(inv.Currency),
		}
		totals := []string{
			floatOrEmpty(inv.Subtotal),
			floatOrEmpty(inv.Tax),
			floatOrEmpty(inv.TotalAmount),
			formatSeconds(res.ProcessingTime),
			res.ModelUsed,
		}

		if len(inv.Items) == 0 {
			row := append(append([]string{}, meta...),
				"", "", "", "", "", "")
			row = append(row, totals...)
			if err := w.Write(row); err != nil {
				return "", err
			}
			rows++
			continue
		}
		for _, item := range inv.Items {
			row := append(append([]string{}, meta...),
				intOrEmpty(item.ItemNumber),
				item.Description,
				floatOrEmpty(item.Quantity),
				strOrEmpty(item.Unit),
				floatOrEmpty(item.UnitPrice),
				floatOrEmpty(item.Total),
			)
			row = append(row, totals...)
			if err := w.Write(row); err != nil {
				return "", err
			}
			rows++
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush items csv: %w", err)
	}
	s.logger.Info("export.csv.ok", "path", path, "rows", rows)
	return path, nil
}

// writeSummaryCSV writes one row per processed document, failures included.
func (s *Service) writeSummaryCSV(results []entity.ExtractionResult, ts string) (string, error) {
	path := filepath.Join(s.outputDir, fmt.Sprintf("processing_summary_%s.csv", ts))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create summary csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(summaryHeader); err != nil {
		return "", err
	}

	for _, res := range results {
		row := []string{
			res.Filename,
			strconv.FormatBool(res.Success),
			formatSeconds(res.ProcessingTime),
			res.ModelUsed,
			res.Error,
		}
		if res.Success && res.Invoice != nil {
			inv := res.Invoice
			row = append(row,
				strOrEmpty(inv.InvoiceNumber),
				strOrEmpty(inv.InvoiceDate),
				strOrEmpty(inv.VendorName),
				strOrEmpty(inv.CustomerName),
				strconv.Itoa(len(inv.Items)),
				floatOrEmpty(inv.TotalAmount),
				strOrEmpty(inv.Currency),
			)
		} else {
			row = append(row, "", "", "", "", "", "", "")
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush summary csv: %w", err)
	}
	s.logger.Info("export.csv.ok", "path", path, "rows", len(results))
	return path, nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
