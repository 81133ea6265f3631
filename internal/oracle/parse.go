package oracle

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/invoice-insights/internal/entity"
)

// StripCodeFences removes a leading ```json / ``` fence and a trailing ```
// from a model response. Vision models wrap JSON in markdown despite being
// told not to.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// rawItem mirrors the oracle's item JSON with a nullable description so a
// single malformed item can be discarded without rejecting the document.
type rawItem struct {
	ItemNumber  *float64 `json:"item_number"`
	Description *string  `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	Total       *float64 `json:"total"`
	Unit        *string  `json:"unit"`
	Confidence  *float64 `json:"llm_confidence"`
}

type rawInvoice struct {
	InvoiceNumber *string   `json:"invoice_number"`
	InvoiceDate   *string   `json:"invoice_date"`
	VendorName    *string   `json:"vendor_name"`
	CustomerName  *string   `json:"customer_name"`
	Currency      *string   `json:"currency"`
	Items         []rawItem `json:"items"`
	Subtotal      *float64  `json:"subtotal"`
	Tax           *float64  `json:"tax"`
	TotalAmount   *float64  `json:"total_amount"`
}

// DecodeInvoiceResponse turns a raw model response into an InvoiceRecord.
// The text is unfenced, validated against the invoice schema, decoded, and
// items with a missing or blank description are dropped (logged, never fatal).
func DecodeInvoiceResponse(text string, logger *slog.Logger) (*entity.InvoiceRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}
	raw := []byte(StripCodeFences(text))

	if err := ValidateJSONAgainstSchema(BuildInvoiceJSONSchema(), raw); err != nil {
		return nil, fmt.Errorf("oracle response schema: %w", err)
	}

	var ri rawInvoice
	if err := json.Unmarshal(raw, &ri); err != nil {
		return nil, fmt.Errorf("decode oracle response: %w", err)
	}

	inv := &entity.InvoiceRecord{
		InvoiceNumber: ri.InvoiceNumber,
		InvoiceDate:   ri.InvoiceDate,
		VendorName:    ri.VendorName,
		CustomerName:  ri.CustomerName,
		Currency:      ri.Currency,
		Items:         make([]entity.LineItem, 0, len(ri.Items)),
		Subtotal:      ri.Subtotal,
		Tax:           ri.Tax,
		TotalAmount:   ri.TotalAmount,
	}

	dropped := 0
	for _, it := range ri.Items {
		if it.Description == nil || strings.TrimSpace(*it.Description) == "" {
			dropped++
			continue
		}
		li := entity.LineItem{
			Description: *it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
			Unit:        it.Unit,
			Confidence:  it.Confidence,
		}
		if it.ItemNumber != nil {
			n := int(*it.ItemNumber)
			li.ItemNumber = &n
		}
		inv.Items = append(inv.Items, li)
	}
	if dropped > 0 {
		logger.Warn("oracle.decode.items_dropped", "dropped", dropped, "kept", len(inv.Items))
	}
	return inv, nil
}
