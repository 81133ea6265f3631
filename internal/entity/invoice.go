package entity

// LineItem is a single extracted invoice line. Numeric fields are pointers
// because the oracle regularly omits them; Total is the net amount before tax.
type LineItem struct {
	ItemNumber  *int     `json:"item_number,omitempty"`
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	Total       *float64 `json:"total,omitempty"`
	Unit        *string  `json:"unit,omitempty"`

	// Confidence is the oracle's self-reported score in [0,10]. Advisory only.
	Confidence *float64 `json:"llm_confidence,omitempty"`

	// Corrected marks an item whose quantity or unit price was repaired by a
	// decimal-scale fix. Items without this marker satisfy
	// |quantity*unit_price - total| <= 0.01 when all three are present.
	Corrected bool `json:"corrected,omitempty"`
}

// HasAmounts reports whether quantity, unit price and total are all present.
func (li *LineItem) HasAmounts() bool {
	return li.Quantity != nil && li.UnitPrice != nil && li.Total != nil
}

// InvoiceRecord is the structured guess for one invoice document.
//
// Subtotal/Tax/TotalAmount come from the invoice footer and are deliberately
// not reconciled against the sum of item totals; the oracle reads them
// independently and mismatches are expected, not repaired.
type InvoiceRecord struct {
	InvoiceNumber *string    `json:"invoice_number,omitempty"`
	InvoiceDate   *string    `json:"invoice_date,omitempty"`
	VendorName    *string    `json:"vendor_name,omitempty"`
	CustomerName  *string    `json:"customer_name,omitempty"`
	Currency      *string    `json:"currency,omitempty"`
	Items         []LineItem `json:"items"`
	Subtotal      *float64   `json:"subtotal,omitempty"`
	Tax           *float64   `json:"tax,omitempty"`
	TotalAmount   *float64   `json:"total_amount,omitempty"`
}

// ExtractionResult is the immutable outcome of processing one document.
// Exactly one is produced per input; Error and a successful Invoice are
// mutually exclusive.
type ExtractionResult struct {
	Filename string         `json:"filename"`
	Success  bool           `json:"success"`
	Invoice  *InvoiceRecord `json:"invoice_data,omitempty"`
	Error    string         `json:"error,omitempty"`

	// ProcessingTime is elapsed wall-clock in seconds for this document.
	ProcessingTime float64 `json:"processing_time"`
	ModelUsed      string  `json:"model_used"`
}
