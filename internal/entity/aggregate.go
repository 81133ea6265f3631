package entity

import "time"

// MasterItem is one row of the aggregated master item list, keyed by the
// normalized (trimmed, case-folded) description across a whole batch.
type MasterItem struct {
	Description   string   `json:"description"`
	TotalQuantity float64  `json:"total_quantity"`
	Unit          *string  `json:"unit,omitempty"`
	PriceMin      *float64 `json:"price_min,omitempty"`
	PriceMax      *float64 `json:"price_max,omitempty"`
	Occurrences   int      `json:"occurrences"`
}

// SavingsItem is a derived, read-only view over a top-ranked cost aggregate
// with a synthetic market price attached.
type SavingsItem struct {
	Name            string  `json:"name"`
	CurrentPrice    float64 `json:"current_price"`
	MarketPrice     float64 `json:"market_price"`
	SavingAmount    float64 `json:"saving_amount"`
	DiscountPercent float64 `json:"discount_percent"`
	Unit            *string `json:"unit,omitempty"`
	Occurrences     int     `json:"occurrences"`
	TotalQuantity   float64 `json:"total_quantity"`
}

// SavingsReport ranks group-buying opportunities for one batch.
type SavingsReport struct {
	TopItems                  []SavingsItem `json:"top_items"`
	TotalSavings              float64       `json:"total_savings"`
	TotalCurrentSpending      float64       `json:"total_current_spending"`
	NumItemsWithCostReduction int           `json:"num_items_with_cost_reduction"`
	TotalItemsAnalyzed        int           `json:"total_items_analyzed"`
	PercentOverpaid           float64       `json:"percent_overpaid"`
	CostReductionPercent      float64       `json:"cost_reduction_percent"`
	Currency                  string        `json:"currency"`
	AnalysisType              string        `json:"analysis_type"`
}

// BatchSummary reports one batch run: counts, aggregate timing (sum of
// per-document processing times, not wall-clock of the parallel run) and the
// ordered per-document results.
type BatchSummary struct {
	TotalFiles  int                `json:"total_files"`
	Successful  int                `json:"successful"`
	Failed      int                `json:"failed"`
	TotalTime   float64            `json:"total_time"`
	AverageTime float64            `json:"average_time"`
	Results     []ExtractionResult `json:"results"`
	Timestamp   time.Time          `json:"timestamp"`
}
