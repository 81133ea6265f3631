// Package reconcile merges line items across a batch of extraction results
// into comparable aggregates and ranks group-buying savings opportunities.
package reconcile

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/joseph-ayodele/invoice-insights/internal/entity"
)

const (
	// DefaultTopN bounds the savings ranking.
	DefaultTopN = 5

	// Demo-mode amplification range for per-group multipliers. Demo mode
	// exists to make small sample batches look like real purchasing volume
	// in presentations; it must never be enabled in production.
	demoMultiplierMin = 13
	demoMultiplierMax = 23

	// Synthetic market discount range, percent.
	discountMin = 3.0
	discountMax = 7.0

	analysisType = "group_buying_opportunity"
)

// Engine aggregates completed extraction results. It only ever reads them;
// all aggregate state is local to a single pass and discarded afterwards.
type Engine struct {
	logger   *slog.Logger
	rng      Rand
	demoMode bool
	currency string
}

// NewEngine wires an engine. The demo flag and currency label are passed
// explicitly rather than read from ambient state so the engine stays pure.
func NewEngine(demoMode bool, currency string, rng Rand, logger *slog.Logger) *Engine {
	if rng == nil {
		rng = NewTimeSeededRand()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if currency == "" {
		currency = "AED"
	}
	return &Engine{logger: logger, rng: rng, demoMode: demoMode, currency: currency}
}

// NormalizeDescription is the aggregation key: trimmed and case-folded.
func NormalizeDescription(desc string) string {
	return strings.ToLower(strings.TrimSpace(desc))
}

// multipliers fixes one demo multiplier per group for the duration of a
// single pass. With demo mode off every group gets 1.
type multipliers struct {
	e     *Engine
	drawn map[string]int
}

func (e *Engine) newMultipliers() *multipliers {
	return &multipliers{e: e, drawn: make(map[string]int)}
}

func (m *multipliers) forKey(key string) int {
	if !m.e.demoMode {
		return 1
	}
	if v, ok := m.drawn[key]; ok {
		return v
	}
	v := m.e.rng.IntBetween(demoMultiplierMin, demoMultiplierMax)
	m.drawn[key] = v
	return v
}

// masterAgg accumulates one master-list group during a pass.
type masterAgg struct {
	description   string // original text as first seen
	totalQuantity float64
	unit          *string
	priceMin      *float64
	priceMax      *float64
	occurrences   int
}

// BuildMasterList aggregates every line item of every successful result into
// a per-description summary, sorted ascending by the original description.
func (e *Engine) BuildMasterList(results []entity.ExtractionResult) []entity.MasterItem {
	groups := make(map[string]*masterAgg)
	order := make([]string, 0)
	mult := e.newMultipliers()

	for _, res := range results {
		if !res.Success || res.Invoice == nil {
			continue
		}
		for _, item := range res.Invoice.Items {
			key := NormalizeDescription(item.Description)
			g, ok := groups[key]
			if !ok {
				g = &masterAgg{description: item.Description, unit: item.Unit}
				groups[key] = g
				order = append(order, key)
			}
			m := mult.forKey(key)
			if item.Quantity != nil {
				g.totalQuantity += *item.Quantity * float64(m)
			}
			if item.UnitPrice != nil {
				p := *item.UnitPrice
				if g.priceMin == nil || p < *g.priceMin {
					g.priceMin = &p
				}
				if g.priceMax == nil || p > *g.priceMax {
					g.priceMax = &p
				}
			}
			g.occurrences += m
		}
	}

	list := make([]entity.MasterItem, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		list = append(list, entity.MasterItem{
			Description:   g.description,
			TotalQuantity: round2(g.totalQuantity),
			Unit:          g.unit,
			PriceMin:      g.priceMin,
			PriceMax:      g.priceMax,
			Occurrences:   g.occurrences,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Description < list[j].Description })

	e.logger.Info("reconcile.master_list.ok",
		"results", len(results), "groups", len(list), "demo_mode", e.demoMode)
	return list
}

// costAgg accumulates one savings group during a pass.
type costAgg struct {
	name          string
	cost          float64
	totalQuantity float64
	unit          *string
	occurrences   int
}

// ComputeSavingsAnalysis ranks the costliest item groups and prices each
// against a synthetic market discount drawn uniformly in [3%, 7%].
// An item without a total contributes nothing to cost but still counts
// toward quantity and occurrences.
func (e *Engine) ComputeSavingsAnalysis(results []entity.ExtractionResult, topN int) entity.SavingsReport {
	if topN <= 0 {
		topN = DefaultTopN
	}

	groups := make(map[string]*costAgg)
	order := make([]string, 0)
	mult := e.newMultipliers()

	for _, res := range results {
		if !res.Success || res.Invoice == nil {
			continue
		}
		for _, item := range res.Invoice.Items {
			key := NormalizeDescription(item.Description)
			g, ok := groups[key]
			if !ok {
				g = &costAgg{name: item.Description, unit: item.Unit}
				groups[key] = g
				order = append(order, key)
			}
			m := mult.forKey(key)
			if item.Total != nil {
				g.cost += *item.Total * float64(m)
			}
			if item.Quantity != nil {
				g.totalQuantity += *item.Quantity * float64(m)
			}
			g.occurrences += m
		}
	}

	ranked := make([]*costAgg, 0, len(groups))
	for _, key := range order {
		ranked = append(ranked, groups[key])
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].cost != ranked[j].cost {
			return ranked[i].cost > ranked[j].cost
		}
		return ranked[i].name < ranked[j].name
	})

	analyzed := len(ranked)
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	report := entity.SavingsReport{
		TopItems:           make([]entity.SavingsItem, 0, len(ranked)),
		TotalItemsAnalyzed: analyzed,
		Currency:           e.currency,
		AnalysisType:       analysisType,
	}

	var totalSavings, totalSpending float64
	for _, g := range ranked {
		discount := e.rng.Uniform(discountMin, discountMax)
		market := g.cost * (1 - discount/100)
		saving := g.cost - market
		totalSavings += saving
		totalSpending += g.cost

		report.TopItems = append(report.TopItems, entity.SavingsItem{
			Name:            g.name,
			CurrentPrice:    round2(g.cost),
			MarketPrice:     round2(market),
			SavingAmount:    round2(saving),
			DiscountPercent: round2(discount),
			Unit:            g.unit,
			Occurrences:     g.occurrences,
			TotalQuantity:   round2(g.totalQuantity),
		})
	}

	report.TotalSavings = round2(totalSavings)
	report.TotalCurrentSpending = round2(totalSpending)
	report.NumItemsWithCostReduction = len(ranked)
	if analyzed > 0 {
		report.PercentOverpaid = round1(float64(len(ranked)) / float64(analyzed) * 100)
	}
	if totalSpending > 0 {
		report.CostReductionPercent = round1(totalSavings / totalSpending * 100)
	}

	e.logger.Info("reconcile.savings.ok",
		"results", len(results),
		"groups_analyzed", analyzed,
		"groups_selected", len(ranked),
		"total_savings", report.TotalSavings,
		"demo_mode", e.demoMode,
	)
	return report
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
