// Package extract drives a single document through the oracle and the item
// validator, deciding when a stricter retry is worth one more round-trip.
package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-insights/internal/document"
	"github.com/joseph-ayodele/invoice-insights/internal/entity"
	"github.com/joseph-ayodele/invoice-insights/internal/oracle"
	"github.com/joseph-ayodele/invoice-insights/internal/validate"
)

// DefaultEscalationThreshold triggers the strict retry when more than a
// quarter of the first attempt's items fail arithmetic validation.
const DefaultEscalationThreshold = 0.25

// Orchestrator produces exactly one ExtractionResult per input document,
// with at most two oracle calls. It never lets a per-document failure
// propagate; errors are captured in the result.
type Orchestrator struct {
	oracle    oracle.Oracle
	validator *validate.Validator
	logger    *slog.Logger

	escalationThreshold float64
}

func NewOrchestrator(o oracle.Oracle, v *validate.Validator, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if v == nil {
		v = validate.NewValidator(validate.DefaultConfidenceThreshold, logger)
	}
	return &Orchestrator{
		oracle:              o,
		validator:           v,
		logger:              logger,
		escalationThreshold: DefaultEscalationThreshold,
	}
}

// attempt is one validated oracle round-trip.
type attempt struct {
	invoice      *entity.InvoiceRecord
	invalidRatio float64
}

// ProcessDocument runs the linear extraction protocol:
// dispatch -> validate -> maybe one strict retry -> select -> finalize.
func (o *Orchestrator) ProcessDocument(ctx context.Context, doc document.Document) entity.ExtractionResult {
	rid := uuid.New().String()
	start := time.Now()

	fail := func(err error) entity.ExtractionResult {
		o.logger.Error("extract.document.failed",
			"req_id", rid, "filename", doc.Filename, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.ExtractionResult{
			Filename:       doc.Filename,
			Success:        false,
			Error:          err.Error(),
			ProcessingTime: time.Since(start).Seconds(),
			ModelUsed:      o.oracle.Model(),
		}
	}

	payload, err := document.Prepare(doc)
	if err != nil {
		return fail(err)
	}

	first, err := o.dispatch(ctx, payload, oracle.ProfileBaseline)
	if err != nil {
		return fail(err)
	}
	chosen := first

	// Escalate once, never more, and only when the baseline attempt looks bad.
	if first.invalidRatio > o.escalationThreshold {
		o.logger.Info("extract.escalating",
			"req_id", rid,
			"filename", doc.Filename,
			"invalid_ratio", first.invalidRatio,
			"threshold", o.escalationThreshold,
		)
		retry, err := o.dispatch(ctx, payload, oracle.ProfileStrict)
		if err != nil {
			// The first attempt already produced a usable record; a failed
			// retry is just a worse candidate.
			o.logger.Warn("extract.retry_failed",
				"req_id", rid, "filename", doc.Filename, "error", err)
		} else if retryWins(first, retry) {
			chosen = retry
		}
	}

	elapsed := time.Since(start)
	o.logger.Info("extract.document.ok",
		"req_id", rid,
		"filename", doc.Filename,
		"items", len(chosen.invoice.Items),
		"invalid_ratio", chosen.invalidRatio,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return entity.ExtractionResult{
		Filename:       doc.Filename,
		Success:        true,
		Invoice:        chosen.invoice,
		ProcessingTime: elapsed.Seconds(),
		ModelUsed:      o.oracle.Model(),
	}
}

// dispatch performs one oracle round-trip and validates the returned items.
func (o *Orchestrator) dispatch(ctx context.Context, payload document.Payload, profile oracle.PromptProfile) (attempt, error) {
	inv, err := o.oracle.ExtractInvoice(ctx, oracle.Request{
		Image:     payload.Data,
		MediaType: payload.MediaType,
		Profile:   profile,
	})
	if err != nil {
		return attempt{}, err
	}

	items := o.validator.FilterByConfidence(inv.Items)
	items = o.validator.ReconcileArithmetic(items)
	inv.Items = items

	return attempt{
		invoice:      inv,
		invalidRatio: o.validator.InvalidRatio(items),
	}, nil
}

// retryWins keeps the strict retry only when it is strictly cleaner, or
// equally clean with strictly more items.
func retryWins(first, retry attempt) bool {
	if retry.invalidRatio < first.invalidRatio {
		return true
	}
	return retry.invalidRatio == first.invalidRatio &&
		len(retry.invoice.Items) > len(first.invoice.Items)
}
