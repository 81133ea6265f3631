// Package oracle models the external vision model as a single swappable
// capability: bytes in, a best-effort structured invoice guess out. The
// model's internals are opaque and non-deterministic; everything downstream
// treats its output as untrusted until validated.
package oracle

import (
	"context"

	"github.com/joseph-ayodele/invoice-insights/internal/entity"
)

// PromptProfile selects the extraction prompt sent with the image.
type PromptProfile string

const (
	// ProfileBaseline is the default extraction prompt.
	ProfileBaseline PromptProfile = "baseline"
	// ProfileStrict adds tighter column-identification guidance and is used
	// for the single bounded retry after a bad first attempt.
	ProfileStrict PromptProfile = "strict"
)

// Request carries one document to the vision model.
type Request struct {
	Image     []byte
	MediaType string
	Profile   PromptProfile
}

// Oracle is the extraction capability. Implementations wrap a concrete
// provider; failures surface as errors for the orchestrator to capture.
type Oracle interface {
	ExtractInvoice(ctx context.Context, req Request) (*entity.InvoiceRecord, error)
	// Model returns the provider's model identifier for result provenance.
	Model() string
}
