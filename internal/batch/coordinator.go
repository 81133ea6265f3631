// Package batch fans a set of documents out over a bounded worker pool and
// folds the per-document results into a single ordered summary.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-insights/internal/common"
	"github.com/joseph-ayodele/invoice-insights/internal/document"
	"github.com/joseph-ayodele/invoice-insights/internal/entity"
)

// DefaultMaxWorkers caps batch concurrency. The effective pool size is
// min(len(docs), DefaultMaxWorkers).
const DefaultMaxWorkers = 10

// DocumentProcessor produces exactly one result per document and never
// returns an error; failures are captured inside the result.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, doc document.Document) entity.ExtractionResult
}

// Coordinator runs one batch at a time. It is stateless between batches.
type Coordinator struct {
	processor  DocumentProcessor
	logger     *slog.Logger
	maxWorkers int
}

func NewCoordinator(processor DocumentProcessor, maxWorkers int, logger *slog.Logger) *Coordinator {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{processor: processor, logger: logger, maxWorkers: maxWorkers}
}

// ProcessBatch processes every document concurrently and returns results in
// the input order. Documents with an unsupported extension are reported as
// failed results without occupying a worker. TotalTime is the sum of the
// per-document processing times, not the wall-clock of the parallel run.
func (c *Coordinator) ProcessBatch(ctx context.Context, docs []document.Document) entity.BatchSummary {
	rid := uuid.New().String()
	results := make([]entity.ExtractionResult, len(docs))

	type job struct {
		idx int
		doc document.Document
	}
	jobs := make(chan job)

	workers := c.maxWorkers
	if len(docs) < workers {
		workers = len(docs)
	}

	c.logger.Info("batch.start",
		"req_id", rid, "files", len(docs), "workers", workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.idx] = c.processor.ProcessDocument(ctx, j.doc)
			}
		}()
	}

	for i, doc := range docs {
		if !doc.Supported() {
			results[i] = entity.ExtractionResult{
				Filename: doc.Filename,
				Success:  false,
				Error: fmt.Errorf("%w: unsupported file type %q",
					common.ErrUnsupportedType, doc.Ext()).Error(),
			}
			continue
		}
		jobs <- job{idx: i, doc: doc}
	}
	close(jobs)
	wg.Wait()

	summary := summarize(results)
	c.logger.Info("batch.done",
		"req_id", rid,
		"files", summary.TotalFiles,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"total_time_s", summary.TotalTime,
	)
	return summary
}

func summarize(results []entity.ExtractionResult) entity.BatchSummary {
	s := entity.BatchSummary{
		TotalFiles: len(results),
		Results:    results,
		Timestamp:  time.Now().UTC(),
	}
	for _, r := range results {
		if r.Success {
			s.Successful++
		} else {
			s.Failed++
		}
		s.TotalTime += r.ProcessingTime
	}
	if s.TotalFiles > 0 {
		s.AverageTime = s.TotalTime / float64(s.TotalFiles)
	}
	return s
}
