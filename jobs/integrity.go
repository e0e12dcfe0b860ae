package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/hibiken/asynq"

	"github.com/meridian-erp/meridian-erp/internal/documents"
	"github.com/meridian-erp/meridian-erp/internal/pricing"
)

// driftTolerance absorbs float noise at the storage boundary; anything beyond
// half a paisa is real drift.
const driftTolerance = 0.005

// DocumentSource supplies the documents to verify.
type DocumentSource interface {
	ListAll(ctx context.Context) ([]documents.Document, error)
}

// IntegrityChecker recomputes every document's totals from its lines and
// reports rows whose stored totals no longer match.
type IntegrityChecker struct {
	logger *slog.Logger
	source DocumentSource
}

func NewIntegrityChecker(logger *slog.Logger, source DocumentSource) *IntegrityChecker {
	return &IntegrityChecker{logger: logger, source: source}
}

// Run scans all documents and returns how many drifted.
func (c *IntegrityChecker) Run(ctx context.Context) (int, error) {
	docs, err := c.source.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("jobs: load documents: %w", err)
	}

	drifted := 0
	for _, doc := range docs {
		inputs := make([]pricing.LineInput, 0, len(doc.Lines))
		for _, line := range doc.Lines {
			inputs = append(inputs, pricing.LineInput{Quantity: line.Quantity, Rate: line.Rate})
		}
		want := pricing.ComputeTotals(inputs, doc.DiscountValue, doc.DiscountType, doc.TaxRate)

		if math.Abs(want.TotalAmount-doc.TotalAmount) <= driftTolerance &&
			math.Abs(want.Subtotal-doc.Subtotal) <= driftTolerance &&
			math.Abs(want.TaxAmount-doc.TaxAmount) <= driftTolerance {
			continue
		}
		drifted++
		c.logger.Warn("document totals drifted",
			slog.Int64("document_id", doc.ID),
			slog.String("doc_number", doc.DocNumber),
			slog.Float64("stored_total", doc.TotalAmount),
			slog.Float64("computed_total", want.TotalAmount))
	}

	c.logger.Info("totals integrity scan finished",
		slog.Int("documents", len(docs)),
		slog.Int("drifted", drifted))
	return drifted, nil
}

// Handle processes TaskTotalsIntegrity tasks.
func (c *IntegrityChecker) Handle(ctx context.Context, t *asynq.Task) error {
	_, err := c.Run(ctx)
	return err
}
