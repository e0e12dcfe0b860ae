package documents

import (
	"context"
	"fmt"

	"github.com/meridian-erp/meridian-erp/internal/catalog"
	"github.com/meridian-erp/meridian-erp/internal/parties"
	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	"github.com/meridian-erp/meridian-erp/internal/pricing"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// ItemSource resolves catalog items when populating line names and rates.
type ItemSource interface {
	Get(ctx context.Context, id int64) (catalog.Item, error)
}

// PartySource verifies the referenced customer or supplier.
type PartySource interface {
	Get(ctx context.Context, id int64) (parties.Party, error)
}

type Service struct {
	repo    Repository
	parties PartySource
	items   ItemSource
}

func NewService(repo Repository, partySource PartySource, itemSource ItemSource) *Service {
	return &Service{repo: repo, parties: partySource, items: itemSource}
}

// Create builds a new DRAFT document. Line names and default rates come from
// the catalog; totals are recomputed from scratch, never taken from the wire.
func (s *Service) Create(ctx context.Context, docType DocType, req CreateDocumentRequest, createdBy int64) (*Document, error) {
	if !docType.Valid() {
		return nil, fmt.Errorf("documents: unknown document type %q: %w", docType, httpx.ErrValidation)
	}
	if err := shared.Validate(req); err != nil {
		return nil, err
	}

	party, err := s.parties.Get(ctx, req.PartyID)
	if err != nil {
		return nil, fmt.Errorf("verify party: %w", err)
	}
	if party.Kind != docType.PartyKind() {
		return nil, fmt.Errorf("documents: party %d is not a %s: %w", req.PartyID, docType.PartyKind(), httpx.ErrValidation)
	}

	lines, err := s.buildLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	discountType := pricing.DiscountType(req.DiscountType)
	if discountType == "" {
		discountType = pricing.DiscountAmount
	}
	taxRate := pricing.DefaultTaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	totals := pricing.ComputeTotals(lineInputs(lines), req.DiscountValue, discountType, taxRate)

	docNumber, err := s.repo.GenerateNumber(ctx, docType, req.DocDate)
	if err != nil {
		return nil, fmt.Errorf("generate doc number: %w", err)
	}

	doc := Document{
		DocNumber:      docNumber,
		Type:           docType,
		PartyID:        req.PartyID,
		DocDate:        req.DocDate,
		Status:         StatusDraft,
		DiscountType:   discountType,
		DiscountValue:  req.DiscountValue,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		TaxRate:        taxRate,
		TaxAmount:      totals.TaxAmount,
		TotalAmount:    totals.TotalAmount,
		Notes:          req.Notes,
		CreatedBy:      createdBy,
	}

	var docID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, doc)
		if err != nil {
			return err
		}
		docID = id
		for _, line := range lines {
			line.DocumentID = docID
			if _, err := repo.InsertLine(ctx, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, docID)
}

// Update patches a DRAFT document and recomputes its totals. Totals are
// recomputed even when only the discount or tax configuration changes.
func (s *Service) Update(ctx context.Context, docType DocType, id int64, req UpdateDocumentRequest) (*Document, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, docType, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != StatusDraft {
		return nil, fmt.Errorf("documents: only DRAFT documents can be edited: %w", httpx.ErrConflict)
	}

	doc := *existing
	if req.DocDate != nil {
		doc.DocDate = *req.DocDate
	}
	if req.Notes != nil {
		doc.Notes = req.Notes
	}
	if req.DiscountType != nil {
		doc.DiscountType = pricing.DiscountType(*req.DiscountType)
	}
	if req.DiscountValue != nil {
		doc.DiscountValue = *req.DiscountValue
	}
	if req.TaxRate != nil {
		doc.TaxRate = *req.TaxRate
	}

	lines := existing.Lines
	if req.Lines != nil {
		lines, err = s.buildLines(ctx, *req.Lines)
		if err != nil {
			return nil, err
		}
	}

	totals := pricing.ComputeTotals(lineInputs(lines), doc.DiscountValue, doc.DiscountType, doc.TaxRate)
	doc.Subtotal = totals.Subtotal
	doc.DiscountAmount = totals.DiscountAmount
	doc.TaxAmount = totals.TaxAmount
	doc.TotalAmount = totals.TotalAmount

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.UpdateHeader(ctx, doc); err != nil {
			return err
		}
		if req.Lines != nil {
			if err := repo.DeleteLines(ctx, id); err != nil {
				return err
			}
			for _, line := range lines {
				line.DocumentID = id
				if _, err := repo.InsertLine(ctx, line); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

// Submit moves a DRAFT document to SUBMITTED.
func (s *Service) Submit(ctx context.Context, docType DocType, id int64, userID int64) (*Document, error) {
	existing, err := s.Get(ctx, docType, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != StatusDraft {
		return nil, fmt.Errorf("documents: only DRAFT documents can be submitted: %w", httpx.ErrConflict)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusSubmitted, userID, nil); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Cancel moves a non-cancelled document to CANCELLED with a reason.
func (s *Service) Cancel(ctx context.Context, docType DocType, id int64, userID int64, reason string) (*Document, error) {
	existing, err := s.Get(ctx, docType, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == StatusCancelled {
		return nil, fmt.Errorf("documents: document is already cancelled: %w", httpx.ErrConflict)
	}
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled, userID, reasonPtr); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Get fetches one document, guarding against cross-type access.
func (s *Service) Get(ctx context.Context, docType DocType, id int64) (*Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Type != docType {
		return nil, fmt.Errorf("documents: document %d: %w", id, httpx.ErrNotFound)
	}
	return doc, nil
}

func (s *Service) List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error) {
	return s.repo.List(ctx, req)
}

// buildLines resolves catalog items for each requested line. The item name and
// default rate always come from the catalog record; a rate present in the
// request overrides the default. An unknown item id fails the whole request so
// no half-resolved document is ever written.
func (s *Service) buildLines(ctx context.Context, reqs []CreateLineReq) ([]Line, error) {
	lines := make([]Line, 0, len(reqs))
	for i, lr := range reqs {
		item, err := s.items.Get(ctx, lr.ItemID)
		if err != nil {
			return nil, fmt.Errorf("line %d: resolve item: %w", i+1, err)
		}
		rate := item.Price
		if lr.Rate != nil {
			rate = *lr.Rate
		}
		lines = append(lines, Line{
			ItemID:    item.ID,
			ItemName:  item.Name,
			Quantity:  lr.Quantity,
			Rate:      rate,
			Amount:    pricing.LineAmount(lr.Quantity, rate),
			LineOrder: i + 1,
		})
	}
	return lines, nil
}
