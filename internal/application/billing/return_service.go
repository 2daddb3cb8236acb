package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/proxima/backend/internal/domain/billing"
	"github.com/proxima/backend/internal/domain/shared"
	"github.com/proxima/backend/internal/domain/shared/valueobject"
)

// ReturnService handles customer return operations
type ReturnService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
}

// NewReturnService creates a new ReturnService
func NewReturnService(txScope TransactionScope) *ReturnService {
	return &ReturnService{txScope: txScope}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ReturnService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AcceptReturn accepts a customer return against a finalized invoice.
// In one transaction it checks every returned quantity against what the
// invoice line still has outstanding, credits the stock back, records a
// credit note and moves the invoice status. A single over-returned line
// rolls the whole return back.
//
// The response carries a non-fatal warning when the return leaves the
// invoice with more money allocated to it than it is now worth.
func (s *ReturnService) AcceptReturn(ctx context.Context, invoiceID uuid.UUID, req AcceptReturnRequest) (*CreditNoteResponse, error) {
	if len(req.Lines) == 0 {
		return nil, shared.ErrInvalidAmount.WithMessage("Return must have at least one line")
	}

	var (
		note    *billing.CreditNote
		invoice *billing.Invoice
		warning string
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = repos.InvoiceRepo().FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}

		number, err := repos.CreditNoteRepo().GenerateNumber(ctx)
		if err != nil {
			return err
		}

		note, err = billing.NewCreditNote(number, invoice.ID, invoice.Number, invoice.ClientID)
		if err != nil {
			return err
		}

		for _, lineReq := range req.Lines {
			line, err := invoice.GetLineByID(lineReq.LineID)
			if err != nil {
				return err
			}

			if err := invoice.ApplyReturn(line.ID, lineReq.Quantity); err != nil {
				return err
			}

			product, err := repos.ProductRepo().FindByIDForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if err := product.AdjustStock(lineReq.Quantity); err != nil {
				return err
			}
			if err := repos.ProductRepo().SaveWithLock(ctx, product); err != nil {
				return err
			}

			if err := note.AddLine(line.ProductID, line.ProductRef, line.ProductName,
				lineReq.Quantity, valueobject.NewMoneyMAD(line.UnitPrice)); err != nil {
				return err
			}
		}

		if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
			return err
		}
		if err := repos.CreditNoteRepo().Save(ctx, note); err != nil {
			return err
		}

		allocated, err := repos.PaymentRepo().SumAllocatedToInvoice(ctx, invoice.ID)
		if err != nil {
			return err
		}
		warning = balanceIntegrityWarning(invoice, allocated)

		return nil
	})
	if err != nil {
		return nil, err
	}

	invoice.AddDomainEvent(billing.NewReturnAcceptedEvent(note))
	s.publishEvents(ctx, invoice)

	response := ToCreditNoteResponse(note, invoice.Status, warning)
	return &response, nil
}

// GetByID retrieves a credit note by ID
func (s *ReturnService) GetByID(ctx context.Context, noteID uuid.UUID) (*CreditNoteResponse, error) {
	var response CreditNoteResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		note, err := repos.CreditNoteRepo().FindByID(ctx, noteID)
		if err != nil {
			return err
		}
		invoice, err := repos.InvoiceRepo().FindByID(ctx, note.InvoiceID)
		if err != nil {
			return err
		}
		response = ToCreditNoteResponse(note, invoice.Status, "")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListByInvoice retrieves the credit notes recorded against an invoice
func (s *ReturnService) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]CreditNoteResponse, error) {
	var responses []CreditNoteResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}

		notes, err := repos.CreditNoteRepo().FindByInvoiceID(ctx, invoiceID)
		if err != nil {
			return err
		}

		responses = make([]CreditNoteResponse, 0, len(notes))
		for _, note := range notes {
			responses = append(responses, ToCreditNoteResponse(note, invoice.Status, ""))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (s *ReturnService) publishEvents(ctx context.Context, invoice *billing.Invoice) {
	if s.eventPublisher == nil || invoice == nil {
		return
	}
	for _, event := range invoice.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	invoice.ClearDomainEvents()
}
