package billing

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/proxima/backend/internal/domain/billing"
	"github.com/proxima/backend/internal/domain/partner"
	"github.com/proxima/backend/internal/domain/shared"
	"github.com/proxima/backend/internal/domain/shared/valueobject"
)

// InvoiceService handles invoice business operations
type InvoiceService struct {
	txScope        TransactionScope
	clientRepo     partner.ClientRepository
	eventPublisher shared.EventPublisher
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(txScope TransactionScope, clientRepo partner.ClientRepository) *InvoiceService {
	return &InvoiceService{
		txScope:    txScope,
		clientRepo: clientRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateDraft creates a new draft invoice with the given lines.
// Product name, ref and price are snapshotted from the catalog. The
// invoice number is taken from the request when supplied, otherwise
// one is generated.
func (s *InvoiceService) CreateDraft(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	var invoice *billing.Invoice
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		number := strings.TrimSpace(req.Number)
		if number == "" {
			var err error
			number, err = repos.InvoiceRepo().GenerateNumber(ctx)
			if err != nil {
				return err
			}
		} else {
			if _, err := repos.InvoiceRepo().FindByNumber(ctx, number); err == nil {
				return shared.ErrDuplicateKey.WithMessagef("An invoice numbered %s already exists", number)
			} else if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
		}

		var err error
		invoice, err = billing.NewInvoice(number, client.ID, client.Name, req.IssueDate)
		if err != nil {
			return err
		}
		if err := invoice.SetParcelCount(req.ParcelCount); err != nil {
			return err
		}

		for _, lineReq := range req.Lines {
			if err := addLineFromCatalog(ctx, repos, invoice, lineReq); err != nil {
				return err
			}
		}

		return repos.InvoiceRepo().Save(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// addLineFromCatalog snapshots the product onto a new invoice line
func addLineFromCatalog(ctx context.Context, repos TransactionalRepositories, invoice *billing.Invoice, req InvoiceLineRequest) error {
	product, err := repos.ProductRepo().FindByID(ctx, req.ProductID)
	if err != nil {
		return err
	}

	unitPrice := product.GetUnitPriceMoney()
	if req.UnitPrice != nil {
		unitPrice = valueobject.NewMoneyMAD(*req.UnitPrice)
	}

	_, err = invoice.AddLine(product.ID, product.Ref, product.Name, req.Quantity, unitPrice)
	return err
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var response InvoiceResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		response = ToInvoiceResponse(invoice)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetBalance retrieves an invoice with its allocation state. The response
// carries a balance integrity warning when returns have pushed the net
// payable below what is already allocated.
func (s *InvoiceService) GetBalance(ctx context.Context, invoiceID uuid.UUID) (*InvoiceBalanceResponse, error) {
	var response InvoiceBalanceResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}

		allocated, err := repos.PaymentRepo().SumAllocatedToInvoice(ctx, invoice.ID)
		if err != nil {
			return err
		}

		response = InvoiceBalanceResponse{
			InvoiceResponse: ToInvoiceResponse(invoice),
			Allocated:       allocated,
			Balance:         invoice.NetPayable().Sub(allocated),
		}
		response.Warning = balanceIntegrityWarning(invoice, allocated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[InvoiceResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	var result shared.Paginated[InvoiceResponse]
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		page, err := repos.InvoiceRepo().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		result = shared.NewPaginated(ToInvoiceResponses(page.Items), page.Total, page.Page, page.PageSize)
		return nil
	})
	if err != nil {
		return shared.Paginated[InvoiceResponse]{}, err
	}
	return result, nil
}

// AddLine adds a line to a draft invoice
func (s *InvoiceService) AddLine(ctx context.Context, invoiceID uuid.UUID, req InvoiceLineRequest) (*InvoiceResponse, error) {
	return s.mutateDraft(ctx, invoiceID, func(repos TransactionalRepositories, invoice *billing.Invoice) error {
		return addLineFromCatalog(ctx, repos, invoice, req)
	})
}

// UpdateLine updates quantity or price on a draft invoice line
func (s *InvoiceService) UpdateLine(ctx context.Context, invoiceID, lineID uuid.UUID, req UpdateInvoiceLineRequest) (*InvoiceResponse, error) {
	return s.mutateDraft(ctx, invoiceID, func(repos TransactionalRepositories, invoice *billing.Invoice) error {
		if req.Quantity != nil {
			if err := invoice.UpdateLineQuantity(lineID, *req.Quantity); err != nil {
				return err
			}
		}
		if req.UnitPrice != nil {
			if err := invoice.UpdateLinePrice(lineID, valueobject.NewMoneyMAD(*req.UnitPrice)); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveLine removes a line from a draft invoice
func (s *InvoiceService) RemoveLine(ctx context.Context, invoiceID, lineID uuid.UUID) (*InvoiceResponse, error) {
	return s.mutateDraft(ctx, invoiceID, func(repos TransactionalRepositories, invoice *billing.Invoice) error {
		return invoice.RemoveLine(lineID)
	})
}

// SetParcelCount sets the parcel count on an invoice
func (s *InvoiceService) SetParcelCount(ctx context.Context, invoiceID uuid.UUID, count int) (*InvoiceResponse, error) {
	return s.mutateDraft(ctx, invoiceID, func(repos TransactionalRepositories, invoice *billing.Invoice) error {
		return invoice.SetParcelCount(count)
	})
}

func (s *InvoiceService) mutateDraft(ctx context.Context, invoiceID uuid.UUID, fn func(TransactionalRepositories, *billing.Invoice) error) (*InvoiceResponse, error) {
	var invoice *billing.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = repos.InvoiceRepo().FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := fn(repos, invoice); err != nil {
			return err
		}
		return repos.InvoiceRepo().SaveWithLock(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Finalize transitions a draft invoice to FINALIZED and debits stock for
// every line. Either all lines are debited and the invoice finalized, or
// nothing changes: a single product short on stock rolls the whole
// transaction back.
func (s *InvoiceService) Finalize(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var invoice *billing.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = repos.InvoiceRepo().FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}

		if err := invoice.Finalize(); err != nil {
			return err
		}

		for _, line := range invoice.Lines {
			product, err := repos.ProductRepo().FindByIDForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if err := product.AdjustStock(-line.Quantity); err != nil {
				return err
			}
			if err := repos.ProductRepo().SaveWithLock(ctx, product); err != nil {
				return err
			}
		}

		return repos.InvoiceRepo().SaveWithLock(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Delete deletes a draft invoice. Finalized invoices are immutable and
// cannot be deleted.
func (s *InvoiceService) Delete(ctx context.Context, invoiceID uuid.UUID) error {
	var invoice *billing.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = repos.InvoiceRepo().FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}

		if !invoice.IsDraft() {
			return shared.ErrInvalidState.WithMessagef(
				"Invoice %s is %s and cannot be deleted", invoice.Number, invoice.Status)
		}

		return repos.InvoiceRepo().Delete(ctx, invoiceID)
	})
	if err != nil {
		return err
	}

	invoice.AddDomainEvent(billing.NewInvoiceDeletedEvent(invoice))
	s.publishEvents(ctx, invoice)

	return nil
}

// balanceIntegrityWarning reports when allocations exceed the net payable.
// This state is reachable when returns shrink an invoice that was already
// paid; it is surfaced to the operator instead of blocking the return.
func balanceIntegrityWarning(invoice *billing.Invoice, allocated decimal.Decimal) string {
	if allocated.GreaterThan(invoice.NetPayable()) {
		return "allocations of " + allocated.StringFixed(2) +
			" exceed net payable of " + invoice.NetPayable().StringFixed(2) +
			" on invoice " + invoice.Number
	}
	return ""
}

func (s *InvoiceService) publishEvents(ctx context.Context, invoice *billing.Invoice) {
	if s.eventPublisher == nil || invoice == nil {
		return
	}
	for _, event := range invoice.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	invoice.ClearDomainEvents()
}
