package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/proxima/backend/internal/domain/billing"
	"github.com/proxima/backend/internal/domain/ledger"
	"github.com/proxima/backend/internal/domain/partner"
	"github.com/proxima/backend/internal/domain/shared"
)

// ClientService handles client business operations
type ClientService struct {
	clientRepo     partner.ClientRepository
	invoiceRepo    billing.InvoiceRepository
	paymentRepo    ledger.PaymentRepository
	eventPublisher shared.EventPublisher
}

// NewClientService creates a new ClientService
func NewClientService(
	clientRepo partner.ClientRepository,
	invoiceRepo billing.InvoiceRepository,
	paymentRepo ledger.PaymentRepository,
) *ClientService {
	return &ClientService{
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ClientService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new client
func (s *ClientService) Create(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	client, err := partner.NewClient(req.Name, req.Phone, req.Address, req.City)
	if err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, client)

	response := ToClientResponse(client)
	return &response, nil
}

// GetByID retrieves a client by ID
func (s *ClientService) GetByID(ctx context.Context, clientID uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	response := ToClientResponse(client)
	return &response, nil
}

// List retrieves clients with filtering and pagination
func (s *ClientService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[ClientResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	page, err := s.clientRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ClientResponse]{}, err
	}

	return shared.NewPaginated(ToClientResponses(page.Items), page.Total, page.Page, page.PageSize), nil
}

// Update updates a client's contact information
func (s *ClientService) Update(ctx context.Context, clientID uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if err := client.Update(req.Name, req.Phone, req.Address, req.City); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, client)

	response := ToClientResponse(client)
	return &response, nil
}

// Delete deletes a client.
// A client with invoices or payments on file cannot be deleted.
func (s *ClientService) Delete(ctx context.Context, clientID uuid.UUID) error {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return err
	}

	invoiceCount, err := s.invoiceRepo.CountByClientID(ctx, clientID)
	if err != nil {
		return err
	}
	if invoiceCount > 0 {
		return shared.ErrInvalidState.WithMessagef(
			"Client %s has %d invoice(s) and cannot be deleted", client.Name, invoiceCount)
	}

	payments, err := s.paymentRepo.FindByClientID(ctx, clientID)
	if err != nil {
		return err
	}
	if len(payments) > 0 {
		return shared.ErrInvalidState.WithMessagef(
			"Client %s has %d payment(s) and cannot be deleted", client.Name, len(payments))
	}

	if err := s.clientRepo.Delete(ctx, clientID); err != nil {
		return err
	}

	client.AddDomainEvent(partner.NewClientDeletedEvent(client))
	s.publishEvents(ctx, client)

	return nil
}

// Statement builds the client account statement: finalized invoices with
// their remaining balances, payments with their allocations, and the
// overall balance the client still owes.
func (s *ClientService) Statement(ctx context.Context, clientID uuid.UUID) (*ClientStatement, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.FindByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.FindByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	statement := &ClientStatement{
		Client:        ToClientResponse(client),
		Invoices:      make([]StatementInvoiceLine, 0, len(invoices)),
		Payments:      make([]StatementPaymentLine, 0, len(payments)),
		TotalInvoiced: decimal.Zero,
		TotalReturned: decimal.Zero,
		TotalPaid:     decimal.Zero,
		GeneratedAt:   time.Now(),
	}

	for _, invoice := range invoices {
		// Drafts have no financial effect yet
		if invoice.IsDraft() {
			continue
		}

		allocated, err := s.paymentRepo.SumAllocatedToInvoice(ctx, invoice.ID)
		if err != nil {
			return nil, err
		}

		netPayable := invoice.NetPayable()
		statement.Invoices = append(statement.Invoices, StatementInvoiceLine{
			InvoiceID:   invoice.ID,
			Number:      invoice.Number,
			IssueDate:   invoice.IssueDate,
			Status:      invoice.Status.String(),
			TotalAmount: invoice.TotalAmount,
			Returned:    invoice.ReturnedAmount(),
			NetPayable:  netPayable,
			Allocated:   allocated,
			Balance:     netPayable.Sub(allocated),
		})
		statement.TotalInvoiced = statement.TotalInvoiced.Add(invoice.TotalAmount)
		statement.TotalReturned = statement.TotalReturned.Add(invoice.ReturnedAmount())
	}

	for _, payment := range payments {
		statement.Payments = append(statement.Payments, StatementPaymentLine{
			PaymentID:   payment.ID,
			Number:      payment.Number,
			PaymentDate: payment.PaymentDate,
			Bank:        payment.Bank,
			DueDate:     payment.DueDate,
			Amount:      payment.Amount,
			Allocated:   payment.AllocatedAmount(),
			Unallocated: payment.UnallocatedAmount(),
		})
		statement.TotalPaid = statement.TotalPaid.Add(payment.Amount)
	}

	statement.Balance = statement.TotalInvoiced.
		Sub(statement.TotalReturned).
		Sub(statement.TotalPaid)

	return statement, nil
}

func (s *ClientService) publishEvents(ctx context.Context, client *partner.Client) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range client.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	client.ClearDomainEvents()
}
