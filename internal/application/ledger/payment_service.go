package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appbilling "github.com/proxima/backend/internal/application/billing"
	"github.com/proxima/backend/internal/domain/ledger"
	"github.com/proxima/backend/internal/domain/shared"
	"github.com/proxima/backend/internal/domain/shared/valueobject"
)

// PaymentService handles payment and allocation operations
type PaymentService struct {
	txScope        appbilling.TransactionScope
	eventPublisher shared.EventPublisher
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(txScope appbilling.TransactionScope) *PaymentService {
	return &PaymentService{txScope: txScope}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Record records a payment and optionally allocates it to invoices in the
// same transaction. A failing allocation rolls back the whole payment.
// The payment number is taken from the request when supplied, otherwise
// one is generated.
func (s *PaymentService) Record(ctx context.Context, req RecordPaymentRequest) (*PaymentResponse, error) {
	var payment *ledger.Payment
	err := s.txScope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
		number := strings.TrimSpace(req.Number)
		if number == "" {
			var err error
			number, err = repos.PaymentRepo().GenerateNumber(ctx)
			if err != nil {
				return err
			}
		} else {
			if _, err := repos.PaymentRepo().FindByNumber(ctx, number); err == nil {
				return shared.ErrDuplicateKey.WithMessagef("A payment numbered %s already exists", number)
			} else if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
		}

		var err error
		payment, err = ledger.NewPayment(number, req.ClientID,
			valueobject.NewMoneyMAD(req.Amount), req.Bank, req.PaymentDate, req.DueDate)
		if err != nil {
			return err
		}

		for _, alloc := range req.Allocations {
			if err := allocate(ctx, repos, payment, alloc.InvoiceID, valueobject.NewMoneyMAD(alloc.Amount)); err != nil {
				return err
			}
		}

		return repos.PaymentRepo().Save(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, payment)

	response := ToPaymentResponse(payment)
	return &response, nil
}

// allocate runs both sides of the over-allocation guard: the payment must
// have enough unallocated left (checked by the aggregate) and the invoice
// must have enough balance left across all payments (checked here).
func allocate(ctx context.Context, repos appbilling.TransactionalRepositories, payment *ledger.Payment, invoiceID uuid.UUID, amount valueobject.Money) error {
	invoice, err := repos.InvoiceRepo().FindByID(ctx, invoiceID)
	if err != nil {
		return err
	}

	if invoice.IsDraft() {
		return shared.ErrInvalidState.WithMessagef(
			"Invoice %s is a draft and cannot receive allocations", invoice.Number)
	}
	if invoice.ClientID != payment.ClientID {
		return shared.ErrInvalidState.WithMessagef(
			"Invoice %s belongs to a different client", invoice.Number)
	}

	// The persisted sum must exclude this payment's own rows: the aggregate
	// may carry unsaved allocations (Record, Reallocate) that the database
	// does not reflect yet, so its share is taken from memory instead.
	othersAllocated, err := repos.PaymentRepo().SumAllocatedToInvoiceExcludingPayment(ctx, invoiceID, payment.ID)
	if err != nil {
		return err
	}
	pending := decimal.Zero
	if existing, ok := payment.AllocationForInvoice(invoiceID); ok {
		pending = existing.Amount
	}

	alreadyAllocated := othersAllocated.Add(pending)
	if alreadyAllocated.Add(amount.Amount()).GreaterThan(invoice.NetPayable()) {
		return shared.ErrOverAllocation.WithMessagef(
			"Allocation %s exceeds remaining balance %s on invoice %s",
			amount.Amount().StringFixed(2),
			invoice.NetPayable().Sub(alreadyAllocated).StringFixed(2),
			invoice.Number)
	}

	return payment.Allocate(invoiceID, amount)
}

// Allocate applies part of an existing payment to an invoice
func (s *PaymentService) Allocate(ctx context.Context, paymentID uuid.UUID, req AllocationRequest) (*PaymentResponse, error) {
	var payment *ledger.Payment
	err := s.txScope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
		var err error
		payment, err = repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}

		if err := allocate(ctx, repos, payment, req.InvoiceID, valueobject.NewMoneyMAD(req.Amount)); err != nil {
			return err
		}

		return repos.PaymentRepo().SaveWithLock(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, payment)

	response := ToPaymentResponse(payment)
	return &response, nil
}

// Deallocate removes a payment's allocation to an invoice
func (s *PaymentService) Deallocate(ctx context.Context, paymentID, invoiceID uuid.UUID) (*PaymentResponse, error) {
	var payment *ledger.Payment
	err := s.txScope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
		var err error
		payment, err = repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}

		if _, err := payment.Deallocate(invoiceID); err != nil {
			return err
		}

		return repos.PaymentRepo().SaveWithLock(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, payment)

	response := ToPaymentResponse(payment)
	return &response, nil
}

// Reallocate atomically moves part of a payment from one invoice to
// another. The freed amount is re-allocated under the same guards as a
// fresh allocation; any failure restores the original state.
func (s *PaymentService) Reallocate(ctx context.Context, paymentID uuid.UUID, req ReallocateRequest) (*PaymentResponse, error) {
	var payment *ledger.Payment
	err := s.txScope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
		var err error
		payment, err = repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}

		freed, err := payment.Deallocate(req.FromInvoiceID)
		if err != nil {
			return err
		}

		amount := req.Amount
		if amount.IsZero() {
			amount = freed
		}
		if amount.GreaterThan(freed) {
			return shared.ErrOverAllocation.WithMessagef(
				"Cannot move %s, only %s was allocated to the source invoice",
				amount.StringFixed(2), freed.StringFixed(2))
		}

		if err := allocate(ctx, repos, payment, req.ToInvoiceID, valueobject.NewMoneyMAD(amount)); err != nil {
			return err
		}

		return repos.PaymentRepo().SaveWithLock(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, payment)

	response := ToPaymentResponse(payment)
	return &response, nil
}

// GetByID retrieves a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	var response PaymentResponse
	err := s.txScope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
		payment, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		response = ToPaymentResponse(payment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves payments with filtering and pagination
func (s *PaymentService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[PaymentResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	var result shared.Paginated[PaymentResponse]
	err := s.txScope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
		page, err := repos.PaymentRepo().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		result = shared.NewPaginated(ToPaymentResponses(page.Items), page.Total, page.Page, page.PageSize)
		return nil
	})
	if err != nil {
		return shared.Paginated[PaymentResponse]{}, err
	}
	return result, nil
}

// Delete deletes a payment that has no allocations
func (s *PaymentService) Delete(ctx context.Context, paymentID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
		payment, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}

		if len(payment.Allocations) > 0 {
			return shared.ErrInvalidState.WithMessagef(
				"Payment %s has allocations and cannot be deleted", payment.Number)
		}

		return repos.PaymentRepo().Delete(ctx, paymentID)
	})
}

func (s *PaymentService) publishEvents(ctx context.Context, payment *ledger.Payment) {
	if s.eventPublisher == nil || payment == nil {
		return
	}
	for _, event := range payment.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	payment.ClearDomainEvents()
}
