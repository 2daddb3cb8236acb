package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/proxima/backend/internal/domain/shared"
)

// PaymentRepository defines the persistence interface for payments
type PaymentRepository interface {
	Save(ctx context.Context, payment *Payment) error
	SaveWithLock(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByNumber(ctx context.Context, number string) (*Payment, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*Payment], error)
	FindByClientID(ctx context.Context, clientID uuid.UUID) ([]*Payment, error)
	// SumAllocatedToInvoice returns the total allocated to an invoice across all payments
	SumAllocatedToInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
	// SumAllocatedToInvoiceExcludingPayment returns the total allocated to an invoice
	// by every payment other than the given one
	SumAllocatedToInvoiceExcludingPayment(ctx context.Context, invoiceID, paymentID uuid.UUID) (decimal.Decimal, error)
	GenerateNumber(ctx context.Context) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
