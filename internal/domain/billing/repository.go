package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/proxima/backend/internal/domain/shared"
)

// InvoiceRepository defines the persistence interface for invoices
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *Invoice) error
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, number string) (*Invoice, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*Invoice], error)
	FindByClientID(ctx context.Context, clientID uuid.UUID) ([]*Invoice, error)
	CountByClientID(ctx context.Context, clientID uuid.UUID) (int64, error)
	CountByProductID(ctx context.Context, productID uuid.UUID) (int64, error)
	GenerateNumber(ctx context.Context) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreditNoteRepository defines the persistence interface for credit notes
type CreditNoteRepository interface {
	Save(ctx context.Context, note *CreditNote) error
	FindByID(ctx context.Context, id uuid.UUID) (*CreditNote, error)
	FindByInvoiceID(ctx context.Context, invoiceID uuid.UUID) ([]*CreditNote, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*CreditNote], error)
	GenerateNumber(ctx context.Context) (string, error)
}
