package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/proxima/backend/internal/domain/shared"
)

// ProductRepository defines the persistence interface for products
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	SaveWithLock(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByRef(ctx context.Context, ref string) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*Product], error)
	ExistsByRef(ctx context.Context, ref string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// StockEntryRepository defines the persistence interface for stock entries
type StockEntryRepository interface {
	Save(ctx context.Context, entry *StockEntry) error
	FindByProductID(ctx context.Context, productID uuid.UUID) ([]*StockEntry, error)
}
