package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/proxima/backend/internal/domain/shared"
)

// StockEntry records a dated stock receipt for a product.
// Entries are append-only; the on-hand quantity lives on the Product.
type StockEntry struct {
	shared.BaseEntity
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity   int64     `gorm:"not null"`
	EntryDate  time.Time `gorm:"not null"`
	Reference  string    `gorm:"type:varchar(100)"` // Supplier delivery note or similar
}

// TableName returns the table name for GORM
func (StockEntry) TableName() string {
	return "stock_entries"
}

// NewStockEntry creates a new stock receipt entry
func NewStockEntry(productID uuid.UUID, quantity int64, entryDate time.Time, reference string) (*StockEntry, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID is required")
	}
	if quantity <= 0 {
		return nil, shared.ErrInvalidAmount.WithMessage("Stock entry quantity must be positive")
	}
	if entryDate.IsZero() {
		entryDate = time.Now()
	}

	return &StockEntry{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		Quantity:   quantity,
		EntryDate:  entryDate,
		Reference:  reference,
	}, nil
}
