package catalog

import (
	"strings"
	"time"

	"github.com/proxima/backend/internal/domain/shared"
	"github.com/proxima/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
// It is the aggregate root for product and stock operations
type Product struct {
	shared.BaseAggregateRoot
	Ref            string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string          `gorm:"type:varchar(200);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Selling price
	PurchasePrice  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Cost price
	QuantityOnHand int64           `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product with zero stock
func NewProduct(ref, name string, unitPrice, purchasePrice valueobject.Money) (*Product, error) {
	if err := validateProductRef(ref); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if purchasePrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Purchase price cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Ref:               strings.ToUpper(ref),
		Name:              name,
		UnitPrice:         unitPrice.Amount(),
		PurchasePrice:     purchasePrice.Amount(),
		QuantityOnHand:    0,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's name and prices
// The ref is immutable once the product is created
func (p *Product) Update(name string, unitPrice, purchasePrice valueobject.Money) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if purchasePrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Purchase price cannot be negative")
	}

	p.Name = name
	p.UnitPrice = unitPrice.Amount()
	p.PurchasePrice = purchasePrice.Amount()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// AdjustStock applies a signed delta to the quantity on hand.
// It is the only mutation path for stock. A delta that would drive the
// quantity below zero is rejected and the product is left unchanged.
func (p *Product) AdjustStock(delta int64) error {
	if delta == 0 {
		return shared.ErrInvalidAmount.WithMessage("Stock adjustment delta cannot be zero")
	}

	newQuantity := p.QuantityOnHand + delta
	if newQuantity < 0 {
		return shared.ErrInsufficientStock.WithMessagef(
			"Insufficient stock for product %s: on hand %d, requested %d",
			p.Ref, p.QuantityOnHand, -delta)
	}

	oldQuantity := p.QuantityOnHand
	p.QuantityOnHand = newQuantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewStockAdjustedEvent(p, oldQuantity, delta))

	return nil
}

// HasStock returns true if at least the given quantity is on hand
func (p *Product) HasStock(quantity int64) bool {
	return p.QuantityOnHand >= quantity
}

// GetUnitPriceMoney returns the selling price as a Money value object
func (p *Product) GetUnitPriceMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(p.UnitPrice)
}

// GetPurchasePriceMoney returns the cost price as a Money value object
func (p *Product) GetPurchasePriceMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(p.PurchasePrice)
}

// StockValue returns the quantity on hand valued at purchase price
func (p *Product) StockValue() valueobject.Money {
	return valueobject.NewMoneyMAD(p.PurchasePrice.Mul(decimal.NewFromInt(p.QuantityOnHand)))
}

// validateProductRef validates the product reference (SKU)
func validateProductRef(ref string) error {
	if ref == "" {
		return shared.NewDomainError("INVALID_REF", "Product ref cannot be empty")
	}
	if len(ref) > 50 {
		return shared.NewDomainError("INVALID_REF", "Product ref cannot exceed 50 characters")
	}
	for _, r := range ref {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_REF", "Product ref can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
