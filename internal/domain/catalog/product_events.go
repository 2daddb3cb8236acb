package catalog

import (
	"github.com/google/uuid"
	"github.com/proxima/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated = "ProductCreated"
	EventTypeProductUpdated = "ProductUpdated"
	EventTypeProductDeleted = "ProductDeleted"
	EventTypeStockAdjusted  = "StockAdjusted"
	EventTypeStockReceived  = "StockReceived"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Ref       string    `json:"ref"`
	Name      string    `json:"name"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Ref:             product.Ref,
		Name:            product.Name,
	}
}

// ProductUpdatedEvent is published when a product is updated
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Ref       string    `json:"ref"`
	Name      string    `json:"name"`
}

// NewProductUpdatedEvent creates a new ProductUpdatedEvent
func NewProductUpdatedEvent(product *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Ref:             product.Ref,
		Name:            product.Name,
	}
}

// ProductDeletedEvent is published when a product is deleted
type ProductDeletedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Ref       string    `json:"ref"`
}

// NewProductDeletedEvent creates a new ProductDeletedEvent
func NewProductDeletedEvent(product *Product) *ProductDeletedEvent {
	return &ProductDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductDeleted, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Ref:             product.Ref,
	}
}

// StockAdjustedEvent is published when a product's stock level changes
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID `json:"product_id"`
	Ref         string    `json:"ref"`
	OldQuantity int64     `json:"old_quantity"`
	Delta       int64     `json:"delta"`
	NewQuantity int64     `json:"new_quantity"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(product *Product, oldQuantity, delta int64) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Ref:             product.Ref,
		OldQuantity:     oldQuantity,
		Delta:           delta,
		NewQuantity:     product.QuantityOnHand,
	}
}

// StockReceivedEvent is published when a dated stock entry is recorded
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Ref       string    `json:"ref"`
	Quantity  int64     `json:"quantity"`
}

// NewStockReceivedEvent creates a new StockReceivedEvent
func NewStockReceivedEvent(entry *StockEntry, ref string) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReceived, AggregateTypeProduct, entry.ProductID),
		ProductID:       entry.ProductID,
		Ref:             ref,
		Quantity:        entry.Quantity,
	}
}
