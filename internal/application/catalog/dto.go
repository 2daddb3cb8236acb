package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/proxima/backend/internal/domain/catalog"
)

// CreateProductRequest is the request to create a product
type CreateProductRequest struct {
	Ref           string          `json:"ref"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// UpdateProductRequest is the request to update a product
type UpdateProductRequest struct {
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// ReceiveStockRequest is the request to record a stock receipt
type ReceiveStockRequest struct {
	Quantity  int64     `json:"quantity"`
	EntryDate time.Time `json:"entry_date"`
	Reference string    `json:"reference"`
}

// AdjustStockRequest is the request for a manual stock adjustment
type AdjustStockRequest struct {
	Delta int64 `json:"delta"`
}

// ProductResponse is the response for product operations
type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	Ref            string          `json:"ref"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	QuantityOnHand int64           `json:"quantity_on_hand"`
	StockValue     decimal.Decimal `json:"stock_value"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// StockEntryResponse is the response for a stock receipt
type StockEntryResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	EntryDate time.Time `json:"entry_date"`
	Reference string    `json:"reference"`
}

// InventoryReportLine is one product on the inventory report
type InventoryReportLine struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Ref            string          `json:"ref"`
	Name           string          `json:"name"`
	QuantityOnHand int64           `json:"quantity_on_hand"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	StockValue     decimal.Decimal `json:"stock_value"`
}

// InventoryReport values the whole stock at purchase price
type InventoryReport struct {
	Lines         []InventoryReportLine `json:"lines"`
	TotalQuantity int64                 `json:"total_quantity"`
	TotalValue    decimal.Decimal       `json:"total_value"`
	GeneratedAt   time.Time             `json:"generated_at"`
}

// ToProductResponse maps a product aggregate to its response
func ToProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:             product.ID,
		Ref:            product.Ref,
		Name:           product.Name,
		UnitPrice:      product.UnitPrice,
		PurchasePrice:  product.PurchasePrice,
		QuantityOnHand: product.QuantityOnHand,
		StockValue:     product.StockValue().Amount(),
		CreatedAt:      product.CreatedAt,
		UpdatedAt:      product.UpdatedAt,
	}
}

// ToProductResponses maps a slice of products
func ToProductResponses(products []*catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, ToProductResponse(p))
	}
	return responses
}

// ToStockEntryResponse maps a stock entry to its response
func ToStockEntryResponse(entry *catalog.StockEntry) StockEntryResponse {
	return StockEntryResponse{
		ID:        entry.ID,
		ProductID: entry.ProductID,
		Quantity:  entry.Quantity,
		EntryDate: entry.EntryDate,
		Reference: entry.Reference,
	}
}
