package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/proxima/backend/internal/domain/billing"
	"github.com/proxima/backend/internal/domain/catalog"
	"github.com/proxima/backend/internal/domain/shared"
	"github.com/proxima/backend/internal/domain/shared/valueobject"
)

// ProductService handles product and stock business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	stockEntryRepo catalog.StockEntryRepository
	invoiceRepo    billing.InvoiceRepository
	eventPublisher shared.EventPublisher
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	stockEntryRepo catalog.StockEntryRepository,
	invoiceRepo billing.InvoiceRepository,
) *ProductService {
	return &ProductService{
		productRepo:    productRepo,
		stockEntryRepo: stockEntryRepo,
		invoiceRepo:    invoiceRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	exists, err := s.productRepo.ExistsByRef(ctx, req.Ref)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrDuplicateKey.WithMessagef("Product with ref %s already exists", req.Ref)
	}

	product, err := catalog.NewProduct(req.Ref, req.Name,
		valueobject.NewMoneyMAD(req.UnitPrice), valueobject.NewMoneyMAD(req.PurchasePrice))
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetByRef retrieves a product by its reference
func (s *ProductService) GetByRef(ctx context.Context, ref string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[ProductResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	page, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}

	return shared.NewPaginated(ToProductResponses(page.Items), page.Total, page.Page, page.PageSize), nil
}

// Update updates a product's name and prices
func (s *ProductService) Update(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := product.Update(req.Name,
		valueobject.NewMoneyMAD(req.UnitPrice), valueobject.NewMoneyMAD(req.PurchasePrice)); err != nil {
		return nil, err
	}

	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Delete deletes a product.
// A product that appears on any invoice cannot be deleted.
func (s *ProductService) Delete(ctx context.Context, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}

	count, err := s.invoiceRepo.CountByProductID(ctx, productID)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrInvalidState.WithMessagef(
			"Product %s appears on %d invoice(s) and cannot be deleted", product.Ref, count)
	}

	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return err
	}

	product.AddDomainEvent(catalog.NewProductDeletedEvent(product))
	s.publishEvents(ctx, product)

	return nil
}

// ReceiveStock records a dated stock receipt and credits the on-hand quantity
func (s *ProductService) ReceiveStock(ctx context.Context, productID uuid.UUID, req ReceiveStockRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	entry, err := catalog.NewStockEntry(productID, req.Quantity, req.EntryDate, req.Reference)
	if err != nil {
		return nil, err
	}

	if err := product.AdjustStock(req.Quantity); err != nil {
		return nil, err
	}

	if err := s.stockEntryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	product.AddDomainEvent(catalog.NewStockReceivedEvent(entry, product.Ref))
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// AdjustStock applies a manual signed adjustment to a product's stock
func (s *ProductService) AdjustStock(ctx context.Context, productID uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := product.AdjustStock(req.Delta); err != nil {
		return nil, err
	}

	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// ListStockEntries returns the dated stock receipts for a product
func (s *ProductService) ListStockEntries(ctx context.Context, productID uuid.UUID) ([]StockEntryResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	entries, err := s.stockEntryRepo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}

	responses := make([]StockEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, ToStockEntryResponse(entry))
	}
	return responses, nil
}

// InventoryReport values the entire stock at purchase price
func (s *ProductService) InventoryReport(ctx context.Context) (*InventoryReport, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 10000
	filter.OrderBy = "ref"
	filter.OrderDir = "asc"

	page, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	report := &InventoryReport{
		Lines:       make([]InventoryReportLine, 0, len(page.Items)),
		TotalValue:  decimal.Zero,
		GeneratedAt: time.Now(),
	}
	for _, product := range page.Items {
		value := product.StockValue().Amount()
		report.Lines = append(report.Lines, InventoryReportLine{
			ProductID:      product.ID,
			Ref:            product.Ref,
			Name:           product.Name,
			QuantityOnHand: product.QuantityOnHand,
			PurchasePrice:  product.PurchasePrice,
			StockValue:     value,
		})
		report.TotalQuantity += product.QuantityOnHand
		report.TotalValue = report.TotalValue.Add(value)
	}

	return report, nil
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range product.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	product.ClearDomainEvents()
}
