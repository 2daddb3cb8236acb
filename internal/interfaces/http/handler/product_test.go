package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/proxima/backend/internal/application/catalog"
	"github.com/proxima/backend/internal/domain/billing"
	"github.com/proxima/backend/internal/domain/catalog"
	"github.com/proxima/backend/internal/domain/shared"
	"github.com/proxima/backend/internal/domain/shared/valueobject"
)

// MockProductRepository implements catalog.ProductRepository for testing
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByRef(ctx context.Context, ref string) (*catalog.Product, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*catalog.Product], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*catalog.Product]), args.Error(1)
}

func (m *MockProductRepository) ExistsByRef(ctx context.Context, ref string) (bool, error) {
	args := m.Called(ctx, ref)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStockEntryRepository implements catalog.StockEntryRepository for testing
type MockStockEntryRepository struct {
	mock.Mock
}

func (m *MockStockEntryRepository) Save(ctx context.Context, entry *catalog.StockEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockStockEntryRepository) FindByProductID(ctx context.Context, productID uuid.UUID) ([]*catalog.StockEntry, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.StockEntry), args.Error(1)
}

// MockInvoiceCounter implements billing.InvoiceRepository for testing
type MockInvoiceCounter struct {
	mock.Mock
}

func (m *MockInvoiceCounter) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceCounter) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceCounter) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceCounter) FindByNumber(ctx context.Context, number string) (*billing.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceCounter) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*billing.Invoice], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*billing.Invoice]), args.Error(1)
}

func (m *MockInvoiceCounter) FindByClientID(ctx context.Context, clientID uuid.UUID) ([]*billing.Invoice, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceCounter) CountByClientID(ctx context.Context, clientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceCounter) CountByProductID(ctx context.Context, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceCounter) GenerateNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceCounter) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newProductRouter(productRepo *MockProductRepository, stockRepo *MockStockEntryRepository, invoiceRepo *MockInvoiceCounter) *gin.Engine {
	service := catalogapp.NewProductService(productRepo, stockRepo, invoiceRepo)
	h := NewProductHandler(service)

	router := gin.New()
	router.POST("/products", h.Create)
	router.GET("/products/:id", h.GetByID)
	router.DELETE("/products/:id", h.Delete)
	return router
}

func TestProductHandler_Create(t *testing.T) {
	t.Run("creates a product", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		productRepo.On("ExistsByRef", mock.Anything, "CARR-6060").Return(false, nil)
		productRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

		router := newProductRouter(productRepo, new(MockStockEntryRepository), new(MockInvoiceCounter))

		body, _ := json.Marshal(CreateProductRequest{
			Ref:           "CARR-6060",
			Name:          "Ceramic tile 60x60",
			UnitPrice:     120.50,
			PurchasePrice: 85.00,
		})
		req := httptest.NewRequest("POST", "/products", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		productRepo.AssertExpectations(t)
	})

	t.Run("rejects a duplicate ref", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		productRepo.On("ExistsByRef", mock.Anything, "CARR-6060").Return(true, nil)

		router := newProductRouter(productRepo, new(MockStockEntryRepository), new(MockInvoiceCounter))

		body, _ := json.Marshal(CreateProductRequest{
			Ref:           "CARR-6060",
			Name:          "Ceramic tile 60x60",
			UnitPrice:     120.50,
			PurchasePrice: 85.00,
		})
		req := httptest.NewRequest("POST", "/products", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("rejects an invalid body", func(t *testing.T) {
		router := newProductRouter(new(MockProductRepository), new(MockStockEntryRepository), new(MockInvoiceCounter))

		req := httptest.NewRequest("POST", "/products", bytes.NewReader([]byte(`{"name":""}`)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProductHandler_GetByID(t *testing.T) {
	product, err := catalog.NewProduct("CARR-6060", "Ceramic tile 60x60",
		valueobject.NewMoneyMADFromFloat(120.50), valueobject.NewMoneyMADFromFloat(85.00))
	require.NoError(t, err)

	t.Run("returns the product", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

		router := newProductRouter(productRepo, new(MockStockEntryRepository), new(MockInvoiceCounter))

		req := httptest.NewRequest("GET", "/products/"+product.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("maps a missing product to 404", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		productRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

		router := newProductRouter(productRepo, new(MockStockEntryRepository), new(MockInvoiceCounter))

		req := httptest.NewRequest("GET", "/products/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects a malformed ID", func(t *testing.T) {
		router := newProductRouter(new(MockProductRepository), new(MockStockEntryRepository), new(MockInvoiceCounter))

		req := httptest.NewRequest("GET", "/products/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProductHandler_Delete(t *testing.T) {
	product, err := catalog.NewProduct("CARR-6060", "Ceramic tile 60x60",
		valueobject.NewMoneyMADFromFloat(120.50), valueobject.NewMoneyMADFromFloat(85.00))
	require.NoError(t, err)

	t.Run("refuses to delete a referenced product", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		invoiceRepo := new(MockInvoiceCounter)
		productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		invoiceRepo.On("CountByProductID", mock.Anything, product.ID).Return(int64(2), nil)

		router := newProductRouter(productRepo, new(MockStockEntryRepository), invoiceRepo)

		req := httptest.NewRequest("DELETE", "/products/"+product.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("deletes an unreferenced product", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		invoiceRepo := new(MockInvoiceCounter)
		productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		invoiceRepo.On("CountByProductID", mock.Anything, product.ID).Return(int64(0), nil)
		productRepo.On("Delete", mock.Anything, product.ID).Return(nil)

		router := newProductRouter(productRepo, new(MockStockEntryRepository), invoiceRepo)

		req := httptest.NewRequest("DELETE", "/products/"+product.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
