package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxima/backend/internal/domain/shared"
	"github.com/proxima/backend/internal/domain/shared/valueobject"
)

func TestNewProduct(t *testing.T) {
	tests := []struct {
		name      string
		ref       string
		prodName  string
		unitPrice valueobject.Money
		wantErr   bool
	}{
		{
			name:      "valid product",
			ref:       "prod-001",
			prodName:  "Savon noir 500g",
			unitPrice: valueobject.NewMoneyMADFromFloat(25),
			wantErr:   false,
		},
		{
			name:      "empty ref",
			ref:       "",
			prodName:  "Savon noir 500g",
			unitPrice: valueobject.NewMoneyMADFromFloat(25),
			wantErr:   true,
		},
		{
			name:      "ref with invalid characters",
			ref:       "prod 001",
			prodName:  "Savon noir 500g",
			unitPrice: valueobject.NewMoneyMADFromFloat(25),
			wantErr:   true,
		},
		{
			name:      "empty name",
			ref:       "prod-001",
			prodName:  "",
			unitPrice: valueobject.NewMoneyMADFromFloat(25),
			wantErr:   true,
		},
		{
			name:      "negative unit price",
			ref:       "prod-001",
			prodName:  "Savon noir 500g",
			unitPrice: valueobject.NewMoneyMADFromFloat(-1),
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, err := NewProduct(tt.ref, tt.prodName, tt.unitPrice, valueobject.ZeroMAD())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "PROD-001", product.Ref)
			assert.Equal(t, tt.prodName, product.Name)
			assert.Equal(t, int64(0), product.QuantityOnHand)
			assert.NotEqual(t, uuid.Nil, product.ID)
			assert.Len(t, product.GetDomainEvents(), 1)
		})
	}
}

func TestProductAdjustStock(t *testing.T) {
	newProduct := func(t *testing.T, onHand int64) *Product {
		product, err := NewProduct("PROD-001", "Savon noir 500g",
			valueobject.NewMoneyMADFromFloat(25), valueobject.NewMoneyMADFromFloat(15))
		require.NoError(t, err)
		if onHand > 0 {
			require.NoError(t, product.AdjustStock(onHand))
		}
		product.ClearDomainEvents()
		return product
	}

	t.Run("positive delta increases stock", func(t *testing.T) {
		product := newProduct(t, 0)
		require.NoError(t, product.AdjustStock(10))
		assert.Equal(t, int64(10), product.QuantityOnHand)
		assert.Len(t, product.GetDomainEvents(), 1)
	})

	t.Run("negative delta decreases stock", func(t *testing.T) {
		product := newProduct(t, 10)
		require.NoError(t, product.AdjustStock(-4))
		assert.Equal(t, int64(6), product.QuantityOnHand)
	})

	t.Run("delta to exactly zero is allowed", func(t *testing.T) {
		product := newProduct(t, 5)
		require.NoError(t, product.AdjustStock(-5))
		assert.Equal(t, int64(0), product.QuantityOnHand)
	})

	t.Run("delta below zero is rejected", func(t *testing.T) {
		product := newProduct(t, 3)
		err := product.AdjustStock(-4)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, int64(3), product.QuantityOnHand)
	})

	t.Run("zero delta is rejected", func(t *testing.T) {
		product := newProduct(t, 3)
		err := product.AdjustStock(0)
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	})

	t.Run("version increments on adjustment", func(t *testing.T) {
		product := newProduct(t, 0)
		before := product.Version
		require.NoError(t, product.AdjustStock(1))
		assert.Equal(t, before+1, product.Version)
	})
}

func TestProductUpdate(t *testing.T) {
	product, err := NewProduct("PROD-001", "Savon noir 500g",
		valueobject.NewMoneyMADFromFloat(25), valueobject.NewMoneyMADFromFloat(15))
	require.NoError(t, err)

	err = product.Update("Savon noir 1kg",
		valueobject.NewMoneyMADFromFloat(45), valueobject.NewMoneyMADFromFloat(30))
	require.NoError(t, err)
	assert.Equal(t, "Savon noir 1kg", product.Name)
	assert.Equal(t, "45", product.UnitPrice.String())

	err = product.Update("", valueobject.ZeroMAD(), valueobject.ZeroMAD())
	assert.Error(t, err)
}

func TestProductStockValue(t *testing.T) {
	product, err := NewProduct("PROD-001", "Savon noir 500g",
		valueobject.NewMoneyMADFromFloat(25), valueobject.NewMoneyMADFromFloat(15))
	require.NoError(t, err)
	require.NoError(t, product.AdjustStock(4))

	assert.Equal(t, "60.00", product.StockValue().StringFixed(2))
	assert.True(t, product.HasStock(4))
	assert.False(t, product.HasStock(5))
}

func TestNewStockEntry(t *testing.T) {
	productID := uuid.New()

	entry, err := NewStockEntry(productID, 12, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "BL-2024-03")
	require.NoError(t, err)
	assert.Equal(t, productID, entry.ProductID)
	assert.Equal(t, int64(12), entry.Quantity)

	_, err = NewStockEntry(productID, 0, time.Now(), "")
	assert.ErrorIs(t, err, shared.ErrInvalidAmount)

	_, err = NewStockEntry(uuid.Nil, 5, time.Now(), "")
	assert.Error(t, err)
}
