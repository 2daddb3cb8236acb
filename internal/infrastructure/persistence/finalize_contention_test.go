package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/proxima/backend/internal/application/billing"
	"github.com/proxima/backend/internal/domain/billing"
	"github.com/proxima/backend/internal/domain/shared"
	"github.com/proxima/backend/internal/domain/shared/valueobject"
)

// Two drafts competing for the last unit in stock: only the first one to
// finalize gets it, and the quantity on hand never goes negative.
func TestInvoiceFinalize_StockContention(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	productRepo := NewGormProductRepository(db)
	invoiceRepo := NewGormInvoiceRepository(db)
	clientRepo := NewGormClientRepository(db)
	scope := NewGormTransactionScope(db)
	service := appbilling.NewInvoiceService(scope, clientRepo)

	product := newTestProduct(t, "LAST-0001")
	require.NoError(t, product.AdjustStock(1))
	product.ClearDomainEvents()
	require.NoError(t, productRepo.Save(ctx, product))

	clientID := uuid.New()
	newDraft := func(number string) *billing.Invoice {
		invoice, err := billing.NewInvoice(number, clientID, "Ets Bennani", time.Now())
		require.NoError(t, err)
		_, err = invoice.AddLine(product.ID, product.Ref, product.Name, 1,
			valueobject.NewMoneyMADFromFloat(120.50))
		require.NoError(t, err)
		require.NoError(t, invoiceRepo.Save(ctx, invoice))
		return invoice
	}
	first := newDraft("FAC-2026-00101")
	second := newDraft("FAC-2026-00102")

	resp, err := service.Finalize(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "FINALIZED", resp.Status)

	_, err = service.Finalize(ctx, second.ID)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	remaining, err := productRepo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining.QuantityOnHand)

	loser, err := invoiceRepo.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusDraft, loser.Status)
}
