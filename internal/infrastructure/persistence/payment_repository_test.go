package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxima/backend/internal/domain/ledger"
	"github.com/proxima/backend/internal/domain/shared"
	"github.com/proxima/backend/internal/domain/shared/valueobject"
)

func newTestPayment(t *testing.T, number string, amount float64) *ledger.Payment {
	t.Helper()
	payment, err := ledger.NewPayment(number, uuid.New(),
		valueobject.NewMoneyMADFromFloat(amount), "Attijariwafa Bank", time.Now(), nil)
	require.NoError(t, err)
	return payment
}

func TestGormPaymentRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	t.Run("saves a payment with allocations and reads it back", func(t *testing.T) {
		payment := newTestPayment(t, "REG-2026-00001", 1500.00)
		invoiceID := uuid.New()
		require.NoError(t, payment.Allocate(invoiceID, valueobject.NewMoneyMADFromFloat(900.00)))

		require.NoError(t, repo.Save(ctx, payment))

		found, err := repo.FindByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, "REG-2026-00001", found.Number)
		require.Len(t, found.Allocations, 1)
		assert.Equal(t, invoiceID, found.Allocations[0].InvoiceID)
		assert.True(t, found.UnallocatedAmount().Equal(decimal.NewFromFloat(600.00)))
	})

	t.Run("finds by number", func(t *testing.T) {
		found, err := repo.FindByNumber(ctx, "REG-2026-00001")
		require.NoError(t, err)
		assert.Len(t, found.Allocations, 1)
	})

	t.Run("returns not found for unknown payment", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormPaymentRepository_SaveWithLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	t.Run("syncs removed allocations", func(t *testing.T) {
		payment := newTestPayment(t, "REG-2026-00010", 1000.00)
		keepInvoice := uuid.New()
		dropInvoice := uuid.New()
		require.NoError(t, payment.Allocate(keepInvoice, valueobject.NewMoneyMADFromFloat(400.00)))
		require.NoError(t, payment.Allocate(dropInvoice, valueobject.NewMoneyMADFromFloat(300.00)))
		require.NoError(t, repo.Save(ctx, payment))

		_, err := payment.Deallocate(dropInvoice)
		require.NoError(t, err)
		require.NoError(t, repo.SaveWithLock(ctx, payment))

		found, err := repo.FindByID(ctx, payment.ID)
		require.NoError(t, err)
		require.Len(t, found.Allocations, 1)
		assert.Equal(t, keepInvoice, found.Allocations[0].InvoiceID)
	})

	t.Run("merges repeated allocations to the same invoice", func(t *testing.T) {
		payment := newTestPayment(t, "REG-2026-00011", 1000.00)
		invoiceID := uuid.New()
		require.NoError(t, payment.Allocate(invoiceID, valueobject.NewMoneyMADFromFloat(200.00)))
		require.NoError(t, repo.Save(ctx, payment))

		require.NoError(t, payment.Allocate(invoiceID, valueobject.NewMoneyMADFromFloat(300.00)))
		require.NoError(t, repo.SaveWithLock(ctx, payment))

		found, err := repo.FindByID(ctx, payment.ID)
		require.NoError(t, err)
		require.Len(t, found.Allocations, 1)
		assert.True(t, found.Allocations[0].Amount.Equal(decimal.NewFromFloat(500.00)))
	})

	t.Run("rejects a stale aggregate", func(t *testing.T) {
		payment := newTestPayment(t, "REG-2026-00012", 500.00)
		require.NoError(t, repo.Save(ctx, payment))

		fresh, err := repo.FindByID(ctx, payment.ID)
		require.NoError(t, err)
		require.NoError(t, repo.SaveWithLock(ctx, fresh))
		require.NoError(t, repo.SaveWithLock(ctx, fresh))

		err = repo.SaveWithLock(ctx, payment)
		assert.ErrorIs(t, err, shared.ErrConflict)
	})
}

func TestGormPaymentRepository_SumAllocatedToInvoice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	invoiceID := uuid.New()

	t.Run("returns zero when nothing is allocated", func(t *testing.T) {
		sum, err := repo.SumAllocatedToInvoice(ctx, invoiceID)
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
	})

	t.Run("sums allocations across payments", func(t *testing.T) {
		first := newTestPayment(t, "REG-2026-00020", 1000.00)
		require.NoError(t, first.Allocate(invoiceID, valueobject.NewMoneyMADFromFloat(700.00)))
		require.NoError(t, repo.Save(ctx, first))

		second := newTestPayment(t, "REG-2026-00021", 500.00)
		require.NoError(t, second.Allocate(invoiceID, valueobject.NewMoneyMADFromFloat(250.00)))
		require.NoError(t, second.Allocate(uuid.New(), valueobject.NewMoneyMADFromFloat(100.00)))
		require.NoError(t, repo.Save(ctx, second))

		sum, err := repo.SumAllocatedToInvoice(ctx, invoiceID)
		require.NoError(t, err)
		assert.True(t, sum.Equal(decimal.NewFromFloat(950.00)))

		// Leaving out the first payment keeps only the second one's share
		rest, err := repo.SumAllocatedToInvoiceExcludingPayment(ctx, invoiceID, first.ID)
		require.NoError(t, err)
		assert.True(t, rest.Equal(decimal.NewFromFloat(250.00)))
	})
}

func TestGormPaymentRepository_DuplicateNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestPayment(t, "REG-2026-00050", 100.00)))

	err := repo.Save(ctx, newTestPayment(t, "REG-2026-00050", 200.00))
	assert.ErrorIs(t, err, shared.ErrDuplicateKey)
}

func TestGormPaymentRepository_GenerateNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	year := time.Now().Year()

	first, err := repo.GenerateNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("REG-%d-00001", year), first)

	require.NoError(t, repo.Save(ctx, newTestPayment(t, first, 100.00)))

	second, err := repo.GenerateNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("REG-%d-00002", year), second)
}

func TestGormPaymentRepository_FindByClientID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	clientID := uuid.New()
	for i := 1; i <= 2; i++ {
		payment, err := ledger.NewPayment(fmt.Sprintf("REG-2026-3000%d", i), clientID,
			valueobject.NewMoneyMADFromFloat(100.00), "CIH Bank",
			time.Now().Add(time.Duration(i)*time.Hour), nil)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, payment))
	}

	payments, err := repo.FindByClientID(ctx, clientID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	// Most recent payment first
	assert.Equal(t, "REG-2026-30002", payments[0].Number)
}

func TestGormPaymentRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	payment := newTestPayment(t, "REG-2026-00040", 800.00)
	require.NoError(t, payment.Allocate(uuid.New(), valueobject.NewMoneyMADFromFloat(200.00)))
	require.NoError(t, repo.Save(ctx, payment))

	require.NoError(t, repo.Delete(ctx, payment.ID))

	_, err := repo.FindByID(ctx, payment.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var allocCount int64
	require.NoError(t, db.Model(&ledger.Allocation{}).
		Where("payment_id = ?", payment.ID).Count(&allocCount).Error)
	assert.Equal(t, int64(0), allocCount)
}
