package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxima/backend/internal/domain/shared"
	"github.com/proxima/backend/internal/domain/shared/valueobject"
)

func newPayment(t *testing.T, amount float64) *Payment {
	t.Helper()
	payment, err := NewPayment("REG-2024-0001", uuid.New(),
		valueobject.NewMoneyMADFromFloat(amount), "BMCE", time.Now(), nil)
	require.NoError(t, err)
	return payment
}

func TestNewPayment(t *testing.T) {
	tests := []struct {
		name     string
		number   string
		clientID uuid.UUID
		amount   float64
		wantErr  bool
	}{
		{
			name:     "valid payment",
			number:   "REG-2024-0001",
			clientID: uuid.New(),
			amount:   500,
			wantErr:  false,
		},
		{
			name:     "empty number",
			number:   "",
			clientID: uuid.New(),
			amount:   500,
			wantErr:  true,
		},
		{
			name:     "zero amount",
			number:   "REG-2024-0001",
			clientID: uuid.New(),
			amount:   0,
			wantErr:  true,
		},
		{
			name:     "negative amount",
			number:   "REG-2024-0001",
			clientID: uuid.New(),
			amount:   -10,
			wantErr:  true,
		},
		{
			name:     "nil client",
			number:   "REG-2024-0001",
			clientID: uuid.Nil,
			amount:   500,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payment, err := NewPayment(tt.number, tt.clientID,
				valueobject.NewMoneyMADFromFloat(tt.amount), "BMCE", time.Now(), nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, payment.UnallocatedAmount().Equal(payment.Amount))
			assert.Empty(t, payment.Allocations)
		})
	}
}

func TestPaymentAllocate(t *testing.T) {
	t.Run("allocation reduces unallocated amount", func(t *testing.T) {
		payment := newPayment(t, 500)
		invoiceID := uuid.New()

		require.NoError(t, payment.Allocate(invoiceID, valueobject.NewMoneyMADFromFloat(200)))
		assert.Equal(t, "200.00", payment.AllocatedAmount().StringFixed(2))
		assert.Equal(t, "300.00", payment.UnallocatedAmount().StringFixed(2))
	})

	t.Run("allocations to same invoice merge", func(t *testing.T) {
		payment := newPayment(t, 500)
		invoiceID := uuid.New()

		require.NoError(t, payment.Allocate(invoiceID, valueobject.NewMoneyMADFromFloat(200)))
		require.NoError(t, payment.Allocate(invoiceID, valueobject.NewMoneyMADFromFloat(100)))

		require.Len(t, payment.Allocations, 1)
		assert.Equal(t, "300.00", payment.Allocations[0].Amount.StringFixed(2))
	})

	t.Run("allocations to different invoices stay separate", func(t *testing.T) {
		payment := newPayment(t, 500)

		require.NoError(t, payment.Allocate(uuid.New(), valueobject.NewMoneyMADFromFloat(200)))
		require.NoError(t, payment.Allocate(uuid.New(), valueobject.NewMoneyMADFromFloat(100)))

		assert.Len(t, payment.Allocations, 2)
	})

	t.Run("over-allocation is rejected", func(t *testing.T) {
		payment := newPayment(t, 500)
		invoiceID := uuid.New()

		require.NoError(t, payment.Allocate(invoiceID, valueobject.NewMoneyMADFromFloat(400)))
		err := payment.Allocate(uuid.New(), valueobject.NewMoneyMADFromFloat(150))
		assert.ErrorIs(t, err, shared.ErrOverAllocation)
		assert.Equal(t, "400.00", payment.AllocatedAmount().StringFixed(2))
	})

	t.Run("merge cannot exceed payment amount", func(t *testing.T) {
		payment := newPayment(t, 500)
		invoiceID := uuid.New()

		require.NoError(t, payment.Allocate(invoiceID, valueobject.NewMoneyMADFromFloat(400)))
		err := payment.Allocate(invoiceID, valueobject.NewMoneyMADFromFloat(200))
		assert.ErrorIs(t, err, shared.ErrOverAllocation)
	})

	t.Run("exact full allocation is allowed", func(t *testing.T) {
		payment := newPayment(t, 500)
		require.NoError(t, payment.Allocate(uuid.New(), valueobject.NewMoneyMADFromFloat(500)))
		assert.True(t, payment.IsFullyAllocated())
	})

	t.Run("zero amount is rejected", func(t *testing.T) {
		payment := newPayment(t, 500)
		err := payment.Allocate(uuid.New(), valueobject.ZeroMAD())
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	})
}

func TestPaymentDeallocate(t *testing.T) {
	t.Run("deallocate frees the allocated amount", func(t *testing.T) {
		payment := newPayment(t, 500)
		invoiceID := uuid.New()
		require.NoError(t, payment.Allocate(invoiceID, valueobject.NewMoneyMADFromFloat(200)))

		freed, err := payment.Deallocate(invoiceID)
		require.NoError(t, err)
		assert.Equal(t, "200.00", freed.StringFixed(2))
		assert.True(t, payment.UnallocatedAmount().Equal(payment.Amount))
		assert.Empty(t, payment.Allocations)
	})

	t.Run("deallocate unknown invoice fails", func(t *testing.T) {
		payment := newPayment(t, 500)
		_, err := payment.Deallocate(uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
