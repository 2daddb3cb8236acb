package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxima/backend/internal/domain/shared"
	"github.com/proxima/backend/internal/domain/shared/valueobject"
)

func newDraftInvoice(t *testing.T) *Invoice {
	t.Helper()
	invoice, err := NewInvoice("FAC-2024-0001", uuid.New(), "Droguerie Atlas", time.Now())
	require.NoError(t, err)
	return invoice
}

func addLine(t *testing.T, invoice *Invoice, quantity int64, price float64) *InvoiceLine {
	t.Helper()
	line, err := invoice.AddLine(uuid.New(), "PROD-001", "Savon noir 500g",
		quantity, valueobject.NewMoneyMADFromFloat(price))
	require.NoError(t, err)
	return line
}

func TestNewInvoice(t *testing.T) {
	tests := []struct {
		name       string
		number     string
		clientID   uuid.UUID
		clientName string
		wantErr    bool
	}{
		{
			name:       "valid invoice",
			number:     "FAC-2024-0001",
			clientID:   uuid.New(),
			clientName: "Droguerie Atlas",
			wantErr:    false,
		},
		{
			name:       "empty number",
			number:     "",
			clientID:   uuid.New(),
			clientName: "Droguerie Atlas",
			wantErr:    true,
		},
		{
			name:       "nil client",
			number:     "FAC-2024-0001",
			clientID:   uuid.Nil,
			clientName: "Droguerie Atlas",
			wantErr:    true,
		},
		{
			name:       "empty client name",
			number:     "FAC-2024-0001",
			clientID:   uuid.New(),
			clientName: "",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoice, err := NewInvoice(tt.number, tt.clientID, tt.clientName, time.Now())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, InvoiceStatusDraft, invoice.Status)
			assert.True(t, invoice.TotalAmount.IsZero())
		})
	}
}

func TestInvoiceLineManagement(t *testing.T) {
	t.Run("add line recalculates total", func(t *testing.T) {
		invoice := newDraftInvoice(t)
		addLine(t, invoice, 3, 25)
		assert.Equal(t, "75.00", invoice.TotalAmount.StringFixed(2))

		addLine(t, invoice, 2, 10.50)
		assert.Equal(t, "96.00", invoice.TotalAmount.StringFixed(2))
		assert.Equal(t, 2, invoice.LineCount())
	})

	t.Run("duplicate product is rejected", func(t *testing.T) {
		invoice := newDraftInvoice(t)
		productID := uuid.New()
		_, err := invoice.AddLine(productID, "PROD-001", "Savon noir 500g", 1, valueobject.NewMoneyMADFromFloat(25))
		require.NoError(t, err)
		_, err = invoice.AddLine(productID, "PROD-001", "Savon noir 500g", 2, valueobject.NewMoneyMADFromFloat(25))
		assert.Error(t, err)
	})

	t.Run("update quantity recalculates amount", func(t *testing.T) {
		invoice := newDraftInvoice(t)
		line := addLine(t, invoice, 3, 25)
		require.NoError(t, invoice.UpdateLineQuantity(line.ID, 5))
		assert.Equal(t, "125.00", invoice.TotalAmount.StringFixed(2))

		err := invoice.UpdateLineQuantity(line.ID, 0)
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	})

	t.Run("remove line recalculates total", func(t *testing.T) {
		invoice := newDraftInvoice(t)
		line := addLine(t, invoice, 3, 25)
		addLine(t, invoice, 1, 10)
		require.NoError(t, invoice.RemoveLine(line.ID))
		assert.Equal(t, "10.00", invoice.TotalAmount.StringFixed(2))
	})

	t.Run("unknown line returns not found", func(t *testing.T) {
		invoice := newDraftInvoice(t)
		err := invoice.RemoveLine(uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestInvoiceFinalize(t *testing.T) {
	t.Run("finalize with lines succeeds", func(t *testing.T) {
		invoice := newDraftInvoice(t)
		addLine(t, invoice, 3, 25)
		require.NoError(t, invoice.Finalize())
		assert.Equal(t, InvoiceStatusFinalized, invoice.Status)
		assert.NotNil(t, invoice.FinalizedAt)
	})

	t.Run("empty invoice cannot be finalized", func(t *testing.T) {
		invoice := newDraftInvoice(t)
		err := invoice.Finalize()
		assert.ErrorIs(t, err, shared.ErrEmptyInvoice)
	})

	t.Run("finalize twice is rejected", func(t *testing.T) {
		invoice := newDraftInvoice(t)
		addLine(t, invoice, 3, 25)
		require.NoError(t, invoice.Finalize())
		err := invoice.Finalize()
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("finalized invoice rejects line edits", func(t *testing.T) {
		invoice := newDraftInvoice(t)
		line := addLine(t, invoice, 3, 25)
		require.NoError(t, invoice.Finalize())

		_, err := invoice.AddLine(uuid.New(), "PROD-002", "Eau de javel 1L", 1, valueobject.NewMoneyMADFromFloat(8))
		assert.ErrorIs(t, err, shared.ErrInvalidState)

		err = invoice.UpdateLineQuantity(line.ID, 10)
		assert.ErrorIs(t, err, shared.ErrInvalidState)

		err = invoice.RemoveLine(line.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestInvoiceApplyReturn(t *testing.T) {
	t.Run("partial return moves to partially returned", func(t *testing.T) {
		invoice := newDraftInvoice(t)
		line := addLine(t, invoice, 5, 25)
		require.NoError(t, invoice.Finalize())

		require.NoError(t, invoice.ApplyReturn(line.ID, 2))
		assert.Equal(t, InvoiceStatusPartiallyReturned, invoice.Status)
		assert.Equal(t, "50.00", invoice.ReturnedAmount().StringFixed(2))
		assert.Equal(t, "75.00", invoice.NetPayable().StringFixed(2))
	})

	t.Run("full return moves to fully returned", func(t *testing.T) {
		invoice := newDraftInvoice(t)
		lineA := addLine(t, invoice, 5, 25)
		lineB := addLine(t, invoice, 2, 10)
		require.NoError(t, invoice.Finalize())

		require.NoError(t, invoice.ApplyReturn(lineA.ID, 5))
		assert.Equal(t, InvoiceStatusPartiallyReturned, invoice.Status)

		require.NoError(t, invoice.ApplyReturn(lineB.ID, 2))
		assert.Equal(t, InvoiceStatusFullyReturned, invoice.Status)
		assert.True(t, invoice.NetPayable().IsZero())
	})

	t.Run("cumulative over-return is rejected", func(t *testing.T) {
		invoice := newDraftInvoice(t)
		line := addLine(t, invoice, 5, 25)
		require.NoError(t, invoice.Finalize())

		require.NoError(t, invoice.ApplyReturn(line.ID, 3))
		err := invoice.ApplyReturn(line.ID, 3)
		assert.ErrorIs(t, err, shared.ErrOverReturn)

		got, findErr := invoice.GetLineByID(line.ID)
		require.NoError(t, findErr)
		assert.Equal(t, int64(3), got.ReturnedQuantity)
	})

	t.Run("return against draft is rejected", func(t *testing.T) {
		invoice := newDraftInvoice(t)
		line := addLine(t, invoice, 5, 25)
		err := invoice.ApplyReturn(line.ID, 1)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("return against fully returned is rejected", func(t *testing.T) {
		invoice := newDraftInvoice(t)
		line := addLine(t, invoice, 2, 25)
		require.NoError(t, invoice.Finalize())
		require.NoError(t, invoice.ApplyReturn(line.ID, 2))

		err := invoice.ApplyReturn(line.ID, 1)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("zero quantity is rejected", func(t *testing.T) {
		invoice := newDraftInvoice(t)
		line := addLine(t, invoice, 5, 25)
		require.NoError(t, invoice.Finalize())
		err := invoice.ApplyReturn(line.ID, 0)
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	})

	t.Run("total stays frozen across returns", func(t *testing.T) {
		invoice := newDraftInvoice(t)
		line := addLine(t, invoice, 5, 25)
		require.NoError(t, invoice.Finalize())
		frozen := invoice.TotalAmount

		require.NoError(t, invoice.ApplyReturn(line.ID, 2))
		assert.True(t, frozen.Equal(invoice.TotalAmount))
	})
}

func TestInvoiceStatusTransitions(t *testing.T) {
	tests := []struct {
		from   InvoiceStatus
		to     InvoiceStatus
		expect bool
	}{
		{InvoiceStatusDraft, InvoiceStatusFinalized, true},
		{InvoiceStatusDraft, InvoiceStatusPartiallyReturned, false},
		{InvoiceStatusFinalized, InvoiceStatusPartiallyReturned, true},
		{InvoiceStatusFinalized, InvoiceStatusFullyReturned, true},
		{InvoiceStatusFinalized, InvoiceStatusDraft, false},
		{InvoiceStatusPartiallyReturned, InvoiceStatusFullyReturned, true},
		{InvoiceStatusFullyReturned, InvoiceStatusFinalized, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expect, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}
