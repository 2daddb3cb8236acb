package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/proxima/backend/internal/domain/shared"
	"github.com/proxima/backend/internal/domain/shared/valueobject"
)

// Allocation applies part of a payment to an invoice.
// There is at most one allocation per payment and invoice pair; allocating
// again to the same invoice merges into the existing row.
type Allocation struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PaymentID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_allocation_payment_invoice,priority:1"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_allocation_payment_invoice,priority:2"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Allocation) TableName() string {
	return "payment_allocations"
}

// GetAmountMoney returns the allocated amount as Money
func (a *Allocation) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(a.Amount)
}

// Payment represents money received from a client.
// It is the aggregate root for allocations against invoices.
type Payment struct {
	shared.BaseAggregateRoot
	Number      string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	ClientID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Bank        string          `gorm:"type:varchar(100)"` // Bank or payment instrument, e.g. cheque issuer
	PaymentDate time.Time       `gorm:"not null"`
	DueDate     *time.Time      // For cheques and deferred instruments
	Allocations []Allocation    `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a new payment
func NewPayment(number string, clientID uuid.UUID, amount valueobject.Money, bank string, paymentDate time.Time, dueDate *time.Time) (*Payment, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Payment number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Payment number cannot exceed 50 characters")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount.WithMessage("Payment amount must be positive")
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	payment := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		ClientID:          clientID,
		Amount:            amount.Amount(),
		Bank:              bank,
		PaymentDate:       paymentDate,
		DueDate:           dueDate,
		Allocations:       make([]Allocation, 0),
	}

	payment.AddDomainEvent(NewPaymentRecordedEvent(payment))

	return payment, nil
}

// AllocatedAmount returns the sum of all allocations
func (p *Payment) AllocatedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// UnallocatedAmount returns the amount not yet applied to any invoice
func (p *Payment) UnallocatedAmount() decimal.Decimal {
	return p.Amount.Sub(p.AllocatedAmount())
}

// Allocate applies part of this payment to an invoice. An allocation to
// an invoice that already has one merges the amounts into a single row.
// The payment-side guard lives here; the invoice-side guard is enforced
// by the application service which can see allocations across payments.
func (p *Payment) Allocate(invoiceID uuid.UUID, amount valueobject.Money) error {
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount.WithMessage("Allocation amount must be positive")
	}
	if amount.Amount().GreaterThan(p.UnallocatedAmount()) {
		return shared.ErrOverAllocation.WithMessagef(
			"Allocation %s exceeds unallocated amount %s on payment %s",
			amount.Amount().StringFixed(2), p.UnallocatedAmount().StringFixed(2), p.Number)
	}

	now := time.Now()
	for idx := range p.Allocations {
		if p.Allocations[idx].InvoiceID == invoiceID {
			p.Allocations[idx].Amount = p.Allocations[idx].Amount.Add(amount.Amount())
			p.Allocations[idx].UpdatedAt = now
			p.UpdatedAt = now
			p.IncrementVersion()
			p.AddDomainEvent(NewPaymentAllocatedEvent(p, invoiceID, amount.Amount()))
			return nil
		}
	}

	p.Allocations = append(p.Allocations, Allocation{
		ID:        uuid.New(),
		PaymentID: p.ID,
		InvoiceID: invoiceID,
		Amount:    amount.Amount(),
		CreatedAt: now,
		UpdatedAt: now,
	})
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentAllocatedEvent(p, invoiceID, amount.Amount()))

	return nil
}

// Deallocate removes the allocation to the given invoice and returns the
// freed amount
func (p *Payment) Deallocate(invoiceID uuid.UUID) (decimal.Decimal, error) {
	for idx, a := range p.Allocations {
		if a.InvoiceID == invoiceID {
			freed := a.Amount
			p.Allocations = append(p.Allocations[:idx], p.Allocations[idx+1:]...)
			p.UpdatedAt = time.Now()
			p.IncrementVersion()

			p.AddDomainEvent(NewPaymentDeallocatedEvent(p, invoiceID, freed))

			return freed, nil
		}
	}
	return decimal.Zero, shared.ErrNotFound.WithMessage("No allocation for invoice on this payment")
}

// AllocationForInvoice returns the allocation to the given invoice, if any
func (p *Payment) AllocationForInvoice(invoiceID uuid.UUID) (*Allocation, bool) {
	for idx := range p.Allocations {
		if p.Allocations[idx].InvoiceID == invoiceID {
			return &p.Allocations[idx], true
		}
	}
	return nil, false
}

// IsFullyAllocated returns true if no unallocated amount remains
func (p *Payment) IsFullyAllocated() bool {
	return p.UnallocatedAmount().IsZero()
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(p.Amount)
}

// GetUnallocatedMoney returns the unallocated amount as Money
func (p *Payment) GetUnallocatedMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(p.UnallocatedAmount())
}
