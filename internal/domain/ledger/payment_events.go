package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/proxima/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypePayment = "Payment"

// Event type constants
const (
	EventTypePaymentRecorded    = "PaymentRecorded"
	EventTypePaymentAllocated   = "PaymentAllocated"
	EventTypePaymentDeallocated = "PaymentDeallocated"
)

// PaymentRecordedEvent is published when a payment is recorded
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	Number    string          `json:"number"`
	ClientID  uuid.UUID       `json:"client_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(payment *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, payment.ID),
		PaymentID:       payment.ID,
		Number:          payment.Number,
		ClientID:        payment.ClientID,
		Amount:          payment.Amount,
	}
}

// PaymentAllocatedEvent is published when part of a payment is applied to an invoice
type PaymentAllocatedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewPaymentAllocatedEvent creates a new PaymentAllocatedEvent
func NewPaymentAllocatedEvent(payment *Payment, invoiceID uuid.UUID, amount decimal.Decimal) *PaymentAllocatedEvent {
	return &PaymentAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentAllocated, AggregateTypePayment, payment.ID),
		PaymentID:       payment.ID,
		InvoiceID:       invoiceID,
		Amount:          amount,
	}
}

// PaymentDeallocatedEvent is published when an allocation is removed
type PaymentDeallocatedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewPaymentDeallocatedEvent creates a new PaymentDeallocatedEvent
func NewPaymentDeallocatedEvent(payment *Payment, invoiceID uuid.UUID, amount decimal.Decimal) *PaymentDeallocatedEvent {
	return &PaymentDeallocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentDeallocated, AggregateTypePayment, payment.ID),
		PaymentID:       payment.ID,
		InvoiceID:       invoiceID,
		Amount:          amount,
	}
}
