package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/proxima/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeInvoice    = "Invoice"
	AggregateTypeCreditNote = "CreditNote"
)

// Event type constants
const (
	EventTypeInvoiceCreated       = "InvoiceCreated"
	EventTypeInvoiceFinalized     = "InvoiceFinalized"
	EventTypeInvoiceStatusChanged = "InvoiceStatusChanged"
	EventTypeInvoiceDeleted       = "InvoiceDeleted"
	EventTypeReturnAccepted       = "ReturnAccepted"
)

// InvoiceCreatedEvent is published when a draft invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoice_id"`
	Number    string    `json:"number"`
	ClientID  uuid.UUID `json:"client_id"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(invoice *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, invoice.ID),
		InvoiceID:       invoice.ID,
		Number:          invoice.Number,
		ClientID:        invoice.ClientID,
	}
}

// InvoiceFinalizedEvent is published when an invoice is finalized
type InvoiceFinalizedEvent struct {
	shared.BaseDomainEvent
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Number      string          `json:"number"`
	ClientID    uuid.UUID       `json:"client_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	LineCount   int             `json:"line_count"`
}

// NewInvoiceFinalizedEvent creates a new InvoiceFinalizedEvent
func NewInvoiceFinalizedEvent(invoice *Invoice) *InvoiceFinalizedEvent {
	return &InvoiceFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceFinalized, AggregateTypeInvoice, invoice.ID),
		InvoiceID:       invoice.ID,
		Number:          invoice.Number,
		ClientID:        invoice.ClientID,
		TotalAmount:     invoice.TotalAmount,
		LineCount:       len(invoice.Lines),
	}
}

// InvoiceStatusChangedEvent is published when returns move an invoice
// between FINALIZED, PARTIALLY_RETURNED and FULLY_RETURNED
type InvoiceStatusChangedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID     `json:"invoice_id"`
	Number    string        `json:"number"`
	OldStatus InvoiceStatus `json:"old_status"`
	NewStatus InvoiceStatus `json:"new_status"`
}

// NewInvoiceStatusChangedEvent creates a new InvoiceStatusChangedEvent
func NewInvoiceStatusChangedEvent(invoice *Invoice, oldStatus InvoiceStatus) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceStatusChanged, AggregateTypeInvoice, invoice.ID),
		InvoiceID:       invoice.ID,
		Number:          invoice.Number,
		OldStatus:       oldStatus,
		NewStatus:       invoice.Status,
	}
}

// InvoiceDeletedEvent is published when a draft invoice is deleted
type InvoiceDeletedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoice_id"`
	Number    string    `json:"number"`
}

// NewInvoiceDeletedEvent creates a new InvoiceDeletedEvent
func NewInvoiceDeletedEvent(invoice *Invoice) *InvoiceDeletedEvent {
	return &InvoiceDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceDeleted, AggregateTypeInvoice, invoice.ID),
		InvoiceID:       invoice.ID,
		Number:          invoice.Number,
	}
}

// ReturnAcceptedEvent is published when a credit note is accepted
type ReturnAcceptedEvent struct {
	shared.BaseDomainEvent
	CreditNoteID uuid.UUID       `json:"credit_note_id"`
	Number       string          `json:"number"`
	InvoiceID    uuid.UUID       `json:"invoice_id"`
	ClientID     uuid.UUID       `json:"client_id"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// NewReturnAcceptedEvent creates a new ReturnAcceptedEvent
func NewReturnAcceptedEvent(note *CreditNote) *ReturnAcceptedEvent {
	return &ReturnAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnAccepted, AggregateTypeCreditNote, note.ID),
		CreditNoteID:    note.ID,
		Number:          note.Number,
		InvoiceID:       note.InvoiceID,
		ClientID:        note.ClientID,
		TotalAmount:     note.TotalAmount,
	}
}
