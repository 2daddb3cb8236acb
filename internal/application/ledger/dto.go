package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/proxima/backend/internal/domain/ledger"
)

// RecordPaymentRequest is the request to record a payment.
// Number is optional; one is generated when the caller leaves it empty.
type RecordPaymentRequest struct {
	Number      string              `json:"number,omitempty"`
	ClientID    uuid.UUID           `json:"client_id"`
	Amount      decimal.Decimal     `json:"amount"`
	Bank        string              `json:"bank"`
	PaymentDate time.Time           `json:"payment_date"`
	DueDate     *time.Time          `json:"due_date,omitempty"`
	Allocations []AllocationRequest `json:"allocations,omitempty"`
}

// AllocationRequest applies part of a payment to an invoice
type AllocationRequest struct {
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// ReallocateRequest moves an allocation from one invoice to another
type ReallocateRequest struct {
	FromInvoiceID uuid.UUID       `json:"from_invoice_id"`
	ToInvoiceID   uuid.UUID       `json:"to_invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// AllocationResponse is one allocation on a payment response
type AllocationResponse struct {
	ID        uuid.UUID       `json:"id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// PaymentResponse is the response for payment operations
type PaymentResponse struct {
	ID          uuid.UUID            `json:"id"`
	Number      string               `json:"number"`
	ClientID    uuid.UUID            `json:"client_id"`
	Amount      decimal.Decimal      `json:"amount"`
	Bank        string               `json:"bank"`
	PaymentDate time.Time            `json:"payment_date"`
	DueDate     *time.Time           `json:"due_date,omitempty"`
	Allocations []AllocationResponse `json:"allocations"`
	Allocated   decimal.Decimal      `json:"allocated"`
	Unallocated decimal.Decimal      `json:"unallocated"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ToPaymentResponse maps a payment aggregate to its response
func ToPaymentResponse(payment *ledger.Payment) PaymentResponse {
	allocations := make([]AllocationResponse, 0, len(payment.Allocations))
	for _, a := range payment.Allocations {
		allocations = append(allocations, AllocationResponse{
			ID:        a.ID,
			InvoiceID: a.InvoiceID,
			Amount:    a.Amount,
		})
	}

	return PaymentResponse{
		ID:          payment.ID,
		Number:      payment.Number,
		ClientID:    payment.ClientID,
		Amount:      payment.Amount,
		Bank:        payment.Bank,
		PaymentDate: payment.PaymentDate,
		DueDate:     payment.DueDate,
		Allocations: allocations,
		Allocated:   payment.AllocatedAmount(),
		Unallocated: payment.UnallocatedAmount(),
		CreatedAt:   payment.CreatedAt,
		UpdatedAt:   payment.UpdatedAt,
	}
}

// ToPaymentResponses maps a slice of payments
func ToPaymentResponses(payments []*ledger.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		responses = append(responses, ToPaymentResponse(p))
	}
	return responses
}
