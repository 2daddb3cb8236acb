package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/proxima/backend/internal/domain/billing"
)

// CreateInvoiceRequest is the request to create a draft invoice.
// Number is optional; one is generated when the caller leaves it empty.
type CreateInvoiceRequest struct {
	Number      string               `json:"number,omitempty"`
	ClientID    uuid.UUID            `json:"client_id"`
	IssueDate   time.Time            `json:"issue_date"`
	ParcelCount int                  `json:"parcel_count"`
	Lines       []InvoiceLineRequest `json:"lines"`
}

// InvoiceLineRequest is one line on a create or add-line request.
// UnitPrice overrides the catalog price when set; otherwise the product's
// current selling price is snapshotted.
type InvoiceLineRequest struct {
	ProductID uuid.UUID        `json:"product_id"`
	Quantity  int64            `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// UpdateInvoiceLineRequest updates a draft invoice line
type UpdateInvoiceLineRequest struct {
	Quantity  *int64           `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// InvoiceLineResponse is one line on an invoice response
type InvoiceLineResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	ProductRef       string          `json:"product_ref"`
	ProductName      string          `json:"product_name"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Quantity         int64           `json:"quantity"`
	ReturnedQuantity int64           `json:"returned_quantity"`
	Amount           decimal.Decimal `json:"amount"`
}

// InvoiceResponse is the response for invoice operations
type InvoiceResponse struct {
	ID          uuid.UUID             `json:"id"`
	Number      string                `json:"number"`
	ClientID    uuid.UUID             `json:"client_id"`
	ClientName  string                `json:"client_name"`
	IssueDate   time.Time             `json:"issue_date"`
	ParcelCount int                   `json:"parcel_count"`
	Status      string                `json:"status"`
	Lines       []InvoiceLineResponse `json:"lines"`
	TotalAmount decimal.Decimal       `json:"total_amount"`
	Returned    decimal.Decimal       `json:"returned"`
	NetPayable  decimal.Decimal       `json:"net_payable"`
	FinalizedAt *time.Time            `json:"finalized_at,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// InvoiceBalanceResponse extends InvoiceResponse with the allocation state.
// Warning carries a balance integrity note when allocations exceed the
// net payable after returns; it never fails the request.
type InvoiceBalanceResponse struct {
	InvoiceResponse
	Allocated decimal.Decimal `json:"allocated"`
	Balance   decimal.Decimal `json:"balance"`
	Warning   string          `json:"warning,omitempty"`
}

// ReturnLineRequest is one returned line on an accept-return request
type ReturnLineRequest struct {
	LineID   uuid.UUID `json:"line_id"`
	Quantity int64     `json:"quantity"`
}

// AcceptReturnRequest is the request to accept a customer return
type AcceptReturnRequest struct {
	Lines []ReturnLineRequest `json:"lines"`
}

// CreditNoteLineResponse is one line on a credit note response
type CreditNoteLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductRef  string          `json:"product_ref"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int64           `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

// CreditNoteResponse is the response for an accepted return.
// Warning is set when the return drove the invoice balance below what has
// already been allocated to it.
type CreditNoteResponse struct {
	ID            uuid.UUID                `json:"id"`
	Number        string                   `json:"number"`
	InvoiceID     uuid.UUID                `json:"invoice_id"`
	InvoiceNumber string                   `json:"invoice_number"`
	ClientID      uuid.UUID                `json:"client_id"`
	Lines         []CreditNoteLineResponse `json:"lines"`
	TotalAmount   decimal.Decimal          `json:"total_amount"`
	AcceptedAt    time.Time                `json:"accepted_at"`
	InvoiceStatus string                   `json:"invoice_status"`
	Warning       string                   `json:"warning,omitempty"`
}

// ToInvoiceResponse maps an invoice aggregate to its response
func ToInvoiceResponse(invoice *billing.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, 0, len(invoice.Lines))
	for _, line := range invoice.Lines {
		lines = append(lines, InvoiceLineResponse{
			ID:               line.ID,
			ProductID:        line.ProductID,
			ProductRef:       line.ProductRef,
			ProductName:      line.ProductName,
			UnitPrice:        line.UnitPrice,
			Quantity:         line.Quantity,
			ReturnedQuantity: line.ReturnedQuantity,
			Amount:           line.Amount,
		})
	}

	return InvoiceResponse{
		ID:          invoice.ID,
		Number:      invoice.Number,
		ClientID:    invoice.ClientID,
		ClientName:  invoice.ClientName,
		IssueDate:   invoice.IssueDate,
		ParcelCount: invoice.ParcelCount,
		Status:      invoice.Status.String(),
		Lines:       lines,
		TotalAmount: invoice.TotalAmount,
		Returned:    invoice.ReturnedAmount(),
		NetPayable:  invoice.NetPayable(),
		FinalizedAt: invoice.FinalizedAt,
		CreatedAt:   invoice.CreatedAt,
		UpdatedAt:   invoice.UpdatedAt,
	}
}

// ToInvoiceResponses maps a slice of invoices
func ToInvoiceResponses(invoices []*billing.Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		responses = append(responses, ToInvoiceResponse(inv))
	}
	return responses
}

// ToCreditNoteResponse maps a credit note to its response
func ToCreditNoteResponse(note *billing.CreditNote, invoiceStatus billing.InvoiceStatus, warning string) CreditNoteResponse {
	lines := make([]CreditNoteLineResponse, 0, len(note.Lines))
	for _, line := range note.Lines {
		lines = append(lines, CreditNoteLineResponse{
			ID:          line.ID,
			ProductID:   line.ProductID,
			ProductRef:  line.ProductRef,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Amount:      line.Amount,
		})
	}

	return CreditNoteResponse{
		ID:            note.ID,
		Number:        note.Number,
		InvoiceID:     note.InvoiceID,
		InvoiceNumber: note.InvoiceNumber,
		ClientID:      note.ClientID,
		Lines:         lines,
		TotalAmount:   note.TotalAmount,
		AcceptedAt:    note.AcceptedAt,
		InvoiceStatus: invoiceStatus.String(),
		Warning:       warning,
	}
}
