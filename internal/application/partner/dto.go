package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/proxima/backend/internal/domain/partner"
)

// CreateClientRequest is the request to create a client
type CreateClientRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// UpdateClientRequest is the request to update a client
type UpdateClientRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// ClientResponse is the response for client operations
type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatementInvoiceLine is one finalized invoice on a client statement
type StatementInvoiceLine struct {
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Number      string          `json:"number"`
	IssueDate   time.Time       `json:"issue_date"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Returned    decimal.Decimal `json:"returned"`
	NetPayable  decimal.Decimal `json:"net_payable"`
	Allocated   decimal.Decimal `json:"allocated"`
	Balance     decimal.Decimal `json:"balance"`
}

// StatementPaymentLine is one payment on a client statement
type StatementPaymentLine struct {
	PaymentID   uuid.UUID       `json:"payment_id"`
	Number      string          `json:"number"`
	PaymentDate time.Time       `json:"payment_date"`
	Bank        string          `json:"bank"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Allocated   decimal.Decimal `json:"allocated"`
	Unallocated decimal.Decimal `json:"unallocated"`
}

// ClientStatement summarizes a client's invoices, returns and payments.
/// Balance is what the client still owes: net invoiced minus everything paid.
type ClientStatement struct {
	Client        ClientResponse         `json:"client"`
	Invoices      []StatementInvoiceLine `json:"invoices"`
	Payments      []StatementPaymentLine `json:"payments"`
	TotalInvoiced decimal.Decimal        `json:"total_invoiced"`
	TotalReturned decimal.Decimal        `json:"total_returned"`
	TotalPaid     decimal.Decimal        `json:"total_paid"`
	Balance       decimal.Decimal        `json:"balance"`
	GeneratedAt   time.Time              `json:"generated_at"`
}

// ToClientResponse maps a client aggregate to its response
func ToClientResponse(client *partner.Client) ClientResponse {
	return ClientResponse{
		ID:        client.ID,
		Name:      client.Name,
		Phone:     client.Phone,
		Address:   client.Address,
		City:      client.City,
		CreatedAt: client.CreatedAt,
		UpdatedAt: client.UpdatedAt,
	}
}

// ToClientResponses maps a slice of clients
func ToClientResponses(clients []*partner.Client) []ClientResponse {
	responses := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		responses = append(responses, ToClientResponse(c))
	}
	return responses
}
