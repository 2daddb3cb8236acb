package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/proxima/backend/internal/domain/shared"
	"github.com/proxima/backend/internal/domain/shared/valueobject"
)

// CreditNoteLine represents a returned line on a credit note.
// Prices are carried over from the invoice line the return was made
// against, so the credit matches what was actually charged.
type CreditNoteLine struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CreditNoteID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null"`
	ProductRef   string          `gorm:"type:varchar(50);not null"`
	ProductName  string          `gorm:"type:varchar(200);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity     int64           `gorm:"not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt    time.Time
}

// TableName returns the table name for GORM
func (CreditNoteLine) TableName() string {
	return "credit_note_lines"
}

// CreditNote records an accepted customer return against an invoice.
// A credit note is created already accepted; there is no draft stage
// because the stock credit and invoice adjustment happen atomically
// when the return is processed.
type CreditNote struct {
	shared.BaseAggregateRoot
	Number        string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	InvoiceID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	InvoiceNumber string           `gorm:"type:varchar(50);not null"`
	ClientID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	Lines         []CreditNoteLine `gorm:"foreignKey:CreditNoteID;constraint:OnDelete:CASCADE"`
	TotalAmount   decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	AcceptedAt    time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CreditNote) TableName() string {
	return "credit_notes"
}

// NewCreditNote creates an accepted credit note for the given invoice
func NewCreditNote(number string, invoiceID uuid.UUID, invoiceNumber string, clientID uuid.UUID) (*CreditNote, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Credit note number cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}

	note := &CreditNote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		InvoiceID:         invoiceID,
		InvoiceNumber:     invoiceNumber,
		ClientID:          clientID,
		Lines:             make([]CreditNoteLine, 0),
		TotalAmount:       decimal.Zero,
		AcceptedAt:        time.Now(),
	}

	return note, nil
}

// AddLine adds a returned line to the credit note
func (n *CreditNote) AddLine(productID uuid.UUID, productRef, productName string, quantity int64, unitPrice valueobject.Money) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.ErrInvalidAmount.WithMessage("Return quantity must be positive")
	}

	price := unitPrice.Amount()
	n.Lines = append(n.Lines, CreditNoteLine{
		ID:           uuid.New(),
		CreditNoteID: n.ID,
		ProductID:    productID,
		ProductRef:   productRef,
		ProductName:  productName,
		UnitPrice:    price,
		Quantity:     quantity,
		Amount:       price.Mul(decimal.NewFromInt(quantity)),
		CreatedAt:    time.Now(),
	})
	n.recalculateTotal()
	n.UpdatedAt = time.Now()

	return nil
}

func (n *CreditNote) recalculateTotal() {
	total := decimal.Zero
	for _, line := range n.Lines {
		total = total.Add(line.Amount)
	}
	n.TotalAmount = total
}

// GetTotalAmountMoney returns the credit note total as Money
func (n *CreditNote) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(n.TotalAmount)
}

// TotalQuantity returns the sum of returned quantities across lines
func (n *CreditNote) TotalQuantity() int64 {
	var total int64
	for _, line := range n.Lines {
		total += line.Quantity
	}
	return total
}
