package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/proxima/backend/internal/domain/shared"
	"github.com/proxima/backend/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft             InvoiceStatus = "DRAFT"
	InvoiceStatusFinalized         InvoiceStatus = "FINALIZED"
	InvoiceStatusPartiallyReturned InvoiceStatus = "PARTIALLY_RETURNED"
	InvoiceStatusFullyReturned     InvoiceStatus = "FULLY_RETURNED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusFinalized, InvoiceStatusPartiallyReturned, InvoiceStatusFullyReturned:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusFinalized
	case InvoiceStatusFinalized:
		return target == InvoiceStatusPartiallyReturned || target == InvoiceStatusFullyReturned
	case InvoiceStatusPartiallyReturned:
		return target == InvoiceStatusFullyReturned
	case InvoiceStatusFullyReturned:
		return false // Terminal state
	}
	return false
}

// InvoiceLine represents a line in an invoice.
// Product name, ref and price are snapshotted at the time the line is added
// so later catalog edits never change what was sold.
type InvoiceLine struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	ProductRef       string          `gorm:"type:varchar(50);not null"`
	ProductName      string          `gorm:"type:varchar(200);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity         int64           `gorm:"not null"`
	ReturnedQuantity int64           `gorm:"not null;default:0"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Quantity * UnitPrice
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName returns the table name for GORM
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// NewInvoiceLine creates a new invoice line
func NewInvoiceLine(invoiceID, productID uuid.UUID, productRef, productName string, quantity int64, unitPrice valueobject.Money) (*InvoiceLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.ErrInvalidAmount.WithMessage("Line quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	price := unitPrice.Amount()

	return &InvoiceLine{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		ProductID:   productID,
		ProductRef:  productRef,
		ProductName: productName,
		UnitPrice:   price,
		Quantity:    quantity,
		Amount:      price.Mul(decimal.NewFromInt(quantity)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// RemainingQuantity returns the quantity not yet returned
func (l *InvoiceLine) RemainingQuantity() int64 {
	return l.Quantity - l.ReturnedQuantity
}

// ReturnedAmount returns the value of the returned quantity at the sold price
func (l *InvoiceLine) ReturnedAmount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.ReturnedQuantity))
}

// Invoice represents a sales invoice aggregate root.
// Draft invoices are freely editable; finalizing debits stock and freezes
// the lines and totals for good.
type Invoice struct {
	shared.BaseAggregateRoot
	Number      string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	ClientID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientName  string          `gorm:"type:varchar(200);not null"`
	IssueDate   time.Time       `gorm:"not null"`
	ParcelCount int             `gorm:"not null;default:0"`
	Lines       []InvoiceLine   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status      InvoiceStatus   `gorm:"type:varchar(30);not null;default:'DRAFT'"`
	FinalizedAt *time.Time
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new draft invoice
func NewInvoice(number string, clientID uuid.UUID, clientName string, issueDate time.Time) (*Invoice, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if clientName == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	invoice := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		ClientID:          clientID,
		ClientName:        clientName,
		IssueDate:         issueDate,
		Lines:             make([]InvoiceLine, 0),
		TotalAmount:       decimal.Zero,
		Status:            InvoiceStatusDraft,
	}

	invoice.AddDomainEvent(NewInvoiceCreatedEvent(invoice))

	return invoice, nil
}

// AddLine adds a line to the invoice
// Only allowed in DRAFT status; one line per product
func (inv *Invoice) AddLine(productID uuid.UUID, productRef, productName string, quantity int64, unitPrice valueobject.Money) (*InvoiceLine, error) {
	if inv.Status != InvoiceStatusDraft {
		return nil, shared.ErrInvalidState.WithMessage("Cannot add lines to a non-draft invoice")
	}

	for _, line := range inv.Lines {
		if line.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already on invoice, update the line instead")
		}
	}

	line, err := NewInvoiceLine(inv.ID, productID, productRef, productName, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	inv.Lines = append(inv.Lines, *line)
	inv.recalculateTotals()
	inv.UpdatedAt = time.Now()

	return line, nil
}

// UpdateLineQuantity updates the quantity of an existing line
// Only allowed in DRAFT status
func (inv *Invoice) UpdateLineQuantity(lineID uuid.UUID, quantity int64) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.ErrInvalidState.WithMessage("Cannot update lines of a non-draft invoice")
	}
	if quantity <= 0 {
		return shared.ErrInvalidAmount.WithMessage("Line quantity must be positive")
	}

	for idx := range inv.Lines {
		if inv.Lines[idx].ID == lineID {
			inv.Lines[idx].Quantity = quantity
			inv.Lines[idx].Amount = inv.Lines[idx].UnitPrice.Mul(decimal.NewFromInt(quantity))
			inv.Lines[idx].UpdatedAt = time.Now()
			inv.recalculateTotals()
			inv.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.ErrNotFound.WithMessage("Invoice line not found")
}

// UpdateLinePrice updates the unit price of an existing line
// Only allowed in DRAFT status
func (inv *Invoice) UpdateLinePrice(lineID uuid.UUID, unitPrice valueobject.Money) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.ErrInvalidState.WithMessage("Cannot update lines of a non-draft invoice")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	for idx := range inv.Lines {
		if inv.Lines[idx].ID == lineID {
			inv.Lines[idx].UnitPrice = unitPrice.Amount()
			inv.Lines[idx].Amount = unitPrice.Amount().Mul(decimal.NewFromInt(inv.Lines[idx].Quantity))
			inv.Lines[idx].UpdatedAt = time.Now()
			inv.recalculateTotals()
			inv.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.ErrNotFound.WithMessage("Invoice line not found")
}

// RemoveLine removes a line from the invoice
// Only allowed in DRAFT status
func (inv *Invoice) RemoveLine(lineID uuid.UUID) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.ErrInvalidState.WithMessage("Cannot remove lines from a non-draft invoice")
	}

	for idx, line := range inv.Lines {
		if line.ID == lineID {
			inv.Lines = append(inv.Lines[:idx], inv.Lines[idx+1:]...)
			inv.recalculateTotals()
			inv.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.ErrNotFound.WithMessage("Invoice line not found")
}

// SetParcelCount sets the number of parcels for delivery
func (inv *Invoice) SetParcelCount(count int) error {
	if count < 0 {
		return shared.ErrInvalidAmount.WithMessage("Parcel count cannot be negative")
	}
	inv.ParcelCount = count
	inv.UpdatedAt = time.Now()
	return nil
}

// Finalize transitions the invoice from DRAFT to FINALIZED.
// Requires at least one line. Stock debiting happens in the application
// service within the same transaction.
func (inv *Invoice) Finalize() error {
	if !inv.Status.CanTransitionTo(InvoiceStatusFinalized) {
		return shared.ErrInvalidState.WithMessagef("Cannot finalize invoice in %s status", inv.Status)
	}
	if len(inv.Lines) == 0 {
		return shared.ErrEmptyInvoice
	}

	now := time.Now()
	inv.Status = InvoiceStatusFinalized
	inv.FinalizedAt = &now
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceFinalizedEvent(inv))

	return nil
}

// ApplyReturn records a returned quantity against an invoice line.
// Allowed on FINALIZED or PARTIALLY_RETURNED invoices. The cumulative
// returned quantity can never exceed the quantity sold.
func (inv *Invoice) ApplyReturn(lineID uuid.UUID, quantity int64) error {
	if inv.Status != InvoiceStatusFinalized && inv.Status != InvoiceStatusPartiallyReturned {
		return shared.ErrInvalidState.WithMessagef("Cannot return against invoice in %s status", inv.Status)
	}
	if quantity <= 0 {
		return shared.ErrInvalidAmount.WithMessage("Return quantity must be positive")
	}

	var line *InvoiceLine
	for idx := range inv.Lines {
		if inv.Lines[idx].ID == lineID {
			line = &inv.Lines[idx]
			break
		}
	}
	if line == nil {
		return shared.ErrNotFound.WithMessage("Invoice line not found")
	}

	if line.ReturnedQuantity+quantity > line.Quantity {
		return shared.ErrOverReturn.WithMessagef(
			"Cannot return %d of product %s: sold %d, already returned %d",
			quantity, line.ProductRef, line.Quantity, line.ReturnedQuantity)
	}

	line.ReturnedQuantity += quantity
	line.UpdatedAt = time.Now()

	oldStatus := inv.Status
	if inv.isFullyReturned() {
		inv.Status = InvoiceStatusFullyReturned
	} else {
		inv.Status = InvoiceStatusPartiallyReturned
	}
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	if inv.Status != oldStatus {
		inv.AddDomainEvent(NewInvoiceStatusChangedEvent(inv, oldStatus))
	}

	return nil
}

// recalculateTotals recalculates the invoice total from its lines
// Must never be called after finalization
func (inv *Invoice) recalculateTotals() {
	total := decimal.Zero
	for _, line := range inv.Lines {
		total = total.Add(line.Amount)
	}
	inv.TotalAmount = total
}

func (inv *Invoice) isFullyReturned() bool {
	for _, line := range inv.Lines {
		if line.ReturnedQuantity < line.Quantity {
			return false
		}
	}
	return len(inv.Lines) > 0
}

// ReturnedAmount returns the total value of returned quantities at sold prices
func (inv *Invoice) ReturnedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, line := range inv.Lines {
		total = total.Add(line.ReturnedAmount())
	}
	return total
}

// NetPayable returns the amount the client owes on this invoice after returns
func (inv *Invoice) NetPayable() decimal.Decimal {
	return inv.TotalAmount.Sub(inv.ReturnedAmount())
}

// GetTotalAmountMoney returns the total amount as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(inv.TotalAmount)
}

// GetNetPayableMoney returns the net payable as Money
func (inv *Invoice) GetNetPayableMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(inv.NetPayable())
}

// GetLineByID returns the line with the given ID
func (inv *Invoice) GetLineByID(lineID uuid.UUID) (*InvoiceLine, error) {
	for idx := range inv.Lines {
		if inv.Lines[idx].ID == lineID {
			return &inv.Lines[idx], nil
		}
	}
	return nil, shared.ErrNotFound.WithMessage(fmt.Sprintf("Invoice line %s not found", lineID))
}

// GetLineByProductID returns the line for the given product
func (inv *Invoice) GetLineByProductID(productID uuid.UUID) (*InvoiceLine, error) {
	for idx := range inv.Lines {
		if inv.Lines[idx].ProductID == productID {
			return &inv.Lines[idx], nil
		}
	}
	return nil, shared.ErrNotFound.WithMessage("No invoice line for product")
}

// LineCount returns the number of lines on the invoice
func (inv *Invoice) LineCount() int {
	return len(inv.Lines)
}

// IsDraft returns true if the invoice is in draft status
func (inv *Invoice) IsDraft() bool {
	return inv.Status == InvoiceStatusDraft
}

// IsFinalized returns true if the invoice has been finalized
// Returned invoices count as finalized since stock has been debited
func (inv *Invoice) IsFinalized() bool {
	return inv.Status != InvoiceStatusDraft
}

// IsFullyReturned returns true if every line has been fully returned
func (inv *Invoice) IsFullyReturned() bool {
	return inv.Status == InvoiceStatusFullyReturned
}
