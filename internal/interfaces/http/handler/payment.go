package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ledgerapp "github.com/proxima/backend/internal/application/ledger"
	"github.com/proxima/backend/internal/interfaces/http/dto"
)

// PaymentHandler handles payment API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *ledgerapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *ledgerapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// AllocationRequest applies part of a payment to an invoice
type AllocationRequest struct {
	InvoiceID string  `json:"invoice_id" binding:"required,uuid"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
}

// RecordPaymentRequest is the request body for recording a payment
type RecordPaymentRequest struct {
	Number      string              `json:"number" binding:"omitempty,max=50"`
	ClientID    string              `json:"client_id" binding:"required,uuid"`
	Amount      float64             `json:"amount" binding:"required,gt=0"`
	Bank        string              `json:"bank" binding:"max=100"`
	PaymentDate string              `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	DueDate     string              `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Allocations []AllocationRequest `json:"allocations" binding:"omitempty,dive"`
}

// ReallocateRequest moves an allocation from one invoice to another
type ReallocateRequest struct {
	FromInvoiceID string  `json:"from_invoice_id" binding:"required,uuid"`
	ToInvoiceID   string  `json:"to_invoice_id" binding:"required,uuid"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
}

// Record handles POST /ledger/payments
func (h *PaymentHandler) Record(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := ledgerapp.RecordPaymentRequest{
		Number:      req.Number,
		ClientID:    uuid.MustParse(req.ClientID),
		Amount:      decimal.NewFromFloat(req.Amount),
		Bank:        req.Bank,
		PaymentDate: time.Now(),
	}
	if req.PaymentDate != "" {
		paymentDate, err := parseDate(req.PaymentDate)
		if err != nil {
			h.BadRequest(c, "Invalid payment date format")
			return
		}
		appReq.PaymentDate = paymentDate
	}
	if req.DueDate != "" {
		dueDate, err := parseDate(req.DueDate)
		if err != nil {
			h.BadRequest(c, "Invalid due date format")
			return
		}
		appReq.DueDate = &dueDate
	}
	for _, alloc := range req.Allocations {
		appReq.Allocations = append(appReq.Allocations, ledgerapp.AllocationRequest{
			InvoiceID: uuid.MustParse(alloc.InvoiceID),
			Amount:    decimal.NewFromFloat(alloc.Amount),
		})
	}

	payment, err := h.paymentService.Record(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, payment)
}

// GetByID handles GET /ledger/payments/:id
func (h *PaymentHandler) GetByID(c *gin.Context) {
	paymentID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.paymentService.GetByID(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// List handles GET /ledger/payments
func (h *PaymentHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := buildFilter(req)
	if clientID := c.Query("client_id"); clientID != "" {
		id, err := uuid.Parse(clientID)
		if err != nil {
			h.BadRequest(c, "Invalid client ID format")
			return
		}
		filter.Filters["client_id"] = id
	}

	page, err := h.paymentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Allocate handles POST /ledger/payments/:id/allocations
func (h *PaymentHandler) Allocate(c *gin.Context) {
	paymentID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req AllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.Allocate(c.Request.Context(), paymentID, ledgerapp.AllocationRequest{
		InvoiceID: uuid.MustParse(req.InvoiceID),
		Amount:    decimal.NewFromFloat(req.Amount),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// Deallocate handles DELETE /ledger/payments/:id/allocations/:invoice_id
func (h *PaymentHandler) Deallocate(c *gin.Context) {
	paymentID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}
	invoiceID, ok := parseIDParam(c, "invoice_id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	payment, err := h.paymentService.Deallocate(c.Request.Context(), paymentID, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// Reallocate handles POST /ledger/payments/:id/reallocate
func (h *PaymentHandler) Reallocate(c *gin.Context) {
	paymentID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req ReallocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.Reallocate(c.Request.Context(), paymentID, ledgerapp.ReallocateRequest{
		FromInvoiceID: uuid.MustParse(req.FromInvoiceID),
		ToInvoiceID:   uuid.MustParse(req.ToInvoiceID),
		Amount:        decimal.NewFromFloat(req.Amount),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// Delete handles DELETE /ledger/payments/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
	paymentID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	if err := h.paymentService.Delete(c.Request.Context(), paymentID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
