package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/proxima/backend/internal/application/billing"
	"github.com/proxima/backend/internal/domain/billing"
	"github.com/proxima/backend/internal/interfaces/http/dto"
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// InvoiceLineRequest is one line on a create or add-line request
type InvoiceLineRequest struct {
	ProductID string   `json:"product_id" binding:"required,uuid"`
	Quantity  int64    `json:"quantity" binding:"required,gt=0"`
	UnitPrice *float64 `json:"unit_price" binding:"omitempty,gt=0"`
}

// CreateInvoiceRequest is the request body for creating a draft invoice
type CreateInvoiceRequest struct {
	Number      string               `json:"number" binding:"omitempty,max=50"`
	ClientID    string               `json:"client_id" binding:"required,uuid"`
	IssueDate   string               `json:"issue_date" binding:"omitempty,datetime=2006-01-02"`
	ParcelCount int                  `json:"parcel_count" binding:"omitempty,min=0"`
	Lines       []InvoiceLineRequest `json:"lines" binding:"omitempty,dive"`
}

// UpdateInvoiceLineRequest updates a draft invoice line
type UpdateInvoiceLineRequest struct {
	Quantity  *int64   `json:"quantity" binding:"omitempty,gt=0"`
	UnitPrice *float64 `json:"unit_price" binding:"omitempty,gt=0"`
}

// SetParcelCountRequest sets the parcel count on a draft invoice
type SetParcelCountRequest struct {
	ParcelCount int `json:"parcel_count" binding:"min=0"`
}

func toAppLineRequest(req InvoiceLineRequest) billingapp.InvoiceLineRequest {
	appReq := billingapp.InvoiceLineRequest{
		ProductID: uuid.MustParse(req.ProductID),
		Quantity:  req.Quantity,
	}
	if req.UnitPrice != nil {
		appReq.UnitPrice = toDecimalPtr(*req.UnitPrice)
	}
	return appReq
}

// Create handles POST /billing/invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := billingapp.CreateInvoiceRequest{
		Number:      req.Number,
		ClientID:    uuid.MustParse(req.ClientID),
		IssueDate:   time.Now(),
		ParcelCount: req.ParcelCount,
	}
	if req.IssueDate != "" {
		issueDate, err := parseDate(req.IssueDate)
		if err != nil {
			h.BadRequest(c, "Invalid issue date format")
			return
		}
		appReq.IssueDate = issueDate
	}
	for _, line := range req.Lines {
		appReq.Lines = append(appReq.Lines, toAppLineRequest(line))
	}

	invoice, err := h.invoiceService.CreateDraft(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, invoice)
}

// GetByID handles GET /billing/invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.GetByID(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// GetBalance handles GET /billing/invoices/:id/balance
func (h *InvoiceHandler) GetBalance(c *gin.Context) {
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	balance, err := h.invoiceService.GetBalance(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balance)
}

// List handles GET /billing/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
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
	if status := c.Query("status"); status != "" {
		if !billing.InvoiceStatus(status).IsValid() {
			h.BadRequest(c, "Invalid invoice status")
			return
		}
		filter.Filters["status"] = status
	}

	page, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// AddLine handles POST /billing/invoices/:id/lines
func (h *InvoiceHandler) AddLine(c *gin.Context) {
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req InvoiceLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.AddLine(c.Request.Context(), invoiceID, toAppLineRequest(req))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// UpdateLine handles PUT /billing/invoices/:id/lines/:line_id
func (h *InvoiceHandler) UpdateLine(c *gin.Context) {
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}
	lineID, ok := parseIDParam(c, "line_id")
	if !ok {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	var req UpdateInvoiceLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := billingapp.UpdateInvoiceLineRequest{
		Quantity: req.Quantity,
	}
	if req.UnitPrice != nil {
		appReq.UnitPrice = toDecimalPtr(*req.UnitPrice)
	}

	invoice, err := h.invoiceService.UpdateLine(c.Request.Context(), invoiceID, lineID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// RemoveLine handles DELETE /billing/invoices/:id/lines/:line_id
func (h *InvoiceHandler) RemoveLine(c *gin.Context) {
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}
	lineID, ok := parseIDParam(c, "line_id")
	if !ok {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	invoice, err := h.invoiceService.RemoveLine(c.Request.Context(), invoiceID, lineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// SetParcelCount handles PUT /billing/invoices/:id/parcels
func (h *InvoiceHandler) SetParcelCount(c *gin.Context) {
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req SetParcelCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.SetParcelCount(c.Request.Context(), invoiceID, req.ParcelCount)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Finalize handles POST /billing/invoices/:id/finalize
func (h *InvoiceHandler) Finalize(c *gin.Context) {
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.Finalize(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Delete handles DELETE /billing/invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), invoiceID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
