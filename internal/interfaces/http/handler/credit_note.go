package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/proxima/backend/internal/application/billing"
)

// CreditNoteHandler handles return and credit note API endpoints
type CreditNoteHandler struct {
	BaseHandler
	returnService *billingapp.ReturnService
}

// NewCreditNoteHandler creates a new CreditNoteHandler
func NewCreditNoteHandler(returnService *billingapp.ReturnService) *CreditNoteHandler {
	return &CreditNoteHandler{
		returnService: returnService,
	}
}

// ReturnLineRequest is one returned line on an accept-return request
type ReturnLineRequest struct {
	LineID   string `json:"line_id" binding:"required,uuid"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

// AcceptReturnRequest is the request body for accepting a customer return
type AcceptReturnRequest struct {
	Lines []ReturnLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// AcceptReturn handles POST /billing/invoices/:id/returns
func (h *CreditNoteHandler) AcceptReturn(c *gin.Context) {
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req AcceptReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := billingapp.AcceptReturnRequest{}
	for _, line := range req.Lines {
		appReq.Lines = append(appReq.Lines, billingapp.ReturnLineRequest{
			LineID:   uuid.MustParse(line.LineID),
			Quantity: line.Quantity,
		})
	}

	note, err := h.returnService.AcceptReturn(c.Request.Context(), invoiceID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, note)
}

// ListByInvoice handles GET /billing/invoices/:id/returns
func (h *CreditNoteHandler) ListByInvoice(c *gin.Context) {
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	notes, err := h.returnService.ListByInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, notes)
}

// GetByID handles GET /billing/credit-notes/:id
func (h *CreditNoteHandler) GetByID(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid credit note ID format")
		return
	}

	note, err := h.returnService.GetByID(c.Request.Context(), noteID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, note)
}
