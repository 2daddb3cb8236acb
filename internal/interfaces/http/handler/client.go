package handler

import (
	"github.com/gin-gonic/gin"

	partnerapp "github.com/proxima/backend/internal/application/partner"
	"github.com/proxima/backend/internal/interfaces/http/dto"
)

// ClientHandler handles client API endpoints
type ClientHandler struct {
	BaseHandler
	clientService *partnerapp.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *partnerapp.ClientService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
	}
}

// ClientRequest is the request body for creating or updating a client
type ClientRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Phone   string `json:"phone" binding:"max=30"`
	Address string `json:"address" binding:"max=300"`
	City    string `json:"city" binding:"max=100"`
}

// Create handles POST /partner/clients
func (h *ClientHandler) Create(c *gin.Context) {
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), partnerapp.CreateClientRequest{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		City:    req.City,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, client)
}

// GetByID handles GET /partner/clients/:id
func (h *ClientHandler) GetByID(c *gin.Context) {
	clientID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	client, err := h.clientService.GetByID(c.Request.Context(), clientID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, client)
}

// List handles GET /partner/clients
func (h *ClientHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := buildFilter(req)
	if city := c.Query("city"); city != "" {
		filter.Filters["city"] = city
	}

	page, err := h.clientService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update handles PUT /partner/clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	clientID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), clientID, partnerapp.UpdateClientRequest{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		City:    req.City,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, client)
}

// Delete handles DELETE /partner/clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	clientID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	if err := h.clientService.Delete(c.Request.Context(), clientID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Statement handles GET /partner/clients/:id/statement
func (h *ClientHandler) Statement(c *gin.Context) {
	clientID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	statement, err := h.clientService.Statement(c.Request.Context(), clientID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, statement)
}
