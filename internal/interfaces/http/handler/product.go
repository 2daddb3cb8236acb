package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	catalogapp "github.com/proxima/backend/internal/application/catalog"
	"github.com/proxima/backend/internal/interfaces/http/dto"
)

// ProductHandler handles catalog API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// CreateProductRequest is the request body for creating a product
type CreateProductRequest struct {
	Ref           string  `json:"ref" binding:"required,min=1,max=50"`
	Name          string  `json:"name" binding:"required,min=1,max=200"`
	UnitPrice     float64 `json:"unit_price" binding:"min=0"`
	PurchasePrice float64 `json:"purchase_price" binding:"min=0"`
}

// UpdateProductRequest is the request body for updating a product
type UpdateProductRequest struct {
	Name          string  `json:"name" binding:"required,min=1,max=200"`
	UnitPrice     float64 `json:"unit_price" binding:"min=0"`
	PurchasePrice float64 `json:"purchase_price" binding:"min=0"`
}

// ReceiveStockRequest is the request body for recording a stock receipt
type ReceiveStockRequest struct {
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	EntryDate string `json:"entry_date" binding:"omitempty,datetime=2006-01-02"`
	Reference string `json:"reference" binding:"max=100"`
}

// AdjustStockRequest is the request body for a manual stock adjustment
type AdjustStockRequest struct {
	Delta int64 `json:"delta" binding:"required"`
}

// Create handles POST /catalog/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.productService.Create(c.Request.Context(), catalogapp.CreateProductRequest{
		Ref:           req.Ref,
		Name:          req.Name,
		UnitPrice:     decimal.NewFromFloat(req.UnitPrice),
		PurchasePrice: decimal.NewFromFloat(req.PurchasePrice),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, product)
}

// GetByID handles GET /catalog/products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

// GetByRef handles GET /catalog/products/ref/:ref
func (h *ProductHandler) GetByRef(c *gin.Context) {
	ref := c.Param("ref")
	if ref == "" {
		h.BadRequest(c, "Product ref is required")
		return
	}

	product, err := h.productService.GetByRef(c.Request.Context(), ref)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

// List handles GET /catalog/products
func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := buildFilter(req)
	if stock := c.Query("stock"); stock == "in_stock" || stock == "out_of_stock" {
		filter.Filters[stock] = true
	}

	page, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update handles PUT /catalog/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.productService.Update(c.Request.Context(), productID, catalogapp.UpdateProductRequest{
		Name:          req.Name,
		UnitPrice:     decimal.NewFromFloat(req.UnitPrice),
		PurchasePrice: decimal.NewFromFloat(req.PurchasePrice),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete handles DELETE /catalog/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), productID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ReceiveStock handles POST /catalog/products/:id/receive
func (h *ProductHandler) ReceiveStock(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req ReceiveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := catalogapp.ReceiveStockRequest{
		Quantity:  req.Quantity,
		Reference: req.Reference,
	}
	if req.EntryDate != "" {
		entryDate, err := parseDate(req.EntryDate)
		if err != nil {
			h.BadRequest(c, "Invalid entry date format")
			return
		}
		appReq.EntryDate = entryDate
	}

	product, err := h.productService.ReceiveStock(c.Request.Context(), productID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

// AdjustStock handles POST /catalog/products/:id/adjust
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.productService.AdjustStock(c.Request.Context(), productID, catalogapp.AdjustStockRequest{
		Delta: req.Delta,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

// ListStockEntries handles GET /catalog/products/:id/entries
func (h *ProductHandler) ListStockEntries(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	entries, err := h.productService.ListStockEntries(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entries)
}

// InventoryReport handles GET /catalog/inventory/report
func (h *ProductHandler) InventoryReport(c *gin.Context) {
	report, err := h.productService.InventoryReport(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}
