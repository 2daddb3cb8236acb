package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/proxima/backend/internal/infrastructure/auth"
)

// AuthHandler handles authentication API endpoints
type AuthHandler struct {
	BaseHandler
	jwtService *auth.JWTService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
	}
}

// LoginRequest is the request body for operator login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	token, err := h.jwtService.Authenticate(req.Username, req.Password)
	if err != nil {
		h.Unauthorized(c, "Invalid username or password")
		return
	}

	h.Success(c, token)
}
