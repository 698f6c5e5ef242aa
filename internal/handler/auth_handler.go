package handler

import (
	"net/http"

	"library_catalog/internal/middleware"
	"library_catalog/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles admin sign-in and sign-out
type AuthHandler struct {
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	admin, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Failed to login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Login successful",
		"admin_id": admin.ID,
		"email":    admin.Email,
		"token":    token,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.GetString(middleware.AuthTokenKey)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// Session reports whether the caller's bearer token is a live admin session
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Session(middleware.BearerToken(c)))
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", authMW, h.Logout)
		authGroup.GET("/session", h.Session)
	}
}
