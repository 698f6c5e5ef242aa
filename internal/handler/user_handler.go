package handler

import (
	"net/http"

	"library_catalog/internal/model"
	"library_catalog/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler manages library members. Every route is admin-only.
type UserHandler struct {
	users   service.UserService
	catalog service.CatalogService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users service.UserService, catalog service.CatalogService) *UserHandler {
	return &UserHandler{users: users, catalog: catalog}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Users())
}

// EligibleUsers lists the members who can still take a book, for the checkout picker
func (h *UserHandler) EligibleUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.EligibleUsers())
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	user, err := h.users.AddUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create user")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "user")
	if !ok {
		return
	}
	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// RegisterUserRoutes registers user routes
func (h *UserHandler) RegisterUserRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	users := rg.Group("/users")
	users.Use(authMW, adminMW)
	{
		users.GET("", h.ListUsers)
		users.GET("/eligible", h.EligibleUsers)
		users.POST("", h.CreateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}
