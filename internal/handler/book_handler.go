package handler

import (
	"errors"
	"io"
	"net/http"

	"library_catalog/internal/model"
	"library_catalog/internal/service"

	"github.com/gin-gonic/gin"
)

// BookHandler serves book reads from the catalog mirror and book writes through the store
type BookHandler struct {
	books   service.BookService
	catalog service.CatalogService
}

// NewBookHandler creates a new BookHandler
func NewBookHandler(books service.BookService, catalog service.CatalogService) *BookHandler {
	return &BookHandler{books: books, catalog: catalog}
}

func (h *BookHandler) Search(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.SearchBooks(c.Query("q")))
}

func (h *BookHandler) SearchCheckedOut(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.SearchCheckedOut(c.Query("q")))
}

func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := parseID(c, "book")
	if !ok {
		return
	}
	book, err := h.catalog.GetBook(id)
	if err != nil {
		respondError(c, err, "Failed to retrieve book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// CreateBook expects a multipart form with the text fields and an "image" file
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req model.CreateBookRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	var image *service.ImageUpload
	file, err := c.FormFile("image")
	switch {
	case err == nil:
		image = &service.ImageUpload{
			FileName: file.Filename,
			Size:     file.Size,
			Open:     func() (io.ReadCloser, error) { return file.Open() },
		}
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image upload: " + err.Error()})
		return
	}

	book, err := h.books.AddBook(c.Request.Context(), req, image)
	if err != nil {
		respondError(c, err, "Failed to create book")
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := parseID(c, "book")
	if !ok {
		return
	}
	if err := h.books.DeleteBook(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete book")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}

func (h *BookHandler) Checkout(c *gin.Context) {
	id, ok := parseID(c, "book")
	if !ok {
		return
	}
	var req model.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	book, err := h.books.Checkout(c.Request.Context(), id, req.UserID)
	if err != nil {
		respondError(c, err, "Failed to check out book")
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *BookHandler) Checkin(c *gin.Context) {
	id, ok := parseID(c, "book")
	if !ok {
		return
	}
	book, err := h.books.Checkin(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to check in book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// RegisterBookRoutes registers book routes; reads are public, writes need an admin session
func (h *BookHandler) RegisterBookRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	books := rg.Group("/books")
	{
		books.GET("", h.Search)
		books.GET("/checked-out", h.SearchCheckedOut)
		books.GET("/:id", h.GetBook)
	}

	adminBooks := rg.Group("/books")
	adminBooks.Use(authMW, adminMW)
	{
		adminBooks.POST("", h.CreateBook)
		adminBooks.DELETE("/:id", h.DeleteBook)
		adminBooks.POST("/:id/checkout", h.Checkout)
		adminBooks.POST("/:id/checkin", h.Checkin)
	}
}
