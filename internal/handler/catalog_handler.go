package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"library_catalog/internal/catalog"
	"library_catalog/internal/service"

	"github.com/gin-gonic/gin"
)

const streamEvent = "catalog"

// CatalogHandler serves aggregate counts and the live view stream
type CatalogHandler struct {
	service service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

func (h *CatalogHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Stats())
}

// Stream sends the current view as a server-sent event, then a fresh one after every catalog
// change. The search terms are fixed for the lifetime of the stream.
func (h *CatalogHandler) Stream(c *gin.Context) {
	q := catalog.ViewQuery{Books: c.Query("q"), CheckedOut: c.Query("checked_q")}
	updates, cancel := h.service.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent(streamEvent, h.service.View(q))
	c.Writer.Flush()

	done := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case snap, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent(streamEvent, catalog.BuildView(snap, q))
			return true
		}
	})
}

// RegisterCatalogRoutes registers catalog routes
func (h *CatalogHandler) RegisterCatalogRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/catalog")
	{
		group.GET("/stats", h.Stats)
		group.GET("/stream", h.Stream)
	}
}

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports store connectivity and how far the mirror has caught up
func Health(db Pinger, cs service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy", "catalog_version": cs.Version()})
	}
}
