package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"library_catalog/internal/service"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto status codes. Anything unrecognised is a 500: the detail
// is logged and reported, and the client only sees msg.
func respondError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrNoUserSelected):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrBookNotFound), errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrBookNotAvailable),
		errors.Is(err, service.ErrNoEligibleUser),
		errors.Is(err, service.ErrUserHasActiveBooks),
		errors.Is(err, service.ErrAdminExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		slog.Error(msg, "error", err, "method", c.Request.Method, "path", c.FullPath())
		sentry.CaptureException(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func parseID(c *gin.Context, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + " ID"})
		return 0, false
	}
	return id, true
}
