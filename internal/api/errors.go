package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram-v2/backend/internal/service"
)

// respondError translates a service error into the HTTP response the
// API contract expects. conflictMsg overrides the generic message for
// duplicate-membership errors so each endpoint can name its resource.
func respondError(c *gin.Context, err error, conflictMsg string) {
	switch {
	case service.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
	case errors.Is(err, service.ErrConflict):
		msg := conflictMsg
		if msg == "" {
			msg = "already exists"
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
	case errors.Is(err, service.ErrNotSubscribed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "you are not subscribed to this author"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
