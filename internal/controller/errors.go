package controller

import (
	"errors"
	"net/http"

	"taskboard/internal/apperr"
	"taskboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// statusFor maps an apperr kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrInvalidToken):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {error: message}. Unclassified errors are logged
// and hidden behind a generic message.
func writeError(c *gin.Context, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(c.Request.Context(), op+" failed", "error", err)
	}
	c.JSON(status, gin.H{"error": apperr.Message(err, "Internal server error")})
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
}
