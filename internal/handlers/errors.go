package handlers

import (
	"errors"
	"net/http"

	"github.com/Abel-cordero/ORDEN/internal/models"
	"github.com/Abel-cordero/ORDEN/internal/registry"
	"github.com/gin-gonic/gin"
)

// respondError maps registry errors onto the API error body. Busy storage is
// the only condition the GUI should retry automatically.
func respondError(c *gin.Context, err error) {
	var validationErr *registry.ValidationError
	var corruptionErr *registry.CorruptionError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: validationErr.Error(),
			Code:    http.StatusBadRequest,
		})
	case errors.Is(err, registry.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not found",
			Message: err.Error(),
			Code:    http.StatusNotFound,
		})
	case errors.Is(err, registry.ErrStorageBusy):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "storage busy",
			Message: "database is busy, retry the operation",
			Code:    http.StatusServiceUnavailable,
		})
	case errors.As(err, &corruptionErr):
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "storage corrupted",
			Message: corruptionErr.Error(),
			Code:    http.StatusInternalServerError,
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid request",
		Message: message,
		Code:    http.StatusBadRequest,
	})
}
