package api

import (
	"errors"   // Error classification
	"net/http" // HTTP status codes

	"metals_trading/internal/service" // Settlement errors

	"github.com/gin-gonic/gin" // Gin web framework
)

// success writes the standard success envelope
func success(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{"success": true, "message": message, "data": data})
}

// fail writes the standard error envelope
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// settlementError maps settlement engine errors onto HTTP statuses
func settlementError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidMetalType),
		errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrInsufficientQuantity):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrWalletNotFound),
		errors.Is(err, service.ErrHoldingNotFound):
		fail(c, http.StatusNotFound, err.Error())
	default:
		fail(c, http.StatusInternalServerError, fallback)
	}
}
