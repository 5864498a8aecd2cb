package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // History window arithmetic

	"metals_trading/internal/domain"  // Importing domain models
	"metals_trading/internal/service" // Price oracle

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// GetCurrentPricesHandler returns fresh quotes for all metals
func GetCurrentPricesHandler(prices *service.PriceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		quotes, err := prices.AllCurrentPrices()
		if err != nil {
			fail(c, http.StatusInternalServerError, "Failed to get current prices")
			return
		}
		success(c, http.StatusOK, "Current prices retrieved successfully", gin.H{"prices": quotes})
	}
}

// GetMetalPriceHandler returns a fresh quote for one metal
func GetMetalPriceHandler(prices *service.PriceService, metalType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		quote, err := prices.CurrentPrice(metalType)
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		success(c, http.StatusOK, metalType+" price retrieved successfully", gin.H{"price": quote})
	}
}

// GetPriceHistoryHandler returns the persisted price series for the
// requested window, synthesizing one when no samples cover it
func GetPriceHistoryHandler(db *gorm.DB, prices *service.PriceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		metalType := c.Query("metalType")
		if metalType == "" {
			fail(c, http.StatusBadRequest, "Metal type is required")
			return
		}
		days := 7 // Default window
		if d := c.Query("days"); d != "" {
			if v, err := strconv.Atoi(d); err == nil && v > 0 {
				days = v
			}
		}

		since := time.Now().AddDate(0, 0, -days).UnixMilli()
		var persisted []domain.PriceHistory
		if err := db.Where("metal_type = ? AND timestamp >= ?", metalType, since).
			Order("timestamp asc").
			Find(&persisted).Error; err != nil {
			fail(c, http.StatusInternalServerError, "Failed to get price history")
			return
		}

		var history any = persisted
		if len(persisted) == 0 {
			mock, err := prices.MockHistory(metalType, days)
			if err != nil {
				fail(c, http.StatusBadRequest, err.Error())
				return
			}
			history = mock
		}

		success(c, http.StatusOK, "Price history retrieved successfully", gin.H{
			"metalType": metalType,
			"days":      days,
			"history":   history,
		})
	}
}
