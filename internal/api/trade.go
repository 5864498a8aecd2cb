package api

import (
	"context"  // Context for cache invalidation
	"net/http" // HTTP status codes

	"metals_trading/internal/service" // Settlement and valuation engines

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// BuyRequest is the purchase payload. Either amountInRupees or weightInGrams
// is expected; when both are present the amount takes precedence.
type BuyRequest struct {
	MetalType      string  `json:"metalType" binding:"required"`
	AmountInRupees float64 `json:"amountInRupees"`
	WeightInGrams  float64 `json:"weightInGrams"`
}

// SellRequest is the sale payload
type SellRequest struct {
	MetalType     string  `json:"metalType" binding:"required"`
	WeightInGrams float64 `json:"weightInGrams" binding:"required,gt=0"`
}

// BuyHandler settles a metal purchase for the authenticated user
func BuyHandler(trades *service.TradeService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uint)
		var req BuyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "Invalid request")
			return
		}
		if req.AmountInRupees <= 0 && req.WeightInGrams <= 0 {
			fail(c, http.StatusBadRequest, "Either amount or weight must be provided")
			return
		}
		result, err := trades.Buy(c.Request.Context(), userID, req.MetalType, req.AmountInRupees, req.WeightInGrams)
		if err != nil {
			settlementError(c, err, "Purchase failed")
			return
		}
		invalidateUserCaches(context.Background(), rdb, userID)
		success(c, http.StatusCreated, "Purchase successful", gin.H{
			"transaction": result.Transaction,
			"holding": gin.H{
				"metalType":            result.Holding.MetalType,
				"weightInGrams":        result.Holding.WeightInGrams,
				"averagePurchasePrice": result.Holding.AveragePurchasePrice,
				"totalInvestedAmount":  result.Holding.TotalInvestedAmount,
			},
			"walletBalance": result.WalletBalance,
		})
	}
}

// SellHandler settles a metal sale for the authenticated user
func SellHandler(trades *service.TradeService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uint)
		var req SellRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "Invalid weight")
			return
		}
		result, err := trades.Sell(c.Request.Context(), userID, req.MetalType, req.WeightInGrams)
		if err != nil {
			settlementError(c, err, "Sale failed")
			return
		}
		invalidateUserCaches(context.Background(), rdb, userID)

		// A fully liquidated position is reported as null
		var remaining any
		if result.Holding != nil {
			remaining = gin.H{
				"metalType":           result.Holding.MetalType,
				"weightInGrams":       result.Holding.WeightInGrams,
				"totalInvestedAmount": result.Holding.TotalInvestedAmount,
			}
		}
		success(c, http.StatusCreated, "Sale successful", gin.H{
			"transaction":      result.Transaction,
			"remainingHolding": remaining,
			"walletBalance":    result.WalletBalance,
		})
	}
}

// GetHoldingsHandler returns the authenticated user's holdings valued at
// current prices
func GetHoldingsHandler(trades *service.TradeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uint)
		details, err := trades.HoldingDetails(c.Request.Context(), userID)
		if err != nil {
			fail(c, http.StatusInternalServerError, "Failed to get holdings")
			return
		}
		message := "Holdings retrieved successfully"
		if len(details) == 0 {
			message = "No holdings found"
		}
		success(c, http.StatusOK, message, gin.H{"holdings": details})
	}
}

// GetPortfolioHandler returns the full valued portfolio
func GetPortfolioHandler(trades *service.TradeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uint)
		portfolio, err := trades.Portfolio(c.Request.Context(), userID)
		if err != nil {
			settlementError(c, err, "Failed to get portfolio")
			return
		}
		success(c, http.StatusOK, "Portfolio retrieved successfully", portfolio)
	}
}
