package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Cache TTLs

	"metals_trading/internal/domain"  // Importing domain models
	"metals_trading/internal/service" // Settlement engine
	"metals_trading/internal/utils"   // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// AmountRequest carries a deposit or withdrawal amount
type AmountRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"` // Amount must be positive
}

// walletCacheKey builds the per-user wallet cache key
func walletCacheKey(userID uint) string {
	return "wallet:user:" + strconv.Itoa(int(userID))
}

// invalidateUserCaches drops the wallet and transaction history caches after
// any settled mutation (simple version: delete the first 5 history pages)
func invalidateUserCaches(ctx context.Context, rdb *redis.Client, userID uint) {
	_ = utils.DeleteCache(ctx, rdb, walletCacheKey(userID))
	txPrefix := "txhistory:user:" + strconv.Itoa(int(userID))
	for i := 1; i <= 5; i++ {
		_ = utils.DeleteCache(ctx, rdb, txPrefix+":page:"+strconv.Itoa(i)+":limit:10:type:")
	}
}

// GetBalanceHandler returns the authenticated user's wallet balance
func GetBalanceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uint)
		ctx := context.Background()
		cacheKey := walletCacheKey(userID)

		var wallet domain.Wallet
		found, err := utils.GetCache(ctx, rdb, cacheKey, &wallet) // Try cache first
		if err == nil && found {
			success(c, http.StatusOK, "Balance retrieved successfully", gin.H{
				"balance":  wallet.Balance,
				"currency": wallet.Currency,
				"cached":   true,
			})
			return
		}

		if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			fail(c, http.StatusNotFound, "Wallet not found")
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, wallet, 60*time.Second) // Cache for 60 seconds
		success(c, http.StatusOK, "Balance retrieved successfully", gin.H{
			"balance":  wallet.Balance,
			"currency": wallet.Currency,
			"cached":   false,
		})
	}
}

// DepositHandler credits the authenticated user's wallet
func DepositHandler(trades *service.TradeService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uint)
		var req AmountRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			fail(c, http.StatusBadRequest, "Invalid amount")
			return
		}
		result, err := trades.Deposit(c.Request.Context(), userID, req.Amount)
		if err != nil {
			settlementError(c, err, "Deposit failed")
			return
		}
		invalidateUserCaches(context.Background(), rdb, userID)
		success(c, http.StatusCreated, "Deposit successful", gin.H{
			"balance":     result.Balance,
			"transaction": result.Transaction,
		})
	}
}

// WithdrawHandler debits the authenticated user's wallet
func WithdrawHandler(trades *service.TradeService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uint)
		var req AmountRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			fail(c, http.StatusBadRequest, "Invalid amount")
			return
		}
		result, err := trades.Withdraw(c.Request.Context(), userID, req.Amount)
		if err != nil {
			settlementError(c, err, "Withdrawal failed")
			return
		}
		invalidateUserCaches(context.Background(), rdb, userID)
		success(c, http.StatusCreated, "Withdrawal successful", gin.H{
			"balance":     result.Balance,
			"transaction": result.Transaction,
		})
	}
}
