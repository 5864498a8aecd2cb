package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Cache TTLs

	"metals_trading/internal/domain"  // Importing domain models
	"metals_trading/internal/service" // Valuation engine
	"metals_trading/internal/utils"   // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// historyPage is the cached shape of one transaction history page
type historyPage struct {
	Transactions []domain.Transaction `json:"transactions"`
	Page         int                  `json:"page"`
	Limit        int                  `json:"limit"`
	Total        int64                `json:"total"`
	Pages        int                  `json:"pages"`
}

// GetHistoryHandler returns the authenticated user's transactions, newest
// first, paginated and optionally filtered by type
func GetHistoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uint)
		page := 1   // Default page number
		limit := 10 // Default page size
		if p := c.Query("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v
			}
		}
		if l := c.Query("limit"); l != "" {
			if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
				limit = v
			}
		}
		txType := c.Query("type")

		ctx := context.Background()
		cacheKey := "txhistory:user:" + strconv.Itoa(int(userID)) +
			":page:" + strconv.Itoa(page) + ":limit:" + strconv.Itoa(limit) + ":type:" + txType

		var cached historyPage
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached) // Try cache first
		if err == nil && found {
			success(c, http.StatusOK, "Transaction history retrieved successfully", gin.H{
				"transactions": cached.Transactions,
				"pagination": gin.H{
					"page":  cached.Page,
					"limit": cached.Limit,
					"total": cached.Total,
					"pages": cached.Pages,
				},
				"cached": true,
			})
			return
		}

		query := db.Model(&domain.Transaction{}).Where("user_id = ?", userID)
		if txType != "" {
			query = query.Where("type = ?", txType)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			fail(c, http.StatusInternalServerError, "Failed to get transaction history")
			return
		}

		var transactions []domain.Transaction
		if err := query.Order("created_at desc").
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&transactions).Error; err != nil {
			fail(c, http.StatusInternalServerError, "Failed to get transaction history")
			return
		}

		pages := (int(total) + limit - 1) / limit
		result := historyPage{Transactions: transactions, Page: page, Limit: limit, Total: total, Pages: pages}
		_ = utils.SetCache(ctx, rdb, cacheKey, result, 60*time.Second) // Cache for 60 seconds

		success(c, http.StatusOK, "Transaction history retrieved successfully", gin.H{
			"transactions": transactions,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
				"pages": pages,
			},
			"cached": false,
		})
	}
}

// GetStatsHandler aggregates the user's transaction totals and returns the
// five most recent transactions alongside
func GetStatsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uint)

		var transactions []domain.Transaction
		if err := db.Where("user_id = ?", userID).Find(&transactions).Error; err != nil {
			fail(c, http.StatusInternalServerError, "Failed to get transaction stats")
			return
		}
		stats := service.CalculateTransactionStats(transactions)

		var recent []domain.Transaction
		if err := db.Where("user_id = ?", userID).
			Order("created_at desc").
			Limit(5).
			Find(&recent).Error; err != nil {
			fail(c, http.StatusInternalServerError, "Failed to get transaction stats")
			return
		}

		success(c, http.StatusOK, "Transaction stats retrieved successfully", gin.H{
			"stats":              stats,
			"recentTransactions": recent,
		})
	}
}

// GetTransactionByIDHandler returns one of the user's transactions by ID
func GetTransactionByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uint)
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid transaction id")
			return
		}

		var transaction domain.Transaction
		if err := db.Where("id = ? AND user_id = ?", id, userID).First(&transaction).Error; err != nil {
			fail(c, http.StatusNotFound, "Transaction not found")
			return
		}
		success(c, http.StatusOK, "Transaction retrieved successfully", gin.H{"transaction": transaction})
	}
}
