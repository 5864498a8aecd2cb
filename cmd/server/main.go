package main

import (
	"context" // Context for Redis operations and worker lifecycle
	"log"     // log package is needed for startup logging
	"net/http"
	"time"

	"metals_trading/internal/api"        // Custom package for API handlers
	"metals_trading/internal/config"     // Custom package for configuration
	"metals_trading/internal/domain"     // Domain models
	"metals_trading/internal/middleware" // Custom package for middleware
	"metals_trading/internal/service"    // Price, settlement and email services

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Price oracle over the configured base prices; time-seeded randomness
	prices := service.NewPriceService(map[string]float64{
		domain.MetalGold:   cfg.GoldBasePrice,
		domain.MetalSilver: cfg.SilverBasePrice,
	}, nil)

	// Email worker drains the notification queue in the background
	emails := service.NewEmailService(cfg, redisClient)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go emails.Start(workerCtx)

	trades := service.NewTradeService(db, prices, emails)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default()

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	authRequired := middleware.JWTAuthMiddleware(cfg.JWTSecret)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now().Format(time.RFC3339)})
	})

	// Auth routes
	authGroup := r.Group("/api/auth")
	authGroup.POST("/register", api.RegisterHandler(db, cfg, emails))
	authGroup.POST("/login", api.LoginHandler(db, cfg))
	authGroup.POST("/logout", authRequired, api.LogoutHandler())
	authGroup.GET("/profile", authRequired, api.GetProfileHandler(db))
	authGroup.PUT("/profile", authRequired, api.UpdateProfileHandler(db))

	// KYC routes
	userGroup := r.Group("/api/user", authRequired)
	userGroup.POST("/kyc/submit", api.SubmitKYCHandler(db, cfg, emails))
	userGroup.GET("/kyc/status", api.GetKYCStatusHandler(db))
	userGroup.PUT("/kyc/verify", api.VerifyKYCHandler(db, emails))

	// Wallet routes (protected by JWT)
	walletGroup := r.Group("/api/wallet", authRequired)
	walletGroup.GET("/balance", api.GetBalanceHandler(db, redisClient))
	walletGroup.POST("/deposit", api.DepositHandler(trades, redisClient))
	walletGroup.POST("/withdraw", api.WithdrawHandler(trades, redisClient))

	// Trade routes; buy and sell additionally require verified KYC
	kycRequired := middleware.RequireKYCMiddleware(db)
	tradeGroup := r.Group("/api/trade", authRequired)
	tradeGroup.POST("/buy", kycRequired, api.BuyHandler(trades, redisClient))
	tradeGroup.POST("/sell", kycRequired, api.SellHandler(trades, redisClient))
	tradeGroup.GET("/holdings", api.GetHoldingsHandler(trades))
	tradeGroup.GET("/portfolio", api.GetPortfolioHandler(trades))

	// Price routes (public)
	priceGroup := r.Group("/api/prices")
	priceGroup.GET("/current", api.GetCurrentPricesHandler(prices))
	priceGroup.GET("/gold", api.GetMetalPriceHandler(prices, domain.MetalGold))
	priceGroup.GET("/silver", api.GetMetalPriceHandler(prices, domain.MetalSilver))
	priceGroup.GET("/history", api.GetPriceHistoryHandler(db, prices))

	// Transaction routes (protected by JWT)
	txGroup := r.Group("/api/transactions", authRequired)
	txGroup.GET("/history", api.GetHistoryHandler(db, redisClient))
	txGroup.GET("/stats", api.GetStatsHandler(db))
	txGroup.GET("/:id", api.GetTransactionByIDHandler(db))

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
