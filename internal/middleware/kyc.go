package middleware

import (
	"net/http" // HTTP status codes

	"metals_trading/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// RequireKYCMiddleware checks the user's KYC verification state from the
// database on each request; trading routes reject unverified users
func RequireKYCMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "KYC verification required"})
			return
		}
		if !user.KYCVerified {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "KYC verification required"})
			return
		}
		c.Next()
	}
}
