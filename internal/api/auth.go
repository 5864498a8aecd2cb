package api

import (
	"net/http" // HTTP status codes
	"regexp"   // Email validation
	"strings"  // String manipulation

	"metals_trading/internal/config"  // Configuration
	"metals_trading/internal/domain"  // Importing domain models
	"metals_trading/internal/service" // Email collaborator
	"metals_trading/internal/utils"   // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest is the registration payload
type RegisterRequest struct {
	FullName string `json:"fullName" binding:"required"` // Full name must be provided
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// UpdateProfileRequest carries the mutable profile fields
type UpdateProfileRequest struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// isValidEmail checks the email shape
func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// isValidPassword checks the minimum password length
func isValidPassword(password string) bool {
	return len(password) >= 6
}

// RegisterHandler creates a user with a zero-balance wallet and returns a JWT
func RegisterHandler(db *gorm.DB, cfg *config.Config, emails *service.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "Invalid request")
			return
		}
		if !isValidEmail(req.Email) {
			fail(c, http.StatusBadRequest, "Please provide a valid email")
			return
		}
		if !isValidPassword(req.Password) {
			fail(c, http.StatusBadRequest, "Password must be at least 6 characters")
			return
		}

		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			fail(c, http.StatusInternalServerError, "Registration failed")
			return
		}

		user := domain.User{
			FullName: strings.TrimSpace(req.FullName),
			Email:    strings.ToLower(req.Email),
			Password: string(hash),
		}
		// User and wallet are created together or not at all
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			return tx.Create(&domain.Wallet{UserID: user.ID, Balance: 0}).Error
		})
		if err != nil {
			fail(c, http.StatusBadRequest, "Email already registered")
			return
		}

		token, err := utils.GenerateJWT(user.ID, cfg.JWTSecret, cfg.JWTExpireHours)
		if err != nil {
			fail(c, http.StatusInternalServerError, "Failed to generate token")
			return
		}

		emails.SendWelcomeEmail(c.Request.Context(), user.Email, user.FullName) // Best-effort

		success(c, http.StatusCreated, "Registration successful", gin.H{
			"token": token,
			"user": gin.H{
				"id":          user.ID,
				"fullName":    user.FullName,
				"email":       user.Email,
				"kycVerified": user.KYCVerified,
			},
		})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "Invalid request")
			return
		}
		var user domain.User
		if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
			fail(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			fail(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		token, err := utils.GenerateJWT(user.ID, cfg.JWTSecret, cfg.JWTExpireHours)
		if err != nil {
			fail(c, http.StatusInternalServerError, "Failed to generate token")
			return
		}
		success(c, http.StatusOK, "Login successful", gin.H{
			"token": token,
			"user": gin.H{
				"id":          user.ID,
				"fullName":    user.FullName,
				"email":       user.Email,
				"kycVerified": user.KYCVerified,
				"kycStatus":   user.KYCStatus,
			},
		})
	}
}

// LogoutHandler exists for API symmetry, JWTs are stateless
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		success(c, http.StatusOK, "Logout successful", nil)
	}
}

// GetProfileHandler returns the authenticated user's profile
func GetProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID")
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		success(c, http.StatusOK, "Profile retrieved successfully", gin.H{"user": user})
	}
}

// UpdateProfileHandler updates the mutable profile fields
func UpdateProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID")
		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "Invalid request")
			return
		}
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		if req.FullName != "" {
			user.FullName = req.FullName
		}
		if req.PhoneNumber != "" {
			user.PhoneNumber = req.PhoneNumber
		}
		if err := db.Save(&user).Error; err != nil {
			fail(c, http.StatusInternalServerError, "Failed to update profile")
			return
		}
		success(c, http.StatusOK, "Profile updated successfully", gin.H{"user": user})
	}
}
