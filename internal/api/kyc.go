package api

import (
	"fmt"            // Filename formatting
	"mime/multipart" // Uploaded file headers
	"net/http"       // HTTP status codes
	"os"             // Upload directory creation
	"path/filepath"  // Extension handling
	"strings"        // String manipulation
	"time"           // Filename uniqueness

	"metals_trading/internal/config"  // Upload configuration
	"metals_trading/internal/domain"  // Importing domain models
	"metals_trading/internal/service" // Email collaborator

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

const maxKYCFileSize = 5 << 20 // 5MB per document

// allowedKYCExt restricts uploads to images and PDFs
var allowedKYCExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

// VerifyKYCRequest carries a KYC review decision
type VerifyKYCRequest struct {
	UserID uint   `json:"userId" binding:"required"`
	Status string `json:"status" binding:"required"` // verified or rejected
}

// saveKYCFile validates and stores one uploaded document, returning its path
func saveKYCFile(c *gin.Context, file *multipart.FileHeader, dir string, userID uint) (string, error) {
	if file.Size > maxKYCFileSize {
		return "", fmt.Errorf("file %s exceeds the 5MB limit", file.Filename)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedKYCExt[ext] {
		return "", fmt.Errorf("only images and PDFs are allowed")
	}
	path := filepath.Join(dir, fmt.Sprintf("%d-%d%s", userID, time.Now().UnixNano(), ext))
	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", err
	}
	return path, nil
}

// SubmitKYCHandler accepts idProof and addressProof documents and moves the
// user's KYC status to submitted
func SubmitKYCHandler(db *gorm.DB, cfg *config.Config, emails *service.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uint)

		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		if user.KYCStatus == domain.KYCVerified {
			fail(c, http.StatusBadRequest, "KYC already verified")
			return
		}

		if err := os.MkdirAll(cfg.KYCUploadDir, 0o755); err != nil {
			fail(c, http.StatusInternalServerError, "Failed to submit KYC")
			return
		}

		var documents []domain.KYCDocument
		for _, docType := range []string{domain.DocIDProof, domain.DocAddressProof} {
			file, err := c.FormFile(docType)
			if err != nil {
				continue // Each document is optional on its own
			}
			path, err := saveKYCFile(c, file, cfg.KYCUploadDir, userID)
			if err != nil {
				fail(c, http.StatusBadRequest, err.Error())
				return
			}
			documents = append(documents, domain.KYCDocument{UserID: userID, DocType: docType, Path: path})
		}
		if len(documents) == 0 {
			fail(c, http.StatusBadRequest, "At least one document is required")
			return
		}

		// Replace any previously submitted documents
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("user_id = ?", userID).Delete(&domain.KYCDocument{}).Error; err != nil {
				return err
			}
			if err := tx.Create(&documents).Error; err != nil {
				return err
			}
			return tx.Model(&user).Update("kyc_status", domain.KYCSubmitted).Error
		})
		if err != nil {
			fail(c, http.StatusInternalServerError, "Failed to submit KYC")
			return
		}

		emails.SendKYCStatusEmail(c.Request.Context(), user.Email, user.FullName, domain.KYCSubmitted) // Best-effort

		success(c, http.StatusOK, "KYC documents submitted successfully", gin.H{
			"kycStatus": domain.KYCSubmitted,
			"documents": documents,
		})
	}
}

// GetKYCStatusHandler returns the authenticated user's KYC state
func GetKYCStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uint)

		var user domain.User
		if err := db.Preload("Documents").First(&user, userID).Error; err != nil {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		success(c, http.StatusOK, "KYC status retrieved successfully", gin.H{
			"kycStatus":          user.KYCStatus,
			"kycVerified":        user.KYCVerified,
			"documentsSubmitted": len(user.Documents) > 0,
		})
	}
}

// VerifyKYCHandler records a KYC review decision for a user
func VerifyKYCHandler(db *gorm.DB, emails *service.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyKYCRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "Invalid request")
			return
		}
		if req.Status != domain.KYCVerified && req.Status != domain.KYCRejected {
			fail(c, http.StatusBadRequest, "Invalid KYC status")
			return
		}

		var user domain.User
		if err := db.First(&user, req.UserID).Error; err != nil {
			fail(c, http.StatusNotFound, "User not found")
			return
		}

		user.KYCStatus = req.Status
		user.KYCVerified = req.Status == domain.KYCVerified
		if err := db.Model(&user).Updates(map[string]any{
			"kyc_status":   user.KYCStatus,
			"kyc_verified": user.KYCVerified,
		}).Error; err != nil {
			fail(c, http.StatusInternalServerError, "Failed to verify KYC")
			return
		}

		emails.SendKYCStatusEmail(c.Request.Context(), user.Email, user.FullName, req.Status) // Best-effort

		success(c, http.StatusOK, "KYC status updated successfully", gin.H{
			"userId":      user.ID,
			"kycStatus":   user.KYCStatus,
			"kycVerified": user.KYCVerified,
		})
	}
}
