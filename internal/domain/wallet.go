package domain

// Wallet Model
type Wallet struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	UserID   uint    `gorm:"uniqueIndex" json:"userId"`            // Foreign key to User, one wallet per user
	Balance  float64 `gorm:"not null;default:0" json:"balance"`    // Wallet balance, never negative after a committed operation
	Currency string  `gorm:"not null;default:INR" json:"currency"` // Wallet currency
}
