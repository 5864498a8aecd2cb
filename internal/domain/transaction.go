package domain

// Transaction types
const (
	TxDeposit    = "deposit"
	TxWithdrawal = "withdrawal"
	TxBuyGold    = "buy_gold"
	TxBuySilver  = "buy_silver"
	TxSellGold   = "sell_gold"
	TxSellSilver = "sell_silver"
)

// Transaction statuses
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Transaction Model, append-only audit trail: rows are created once and never updated
type Transaction struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	UserID        uint    `gorm:"index;not null" json:"userId"`         // Foreign key to User
	Type          string  `gorm:"not null" json:"type"`                 // deposit, withdrawal, buy_<metal>, sell_<metal>
	MetalType     *string `json:"metalType"`                            // Nil for wallet-only operations
	WeightInGrams float64 `json:"weightInGrams"`                        // Zero for wallet-only operations
	PricePerGram  float64 `json:"pricePerGram"`                         // Zero for wallet-only operations
	TotalAmount   float64 `gorm:"not null" json:"totalAmount"`          // Settled amount in rupees
	Status        string  `gorm:"default:completed" json:"status"`      // completed, pending, failed, cancelled
	Description   string  `json:"description,omitempty"`                // Optional human-readable note
	ReferenceID   string  `json:"referenceId,omitempty"`                // Optional external reference
	CreatedAt     int64   `gorm:"autoCreateTime:milli" json:"timestamp"`
}
