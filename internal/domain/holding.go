package domain

// Metal types
const (
	MetalGold   = "gold"
	MetalSilver = "silver"
)

// PurityFor returns the fixed purity grade for a metal type
func PurityFor(metalType string) string {
	if metalType == MetalGold {
		return "24k"
	}
	return "999"
}

// Holding Model, at most one row per (user, metal type)
type Holding struct {
	ID                   uint    `gorm:"primaryKey" json:"id"`
	UserID               uint    `gorm:"index:idx_user_metal,unique;not null" json:"userId"`
	MetalType            string  `gorm:"index:idx_user_metal,unique;not null" json:"metalType"` // gold or silver
	Purity               string  `gorm:"not null" json:"purity"`
	WeightInGrams        float64 `gorm:"not null" json:"weightInGrams"`
	AveragePurchasePrice float64 `gorm:"not null" json:"averagePurchasePrice"` // Weighted-average cost basis per gram
	TotalInvestedAmount  float64 `gorm:"not null" json:"totalInvestedAmount"`
	CreatedAt            int64   `gorm:"autoCreateTime:milli" json:"createdAt"`
	UpdatedAt            int64   `gorm:"autoUpdateTime:milli" json:"updatedAt"`
}
