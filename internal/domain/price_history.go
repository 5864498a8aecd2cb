package domain

// PriceHistory Model, one persisted quote sample per metal per tick
type PriceHistory struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	MetalType     string  `gorm:"index:idx_metal_ts;not null" json:"metalType"`
	Purity        string  `gorm:"not null" json:"purity"`
	PricePerGram  float64 `gorm:"not null" json:"pricePerGram"`
	ChangePercent float64 `gorm:"default:0" json:"changePercent"`
	Timestamp     int64   `gorm:"index:idx_metal_ts;autoCreateTime:milli" json:"timestamp"`
}
