package domain

// KYC status values
const (
	KYCPending   = "pending"
	KYCSubmitted = "submitted"
	KYCVerified  = "verified"
	KYCRejected  = "rejected"
)

// User Model
type User struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	FullName    string        `gorm:"not null" json:"fullName"`
	Email       string        `gorm:"unique;not null" json:"email"`
	Password    string        `gorm:"not null" json:"-"` // Hashed password, never serialized
	PhoneNumber string        `json:"phoneNumber,omitempty"`
	KYCStatus   string        `gorm:"default:pending" json:"kycStatus"`
	KYCVerified bool          `gorm:"default:false" json:"kycVerified"`
	Documents   []KYCDocument `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // Uploaded KYC documents
	Wallet      Wallet        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	CreatedAt   int64         `gorm:"autoCreateTime:milli" json:"createdAt"`
	UpdatedAt   int64         `gorm:"autoUpdateTime:milli" json:"updatedAt"`
}

// KYC document types
const (
	DocIDProof      = "idProof"
	DocAddressProof = "addressProof"
	DocPANCard      = "panCard"
	DocOther        = "other"
)

// KYCDocument Model
type KYCDocument struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserID     uint   `gorm:"index;not null" json:"-"` // Foreign key to User
	DocType    string `gorm:"not null" json:"type"`    // idProof, addressProof, panCard, other
	Path       string `gorm:"not null" json:"url"`     // Stored file path
	UploadedAt int64  `gorm:"autoCreateTime:milli" json:"uploadedAt"`
}
