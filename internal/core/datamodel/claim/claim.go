package claim

import "time"

type Claim struct {
	ID                   int64      `gorm:"primaryKey"`
	ListingID            int64      `gorm:"column:listing_id;not null;index"`
	RequestingDepartment string     `gorm:"column:requesting_department;not null"`
	Justification        string     `gorm:"column:justification;not null"`
	Status               string     `gorm:"column:status;default:pending_owner;index"`
	RequestedBy          int64      `gorm:"column:requested_by"`
	RequestedAt          time.Time  `gorm:"column:requested_at;autoCreateTime"`
	OwnerApprovedAt      *time.Time `gorm:"column:owner_approved_at"`
	OwnerApprovedBy      *int64     `gorm:"column:owner_approved_by"`
	SecurityApprovedAt   *time.Time `gorm:"column:security_approved_at"`
	SecurityApprovedBy   *int64     `gorm:"column:security_approved_by"`
	DeniedAt             *time.Time `gorm:"column:denied_at"`
	DeniedBy             *int64     `gorm:"column:denied_by"`
	DenialReason         *string    `gorm:"column:denial_reason"`
}

func (Claim) TableName() string {
	return "claims"
}

// ClaimWithListing is the read model for claim listings, joined with the
// parent listing's display columns.
type ClaimWithListing struct {
	Claim
	ListingTitle    string `gorm:"column:listing_title"`
	SerialNumber    string `gorm:"column:serial_number"`
	Category        string `gorm:"column:category"`
	OwnerDepartment string `gorm:"column:owner_department"`
	ListingStatus   string `gorm:"column:listing_status"`
}
