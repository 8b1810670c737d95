package listing

import "time"

type Listing struct {
	ID             int64     `gorm:"primaryKey"`
	SerialNumber   string    `gorm:"column:serial_number;uniqueIndex;not null"`
	Title          string    `gorm:"column:title;not null"`
	Category       string    `gorm:"column:category;not null;index"`
	Description    string    `gorm:"column:description"`
	Location       string    `gorm:"column:location"`
	Condition      string    `gorm:"column:condition"`
	Department     string    `gorm:"column:department;not null;index"`
	CPU            string    `gorm:"column:cpu"`
	RAM            string    `gorm:"column:ram"`
	Storage        string    `gorm:"column:storage"`
	Ports          string    `gorm:"column:ports"`
	OtherSpecs     string    `gorm:"column:other_specs"`
	Status         string    `gorm:"column:status;default:available;index"`
	ExpirationDate time.Time `gorm:"column:expiration_date;type:date;not null;index"`
	CreatedBy      int64     `gorm:"column:created_by"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Listing) TableName() string {
	return "listings"
}
