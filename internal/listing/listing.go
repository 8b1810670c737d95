package listing

import (
	"time"

	"github.com/frahmantamala/hardware-marketplace/internal/core/common/validation"
	listingDatamodel "github.com/frahmantamala/hardware-marketplace/internal/core/datamodel/listing"
)

const (
	StatusAvailable = "available"
	StatusClaimed   = "claimed"
	StatusApproved  = "approved"
	StatusShipped   = "shipped"
	StatusExpired   = "expired"
)

// Statuses are every state a listing can be in.
var Statuses = []string{StatusAvailable, StatusClaimed, StatusApproved, StatusShipped, StatusExpired}

// Listing is a piece of surplus hardware offered by a department.
type Listing struct {
	ID             int64     `json:"id"`
	SerialNumber   string    `json:"serialNumber"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	Condition      string    `json:"condition"`
	Department     string    `json:"department"`
	CPU            string    `json:"cpu"`
	RAM            string    `json:"ram"`
	Storage        string    `json:"storage"`
	Ports          string    `json:"ports"`
	OtherSpecs     string    `json:"otherSpecs"`
	Status         string    `json:"status"`
	ExpirationDate time.Time `json:"expirationDate"`
	CreatedBy      int64     `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Filter narrows ListListings. Empty fields do not filter.
type Filter struct {
	Category   string
	Status     string
	Department string
	Search     string
}

// UpdateFields holds the descriptive fields an owner may change.
type UpdateFields struct {
	Title          *string
	Description    *string
	Location       *string
	Condition      *string
	ExpirationDate *time.Time
}

func (f UpdateFields) IsEmpty() bool {
	return f.Title == nil && f.Description == nil && f.Location == nil &&
		f.Condition == nil && f.ExpirationDate == nil
}

func (l *Listing) IsAvailable() bool {
	return l.Status == StatusAvailable
}

// ExpiredAt reports whether the listing's expiration day is before now's day.
func (l *Listing) ExpiredAt(now time.Time) bool {
	return validation.StartOfDay(l.ExpirationDate).Before(validation.StartOfDay(now))
}

func IsValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (l *Listing) ToDataModel() *listingDatamodel.Listing {
	return &listingDatamodel.Listing{
		ID:             l.ID,
		SerialNumber:   l.SerialNumber,
		Title:          l.Title,
		Category:       l.Category,
		Description:    l.Description,
		Location:       l.Location,
		Condition:      l.Condition,
		Department:     l.Department,
		CPU:            l.CPU,
		RAM:            l.RAM,
		Storage:        l.Storage,
		Ports:          l.Ports,
		OtherSpecs:     l.OtherSpecs,
		Status:         l.Status,
		ExpirationDate: l.ExpirationDate,
		CreatedBy:      l.CreatedBy,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

func FromDataModel(m *listingDatamodel.Listing) *Listing {
	return &Listing{
		ID:             m.ID,
		SerialNumber:   m.SerialNumber,
		Title:          m.Title,
		Category:       m.Category,
		Description:    m.Description,
		Location:       m.Location,
		Condition:      m.Condition,
		Department:     m.Department,
		CPU:            m.CPU,
		RAM:            m.RAM,
		Storage:        m.Storage,
		Ports:          m.Ports,
		OtherSpecs:     m.OtherSpecs,
		Status:         m.Status,
		ExpirationDate: m.ExpirationDate,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
