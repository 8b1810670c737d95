package claim

import (
	"time"

	claimDatamodel "github.com/frahmantamala/hardware-marketplace/internal/core/datamodel/claim"
)

const (
	StatusPendingOwner    = "pending_owner"
	StatusPendingSecurity = "pending_security"
	StatusApproved        = "approved"
	StatusDenied          = "denied"
)

var Statuses = []string{StatusPendingOwner, StatusPendingSecurity, StatusApproved, StatusDenied}

// WithdrawnReason is recorded when the requesting department cancels.
const WithdrawnReason = "Withdrawn by requesting department"

// transitions is the claim state machine. approved and denied are terminal.
var transitions = map[string][]string{
	StatusPendingOwner:    {StatusPendingSecurity, StatusDenied},
	StatusPendingSecurity: {StatusApproved, StatusDenied},
}

// CanTransition reports whether a claim may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsActive is true for every status except denied.
func IsActive(status string) bool {
	return status != StatusDenied
}

func IsValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Claim is one department's request to take over a listing. The listing
// fields are filled on reads for display.
type Claim struct {
	ID                   int64      `json:"id"`
	ListingID            int64      `json:"listingId"`
	RequestingDepartment string     `json:"requestingDepartment"`
	Justification        string     `json:"justification"`
	Status               string     `json:"status"`
	RequestedBy          int64      `json:"requestedBy"`
	RequestedAt          time.Time  `json:"requestedAt"`
	OwnerApprovedAt      *time.Time `json:"ownerApprovedAt,omitempty"`
	OwnerApprovedBy      *int64     `json:"ownerApprovedBy,omitempty"`
	SecurityApprovedAt   *time.Time `json:"securityApprovedAt,omitempty"`
	SecurityApprovedBy   *int64     `json:"securityApprovedBy,omitempty"`
	DeniedAt             *time.Time `json:"deniedAt,omitempty"`
	DeniedBy             *int64     `json:"deniedBy,omitempty"`
	DenialReason         string     `json:"denialReason,omitempty"`

	ListingTitle    string `json:"listingTitle,omitempty"`
	SerialNumber    string `json:"serialNumber,omitempty"`
	Category        string `json:"category,omitempty"`
	OwnerDepartment string `json:"ownerDepartment,omitempty"`
	ListingStatus   string `json:"listingStatus,omitempty"`
}

// Transition is one step through the state machine and who took it.
type Transition struct {
	From    string
	To      string
	ActorID int64
	At      time.Time
	Reason  string
}

// Filter narrows ListClaims. Empty fields do not filter.
type Filter struct {
	ListingID       int64
	Status          string
	Department      string
	OwnerDepartment string
	RequestedBy     int64
}

func (c *Claim) ToDataModel() *claimDatamodel.Claim {
	m := &claimDatamodel.Claim{
		ID:                   c.ID,
		ListingID:            c.ListingID,
		RequestingDepartment: c.RequestingDepartment,
		Justification:        c.Justification,
		Status:               c.Status,
		RequestedBy:          c.RequestedBy,
		RequestedAt:          c.RequestedAt,
		OwnerApprovedAt:      c.OwnerApprovedAt,
		OwnerApprovedBy:      c.OwnerApprovedBy,
		SecurityApprovedAt:   c.SecurityApprovedAt,
		SecurityApprovedBy:   c.SecurityApprovedBy,
		DeniedAt:             c.DeniedAt,
		DeniedBy:             c.DeniedBy,
	}
	if c.DenialReason != "" {
		reason := c.DenialReason
		m.DenialReason = &reason
	}
	return m
}

func FromDataModel(m *claimDatamodel.Claim) *Claim {
	c := &Claim{
		ID:                   m.ID,
		ListingID:            m.ListingID,
		RequestingDepartment: m.RequestingDepartment,
		Justification:        m.Justification,
		Status:               m.Status,
		RequestedBy:          m.RequestedBy,
		RequestedAt:          m.RequestedAt,
		OwnerApprovedAt:      m.OwnerApprovedAt,
		OwnerApprovedBy:      m.OwnerApprovedBy,
		SecurityApprovedAt:   m.SecurityApprovedAt,
		SecurityApprovedBy:   m.SecurityApprovedBy,
		DeniedAt:             m.DeniedAt,
		DeniedBy:             m.DeniedBy,
	}
	if m.DenialReason != nil {
		c.DenialReason = *m.DenialReason
	}
	return c
}

func FromJoinedDataModel(m *claimDatamodel.ClaimWithListing) *Claim {
	c := FromDataModel(&m.Claim)
	c.ListingTitle = m.ListingTitle
	c.SerialNumber = m.SerialNumber
	c.Category = m.Category
	c.OwnerDepartment = m.OwnerDepartment
	c.ListingStatus = m.ListingStatus
	return c
}
