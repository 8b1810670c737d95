package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeListingCreated = "listing.created"
	EventTypeListingExpired = "listing.expired"
	EventTypeListingShipped = "listing.shipped"

	EventTypeClaimFiled            = "claim.filed"
	EventTypeClaimOwnerApproved    = "claim.owner_approved"
	EventTypeClaimSecurityApproved = "claim.security_approved"
	EventTypeClaimDenied           = "claim.denied"
	EventTypeClaimCancelled        = "claim.cancelled"
)

// ClaimEventTypes lists every claim transition event, in workflow order.
var ClaimEventTypes = []string{
	EventTypeClaimFiled,
	EventTypeClaimOwnerApproved,
	EventTypeClaimSecurityApproved,
	EventTypeClaimDenied,
	EventTypeClaimCancelled,
}

type ListingEvent struct {
	BaseEvent
	ListingID    int64  `json:"listing_id"`
	SerialNumber string `json:"serial_number"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	Department   string `json:"department"`
	Status       string `json:"status"`
}

func NewListingEvent(eventType string, listingID int64, serial, title, category, department, status string) *ListingEvent {
	return &ListingEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"listing_id":    listingID,
				"serial_number": serial,
				"title":         title,
				"category":      category,
				"department":    department,
				"status":        status,
			},
		},
		ListingID:    listingID,
		SerialNumber: serial,
		Title:        title,
		Category:     category,
		Department:   department,
		Status:       status,
	}
}

type ClaimEvent struct {
	BaseEvent
	ClaimID              int64  `json:"claim_id"`
	ListingID            int64  `json:"listing_id"`
	RequestingDepartment string `json:"requesting_department"`
	OwnerDepartment      string `json:"owner_department"`
	ActorID              int64  `json:"actor_id"`
	Status               string `json:"status"`
	Reason               string `json:"reason,omitempty"`
}

func NewClaimEvent(eventType string, claimID, listingID int64, requestingDept, ownerDept string, actorID int64, status, reason string) *ClaimEvent {
	return &ClaimEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"claim_id":              claimID,
				"listing_id":            listingID,
				"requesting_department": requestingDept,
				"owner_department":      ownerDept,
				"actor_id":              actorID,
				"status":                status,
				"reason":                reason,
			},
		},
		ClaimID:              claimID,
		ListingID:            listingID,
		RequestingDepartment: requestingDept,
		OwnerDepartment:      ownerDept,
		ActorID:              actorID,
		Status:               status,
		Reason:               reason,
	}
}
