package notification

import (
	"fmt"

	"github.com/frahmantamala/hardware-marketplace/internal/core/events"
)

// SecurityTeam is the recipient for anything waiting on security approval.
const SecurityTeam = "Security Team"

// Notification tells one department about a marketplace change.
type Notification struct {
	EventID    string `json:"eventId"`
	EventType  string `json:"eventType"`
	Department string `json:"department"`
	Subject    string `json:"subject"`
	Message    string `json:"message"`
	ListingID  int64  `json:"listingId"`
	ClaimID    int64  `json:"claimId,omitempty"`
}

// Build turns an event into the notifications it implies: who has to act
// next and who needs to know.
func Build(e events.Event) []Notification {
	switch evt := e.(type) {
	case *events.ClaimEvent:
		return forClaim(evt)
	case *events.ListingEvent:
		return forListing(evt)
	}
	return nil
}

func forClaim(e *events.ClaimEvent) []Notification {
	n := func(dept, subject, msg string) Notification {
		return Notification{
			EventID:    e.EventID(),
			EventType:  e.EventType(),
			Department: dept,
			Subject:    subject,
			Message:    msg,
			ListingID:  e.ListingID,
			ClaimID:    e.ClaimID,
		}
	}

	switch e.EventType() {
	case events.EventTypeClaimFiled:
		return []Notification{
			n(e.OwnerDepartment, "New claim on your listing",
				fmt.Sprintf("%s requested listing #%d. Approve or deny the claim.", e.RequestingDepartment, e.ListingID)),
		}
	case events.EventTypeClaimOwnerApproved:
		return []Notification{
			n(SecurityTeam, "Claim awaiting security approval",
				fmt.Sprintf("Claim #%d by %s was approved by %s and needs security review.", e.ClaimID, e.RequestingDepartment, e.OwnerDepartment)),
			n(e.RequestingDepartment, "Owner approved your claim",
				fmt.Sprintf("Claim #%d is now waiting for security approval.", e.ClaimID)),
		}
	case events.EventTypeClaimSecurityApproved:
		return []Notification{
			n(e.RequestingDepartment, "Claim approved",
				fmt.Sprintf("Claim #%d was approved. %s will arrange the transfer.", e.ClaimID, e.OwnerDepartment)),
			n(e.OwnerDepartment, "Ship approved hardware",
				fmt.Sprintf("Claim #%d by %s passed security review. Mark listing #%d shipped once handed over.", e.ClaimID, e.RequestingDepartment, e.ListingID)),
		}
	case events.EventTypeClaimDenied:
		return []Notification{
			n(e.RequestingDepartment, "Claim denied",
				fmt.Sprintf("Claim #%d was denied: %s", e.ClaimID, e.Reason)),
		}
	case events.EventTypeClaimCancelled:
		return []Notification{
			n(e.OwnerDepartment, "Claim withdrawn",
				fmt.Sprintf("%s withdrew claim #%d. Listing #%d is available again.", e.RequestingDepartment, e.ClaimID, e.ListingID)),
		}
	}
	return nil
}

func forListing(e *events.ListingEvent) []Notification {
	n := func(subject, msg string) Notification {
		return Notification{
			EventID:    e.EventID(),
			EventType:  e.EventType(),
			Department: e.Department,
			Subject:    subject,
			Message:    msg,
			ListingID:  e.ListingID,
		}
	}

	switch e.EventType() {
	case events.EventTypeListingCreated:
		return []Notification{n("Listing published", fmt.Sprintf("%q (%s) is now visible to other departments.", e.Title, e.SerialNumber))}
	case events.EventTypeListingExpired:
		return []Notification{n("Listing expired", fmt.Sprintf("%q (%s) passed its expiration date without being claimed.", e.Title, e.SerialNumber))}
	case events.EventTypeListingShipped:
		return []Notification{n("Listing shipped", fmt.Sprintf("%q (%s) was marked as shipped.", e.Title, e.SerialNumber))}
	}
	return nil
}

// EventTypes are the events the dispatcher subscribes to.
func EventTypes() []string {
	return append([]string{
		events.EventTypeListingCreated,
		events.EventTypeListingExpired,
		events.EventTypeListingShipped,
	}, events.ClaimEventTypes...)
}
