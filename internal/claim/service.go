package claim

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/hardware-marketplace/internal"
	"github.com/frahmantamala/hardware-marketplace/internal/auth"
	"github.com/frahmantamala/hardware-marketplace/internal/core/events"
	"github.com/frahmantamala/hardware-marketplace/internal/listing"
	"github.com/frahmantamala/hardware-marketplace/pkg/logger"
)

// RepositoryAPI is the claim store. Every workflow step runs inside WithTx so
// its check and its writes commit together.
type RepositoryAPI interface {
	WithTx(ctx context.Context, fn func(tx RepositoryAPI) error) error

	GetListing(ctx context.Context, listingID int64) (*listing.Listing, error)
	HasActiveClaim(ctx context.Context, listingID int64, department string) (bool, error)
	Insert(ctx context.Context, c *Claim) error
	// GetByID returns the claim joined with its listing.
	GetByID(ctx context.Context, id int64) (*Claim, error)
	List(ctx context.Context, f Filter) ([]*Claim, error)
	// ApplyTransition moves the claim to t.To only while it is still in t.From.
	ApplyTransition(ctx context.Context, claimID int64, t Transition) (bool, error)
	// SetListingStatus moves the listing to next only while it is in expected.
	SetListingStatus(ctx context.Context, listingID int64, expected, next string) (bool, error)
}

type Service struct {
	repo         RepositoryAPI
	capabilities auth.CapabilityChecker
	events       events.Publisher
	logger       *slog.Logger
	now          func() time.Time
}

func NewService(repo RepositoryAPI, capabilities auth.CapabilityChecker, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:         repo,
		capabilities: capabilities,
		events:       publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// FileClaim requests an available listing for the caller's department. The
// listing flips to claimed in the same transaction as the insert; when two
// departments race, the first commit wins and the rest see ListingUnavailable.
func (s *Service) FileClaim(ctx context.Context, dto FileClaimDTO, actor *auth.User) (*Claim, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c := &Claim{
		ListingID:            dto.ListingID,
		RequestingDepartment: actor.Department,
		Justification:        dto.Justification,
		Status:               StatusPendingOwner,
		RequestedBy:          actor.ID,
		RequestedAt:          s.now(),
	}

	err := s.repo.WithTx(ctx, func(tx RepositoryAPI) error {
		l, err := tx.GetListing(ctx, dto.ListingID)
		if err != nil {
			return err
		}
		if !l.IsAvailable() {
			return internal.ErrListingUnavailable
		}
		dup, err := tx.HasActiveClaim(ctx, l.ID, actor.Department)
		if err != nil {
			return err
		}
		if dup {
			return internal.ErrDuplicateDeptClaim
		}
		ok, err := tx.SetListingStatus(ctx, l.ID, listing.StatusAvailable, listing.StatusClaimed)
		if err != nil {
			return err
		}
		if !ok {
			return internal.ErrListingUnavailable
		}
		return tx.Insert(ctx, c)
	})
	if err != nil {
		return nil, s.mapError(ctx, "file claim", err)
	}

	logger.From(ctx).Info("claim filed", "claim_id", c.ID, "listing_id", c.ListingID, "department", c.RequestingDepartment)
	return s.reloadAndPublish(ctx, c.ID, events.EventTypeClaimFiled, actor.ID)
}

// ApproveAsOwner is the owning department's sign-off.
func (s *Service) ApproveAsOwner(ctx context.Context, claimID int64, actor *auth.User) (*Claim, error) {
	err := s.repo.WithTx(ctx, func(tx RepositoryAPI) error {
		c, err := tx.GetByID(ctx, claimID)
		if err != nil {
			return err
		}
		if c.Status != StatusPendingOwner {
			return internal.ErrInvalidTransition
		}
		if !s.capabilities.SameDepartment(c.OwnerDepartment, actor.Department) {
			return internal.ErrNotListingOwner
		}
		return s.transition(ctx, tx, c, StatusPendingSecurity, actor, "")
	})
	if err != nil {
		return nil, s.mapError(ctx, "owner approval", err)
	}
	logger.From(ctx).Info("claim approved by owner", "claim_id", claimID)
	return s.reloadAndPublish(ctx, claimID, events.EventTypeClaimOwnerApproved, actor.ID)
}

// ApproveAsSecurity is the final gate; the listing becomes approved with it.
func (s *Service) ApproveAsSecurity(ctx context.Context, claimID int64, actor *auth.User) (*Claim, error) {
	err := s.repo.WithTx(ctx, func(tx RepositoryAPI) error {
		c, err := tx.GetByID(ctx, claimID)
		if err != nil {
			return err
		}
		if c.Status != StatusPendingSecurity {
			return internal.ErrInvalidTransition
		}
		if !s.capabilities.IsSecurityTeam(actor.Department) {
			return internal.ErrNotSecurityTeam
		}
		if err := s.transition(ctx, tx, c, StatusApproved, actor, ""); err != nil {
			return err
		}
		return s.moveListing(ctx, tx, c.ListingID, listing.StatusClaimed, listing.StatusApproved)
	})
	if err != nil {
		return nil, s.mapError(ctx, "security approval", err)
	}
	logger.From(ctx).Info("claim approved by security", "claim_id", claimID)
	return s.reloadAndPublish(ctx, claimID, events.EventTypeClaimSecurityApproved, actor.ID)
}

// Deny rejects a pending claim and frees the listing. The owner decides at
// the first gate and the security team at the second.
func (s *Service) Deny(ctx context.Context, claimID int64, dto DenyClaimDTO, actor *auth.User) (*Claim, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	err := s.repo.WithTx(ctx, func(tx RepositoryAPI) error {
		c, err := tx.GetByID(ctx, claimID)
		if err != nil {
			return err
		}
		switch c.Status {
		case StatusPendingOwner:
			if !s.capabilities.SameDepartment(c.OwnerDepartment, actor.Department) {
				return internal.ErrNotListingOwner
			}
		case StatusPendingSecurity:
			if !s.capabilities.IsSecurityTeam(actor.Department) {
				return internal.ErrNotSecurityTeam
			}
		default:
			return internal.ErrInvalidTransition
		}
		if err := s.transition(ctx, tx, c, StatusDenied, actor, dto.Reason); err != nil {
			return err
		}
		return s.moveListing(ctx, tx, c.ListingID, listing.StatusClaimed, listing.StatusAvailable)
	})
	if err != nil {
		return nil, s.mapError(ctx, "deny claim", err)
	}
	logger.From(ctx).Info("claim denied", "claim_id", claimID)
	return s.reloadAndPublish(ctx, claimID, events.EventTypeClaimDenied, actor.ID)
}

// Cancel lets the requesting department withdraw a claim the owner has not
// acted on yet. It is recorded as a denial with a fixed reason.
func (s *Service) Cancel(ctx context.Context, claimID int64, actor *auth.User) (*Claim, error) {
	err := s.repo.WithTx(ctx, func(tx RepositoryAPI) error {
		c, err := tx.GetByID(ctx, claimID)
		if err != nil {
			return err
		}
		if c.Status != StatusPendingOwner {
			return internal.ErrInvalidTransition
		}
		if !s.capabilities.SameDepartment(c.RequestingDepartment, actor.Department) {
			return internal.ErrNotClaimant
		}
		if err := s.transition(ctx, tx, c, StatusDenied, actor, WithdrawnReason); err != nil {
			return err
		}
		return s.moveListing(ctx, tx, c.ListingID, listing.StatusClaimed, listing.StatusAvailable)
	})
	if err != nil {
		return nil, s.mapError(ctx, "cancel claim", err)
	}
	logger.From(ctx).Info("claim withdrawn", "claim_id", claimID)
	return s.reloadAndPublish(ctx, claimID, events.EventTypeClaimCancelled, actor.ID)
}

// MarkShipped records that the owner handed approved hardware over.
func (s *Service) MarkShipped(ctx context.Context, claimID int64, actor *auth.User) (*Claim, error) {
	err := s.repo.WithTx(ctx, func(tx RepositoryAPI) error {
		c, err := tx.GetByID(ctx, claimID)
		if err != nil {
			return err
		}
		if c.Status != StatusApproved {
			return internal.ErrInvalidTransition
		}
		if !s.capabilities.SameDepartment(c.OwnerDepartment, actor.Department) {
			return internal.ErrNotListingOwner
		}
		ok, err := tx.SetListingStatus(ctx, c.ListingID, listing.StatusApproved, listing.StatusShipped)
		if err != nil {
			return err
		}
		if !ok {
			return internal.ErrListingNotShippable
		}
		return nil
	})
	if err != nil {
		return nil, s.mapError(ctx, "ship listing", err)
	}
	logger.From(ctx).Info("listing shipped", "claim_id", claimID)

	c, err := s.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	evt := events.NewListingEvent(events.EventTypeListingShipped, c.ListingID, c.SerialNumber, c.ListingTitle, c.Category, c.OwnerDepartment, c.ListingStatus)
	if err := s.events.Publish(internal.Detached(ctx), evt); err != nil {
		s.logger.Warn("failed to publish listing event", "listing_id", c.ListingID, "error", err)
	}
	return c, nil
}

func (s *Service) GetClaim(ctx context.Context, id int64) (*Claim, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(ctx, "fetch claim", err)
	}
	return c, nil
}

func (s *Service) ListClaims(ctx context.Context, f Filter) ([]*Claim, error) {
	claims, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, s.mapError(ctx, "list claims", err)
	}
	if claims == nil {
		claims = []*Claim{}
	}
	return claims, nil
}

func (s *Service) transition(ctx context.Context, tx RepositoryAPI, c *Claim, to string, actor *auth.User, reason string) error {
	if !CanTransition(c.Status, to) {
		return internal.ErrInvalidTransition
	}
	ok, err := tx.ApplyTransition(ctx, c.ID, Transition{
		From:    c.Status,
		To:      to,
		ActorID: actor.ID,
		At:      s.now(),
		Reason:  reason,
	})
	if err != nil {
		return err
	}
	if !ok {
		// another decision landed first
		return internal.ErrInvalidTransition
	}
	return nil
}

func (s *Service) moveListing(ctx context.Context, tx RepositoryAPI, listingID int64, expected, next string) error {
	ok, err := tx.SetListingStatus(ctx, listingID, expected, next)
	if err != nil {
		return err
	}
	if !ok {
		logger.From(ctx).Error("listing out of step with its claim", "listing_id", listingID, "expected", expected, "next", next)
		return internal.ErrInvalidTransition
	}
	return nil
}

func (s *Service) reloadAndPublish(ctx context.Context, claimID int64, eventType string, actorID int64) (*Claim, error) {
	c, err := s.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	evt := events.NewClaimEvent(eventType, c.ID, c.ListingID, c.RequestingDepartment, c.OwnerDepartment, actorID, c.Status, c.DenialReason)
	if err := s.events.Publish(internal.Detached(ctx), evt); err != nil {
		s.logger.Warn("failed to publish claim event", "event_type", eventType, "claim_id", c.ID, "error", err)
	}
	return c, nil
}

// mapError passes AppErrors through and wraps anything else as internal.
func (s *Service) mapError(ctx context.Context, op string, err error) error {
	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	logger.From(ctx).Error("claim operation failed", "operation", op, "error", err)
	return internal.NewInternalError("failed to "+op, err)
}
