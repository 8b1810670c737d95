package listing

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/hardware-marketplace/internal"
	"github.com/frahmantamala/hardware-marketplace/internal/auth"
	"github.com/frahmantamala/hardware-marketplace/internal/core/common/validation"
	"github.com/frahmantamala/hardware-marketplace/internal/core/events"
	"github.com/frahmantamala/hardware-marketplace/internal/hardware"
	"github.com/frahmantamala/hardware-marketplace/internal/impact"
	"github.com/frahmantamala/hardware-marketplace/pkg/logger"
)

type RepositoryAPI interface {
	// Create inserts l and fills its ID and timestamps. A serial that is
	// already listed yields internal.ErrDuplicateSerial.
	Create(ctx context.Context, l *Listing) error
	GetByID(ctx context.Context, id int64) (*Listing, error)
	ExistsBySerial(ctx context.Context, serial string) (bool, error)
	List(ctx context.Context, f Filter) ([]*Listing, error)
	Update(ctx context.Context, id int64, fields UpdateFields) (*Listing, error)
	// CompareAndSetStatus moves the listing to next only when it is currently
	// in expected. It reports whether the row changed.
	CompareAndSetStatus(ctx context.Context, id int64, expected, next string) (bool, error)
	// DeleteIfRemovable deletes an available listing with no active claims.
	DeleteIfRemovable(ctx context.Context, id int64) (bool, error)
	// ListExpirable returns available listings whose expiration date is before cutoff.
	ListExpirable(ctx context.Context, cutoff time.Time) ([]*Listing, error)
}

type Service struct {
	repo         RepositoryAPI
	catalog      hardware.Catalog
	capabilities auth.CapabilityChecker
	events       events.Publisher
	logger       *slog.Logger
	now          func() time.Time
}

func NewService(repo RepositoryAPI, catalog hardware.Catalog, capabilities auth.CapabilityChecker, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:         repo,
		catalog:      catalog,
		capabilities: capabilities,
		events:       publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// SetClock replaces the service clock. Tests use it to pin "today".
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CreateListing validates the request, confirms the hardware exists in the
// tracking system, applies the storage media policy and stores the listing as
// available under the caller's department.
func (s *Service) CreateListing(ctx context.Context, dto CreateListingDTO, actor *auth.User) (*Listing, error) {
	lg := logger.From(ctx)
	if err := dto.Validate(s.now()); err != nil {
		lg.Warn("listing validation failed", "error", err)
		return nil, err
	}

	serial := hardware.NormalizeSerial(dto.SerialNumber)
	record, err := s.catalog.Lookup(ctx, serial)
	if err != nil {
		if errors.Is(err, hardware.ErrNotFound) {
			return nil, internal.ErrNotFoundInCatalog
		}
		lg.Error("hardware catalog lookup failed", "serial_number", serial, "error", err)
		return nil, hardware.MapLookupError(err)
	}

	if decision := hardware.CanList(record.Specs); !decision.Allowed {
		lg.Warn("listing blocked by storage media policy", "serial_number", serial, "media", decision.Media)
		return nil, internal.ErrStorageMedia.WithDetails(internal.PolicyDetails{
			Blocked: true,
			Reason:  decision.Reason,
			Media:   decision.Media,
		})
	}

	exists, err := s.repo.ExistsBySerial(ctx, serial)
	if err != nil {
		return nil, internal.NewInternalError("failed to check serial number", err)
	}
	if exists {
		return nil, internal.ErrDuplicateSerial
	}

	l := &Listing{
		SerialNumber:   serial,
		Title:          strings.TrimSpace(dto.Title),
		Category:       dto.Category,
		Description:    dto.Description,
		Location:       dto.Location,
		Condition:      dto.Condition,
		Department:     actor.Department,
		CPU:            firstNonEmpty(dto.CPU, record.Specs.CPU),
		RAM:            firstNonEmpty(dto.RAM, record.Specs.RAM),
		Storage:        dto.Storage,
		Ports:          firstNonEmpty(dto.Ports, record.Specs.Ports),
		OtherSpecs:     firstNonEmpty(dto.OtherSpecs, record.Specs.Other),
		Status:         StatusAvailable,
		ExpirationDate: dto.Expiration(),
		CreatedBy:      actor.ID,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		if errors.Is(err, internal.ErrDuplicateSerial) {
			return nil, internal.ErrDuplicateSerial
		}
		lg.Error("failed to create listing", "serial_number", serial, "error", err)
		return nil, internal.NewInternalError("failed to create listing", err)
	}

	lg.Info("listing created", "listing_id", l.ID, "serial_number", l.SerialNumber, "department", l.Department)
	s.publish(ctx, events.EventTypeListingCreated, l)
	return l, nil
}

func (s *Service) ListListings(ctx context.Context, f Filter) ([]*Listing, error) {
	listings, err := s.repo.List(ctx, f)
	if err != nil {
		logger.From(ctx).Error("failed to list listings", "error", err)
		return nil, internal.NewInternalError("failed to fetch listings", err)
	}
	if listings == nil {
		listings = []*Listing{}
	}
	return listings, nil
}

func (s *Service) GetListing(ctx context.Context, id int64) (*ListingDetail, error) {
	l, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ListingDetail{Listing: l, Impact: impact.ForCategory(l.Category)}, nil
}

// UpdateListing lets the owning department edit descriptive fields.
func (s *Service) UpdateListing(ctx context.Context, id int64, dto UpdateListingDTO, actor *auth.User) (*Listing, error) {
	fields, err := dto.ToFields(s.now())
	if err != nil {
		return nil, err
	}
	l, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.capabilities.SameDepartment(l.Department, actor.Department) {
		return nil, internal.ErrNotListingOwner
	}
	updated, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, internal.ErrListingNotFound) {
			return nil, internal.ErrListingNotFound
		}
		return nil, internal.NewInternalError("failed to update listing", err)
	}
	logger.From(ctx).Info("listing updated", "listing_id", id)
	return updated, nil
}

// DeleteListing removes a listing. Only the owning department may do so and
// only while the listing is available with no claim in flight.
func (s *Service) DeleteListing(ctx context.Context, id int64, actor *auth.User) error {
	l, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !s.capabilities.SameDepartment(l.Department, actor.Department) {
		return internal.ErrNotListingOwner
	}
	if !l.IsAvailable() {
		return internal.ErrListingNotRemovable
	}
	deleted, err := s.repo.DeleteIfRemovable(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to delete listing", err)
	}
	if !deleted {
		return internal.ErrListingNotRemovable
	}
	logger.From(ctx).Info("listing deleted", "listing_id", id)
	return nil
}

// UpdateStatus moves a listing from expected to next atomically. It returns
// ErrListingUnavailable when the listing was no longer in expected.
func (s *Service) UpdateStatus(ctx context.Context, id int64, expected, next string) error {
	if !IsValidStatus(next) {
		return internal.NewValidationFieldError("status", "unknown status "+next, internal.ErrCodeInvalidStatus)
	}
	ok, err := s.repo.CompareAndSetStatus(ctx, id, expected, next)
	if err != nil {
		return internal.NewInternalError("failed to update listing status", err)
	}
	if !ok {
		if _, err := s.get(ctx, id); err != nil {
			return err
		}
		return internal.ErrListingUnavailable
	}
	return nil
}

// ExpireListings marks every available listing past its expiration day as
// expired and returns how many changed.
func (s *Service) ExpireListings(ctx context.Context) (int, error) {
	now := s.now()
	candidates, err := s.repo.ListExpirable(ctx, validation.StartOfDay(now))
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, l := range candidates {
		if !l.ExpiredAt(now) {
			continue
		}
		ok, err := s.repo.CompareAndSetStatus(ctx, l.ID, StatusAvailable, StatusExpired)
		if err != nil {
			return expired, err
		}
		if !ok {
			// claimed between the read and the update
			continue
		}
		l.Status = StatusExpired
		expired++
		s.publish(ctx, events.EventTypeListingExpired, l)
	}
	return expired, nil
}

func (s *Service) get(ctx context.Context, id int64) (*Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrListingNotFound) {
			return nil, internal.ErrListingNotFound
		}
		logger.From(ctx).Error("failed to fetch listing", "listing_id", id, "error", err)
		return nil, internal.NewInternalError("failed to fetch listing", err)
	}
	return l, nil
}

func (s *Service) publish(ctx context.Context, eventType string, l *Listing) {
	evt := events.NewListingEvent(eventType, l.ID, l.SerialNumber, l.Title, l.Category, l.Department, l.Status)
	if err := s.events.Publish(internal.Detached(ctx), evt); err != nil {
		s.logger.Warn("failed to publish listing event", "event_type", eventType, "listing_id", l.ID, "error", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
