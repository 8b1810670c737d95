package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/hardware-marketplace/internal"
	"github.com/frahmantamala/hardware-marketplace/internal/claim"
	claimDatamodel "github.com/frahmantamala/hardware-marketplace/internal/core/datamodel/claim"
	listingDatamodel "github.com/frahmantamala/hardware-marketplace/internal/core/datamodel/listing"
	"github.com/frahmantamala/hardware-marketplace/internal/listing"
	listingPostgres "github.com/frahmantamala/hardware-marketplace/internal/listing/postgres"
	"gorm.io/gorm"
)

const joinedColumns = `claims.*, listings.title AS listing_title, listings.serial_number AS serial_number,
	listings.category AS category, listings.department AS owner_department, listings.status AS listing_status`

// ClaimRepository stores claims with GORM. A repository created by WithTx is
// bound to that transaction.
type ClaimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

func (r *ClaimRepository) WithTx(ctx context.Context, fn func(tx claim.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ClaimRepository{db: tx})
	})
}

func (r *ClaimRepository) GetListing(ctx context.Context, listingID int64) (*listing.Listing, error) {
	var m listingDatamodel.Listing
	if err := r.db.WithContext(ctx).Where("id = ?", listingID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to load listing %d: %w", listingID, err)
	}
	return listing.FromDataModel(&m), nil
}

// HasActiveClaim reports whether department already has a non-denied claim on
// the listing. Department names compare case-insensitively.
func (r *ClaimRepository) HasActiveClaim(ctx context.Context, listingID int64, department string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&claimDatamodel.Claim{}).
		Where("listing_id = ? AND requesting_department = ? AND status <> ?", listingID, department, claim.StatusDenied).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count active claims: %w", err)
	}
	return count > 0, nil
}

func (r *ClaimRepository) Insert(ctx context.Context, c *claim.Claim) error {
	m := c.ToDataModel()
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to insert claim: %w", err)
	}
	c.ID = m.ID
	c.RequestedAt = m.RequestedAt
	return nil
}

func (r *ClaimRepository) GetByID(ctx context.Context, id int64) (*claim.Claim, error) {
	var rows []claimDatamodel.ClaimWithListing
	err := r.joined(ctx).Where("claims.id = ?", id).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load claim %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, internal.ErrClaimNotFound
	}
	return claim.FromJoinedDataModel(&rows[0]), nil
}

// List returns claims newest first.
func (r *ClaimRepository) List(ctx context.Context, f claim.Filter) ([]*claim.Claim, error) {
	q := r.joined(ctx)
	if f.ListingID > 0 {
		q = q.Where("claims.listing_id = ?", f.ListingID)
	}
	if f.Status != "" {
		q = q.Where("claims.status = ?", f.Status)
	}
	if f.Department != "" {
		q = q.Where("claims.requesting_department = ?", f.Department)
	}
	if f.OwnerDepartment != "" {
		q = q.Where("listings.department = ?", f.OwnerDepartment)
	}
	if f.RequestedBy > 0 {
		q = q.Where("claims.requested_by = ?", f.RequestedBy)
	}

	var rows []claimDatamodel.ClaimWithListing
	if err := q.Order("claims.requested_at DESC").Order("claims.id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	out := make([]*claim.Claim, 0, len(rows))
	for i := range rows {
		out = append(out, claim.FromJoinedDataModel(&rows[i]))
	}
	return out, nil
}

func (r *ClaimRepository) ApplyTransition(ctx context.Context, claimID int64, t claim.Transition) (bool, error) {
	updates := map[string]interface{}{"status": t.To}
	switch t.To {
	case claim.StatusPendingSecurity:
		updates["owner_approved_at"] = t.At
		updates["owner_approved_by"] = t.ActorID
	case claim.StatusApproved:
		updates["security_approved_at"] = t.At
		updates["security_approved_by"] = t.ActorID
	case claim.StatusDenied:
		updates["denied_at"] = t.At
		updates["denied_by"] = t.ActorID
		updates["denial_reason"] = t.Reason
	}

	res := r.db.WithContext(ctx).Model(&claimDatamodel.Claim{}).
		Where("id = ? AND status = ?", claimID, t.From).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update claim %d: %w", claimID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *ClaimRepository) SetListingStatus(ctx context.Context, listingID int64, expected, next string) (bool, error) {
	ok, err := listingPostgres.CompareAndSetStatus(r.db.WithContext(ctx), listingID, expected, next)
	if err != nil {
		return false, fmt.Errorf("failed to update listing %d status: %w", listingID, err)
	}
	return ok, nil
}

func (r *ClaimRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("claims").
		Select(joinedColumns).
		Joins("JOIN listings ON listings.id = claims.listing_id")
}
