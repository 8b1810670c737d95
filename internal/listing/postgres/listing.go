package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/frahmantamala/hardware-marketplace/internal"
	claimDatamodel "github.com/frahmantamala/hardware-marketplace/internal/core/datamodel/claim"
	listingDatamodel "github.com/frahmantamala/hardware-marketplace/internal/core/datamodel/listing"
	"github.com/frahmantamala/hardware-marketplace/internal/listing"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// activeClaimStatuses block deletion of a listing.
var activeClaimStatuses = []string{"pending_owner", "pending_security", "approved"}

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(ctx context.Context, l *listing.Listing) error {
	m := l.ToDataModel()
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if IsUniqueViolation(err) {
			return internal.ErrDuplicateSerial
		}
		return err
	}
	*l = *listing.FromDataModel(m)
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*listing.Listing, error) {
	var m listingDatamodel.Listing
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrListingNotFound
		}
		return nil, err
	}
	return listing.FromDataModel(&m), nil
}

func (r *ListingRepository) ExistsBySerial(ctx context.Context, serial string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&listingDatamodel.Listing{}).
		Where("serial_number = ?", serial).
		Count(&count).Error
	return count > 0, err
}

// List returns listings newest first.
func (r *ListingRepository) List(ctx context.Context, f listing.Filter) ([]*listing.Listing, error) {
	q := r.db.WithContext(ctx).Model(&listingDatamodel.Listing{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Department != "" {
		q = q.Where("department = ?", f.Department)
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		q = q.Where(
			`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(serial_number) LIKE ? ESCAPE '\' OR LOWER(department) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern, pattern,
		)
	}

	var rows []*listingDatamodel.Listing
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*listing.Listing, 0, len(rows))
	for _, m := range rows {
		out = append(out, listing.FromDataModel(m))
	}
	return out, nil
}

func (r *ListingRepository) Update(ctx context.Context, id int64, fields listing.UpdateFields) (*listing.Listing, error) {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if fields.Title != nil {
		updates["title"] = strings.TrimSpace(*fields.Title)
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.Location != nil {
		updates["location"] = *fields.Location
	}
	if fields.Condition != nil {
		updates["condition"] = *fields.Condition
	}
	if fields.ExpirationDate != nil {
		updates["expiration_date"] = *fields.ExpirationDate
	}

	res := r.db.WithContext(ctx).Model(&listingDatamodel.Listing{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, internal.ErrListingNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *ListingRepository) CompareAndSetStatus(ctx context.Context, id int64, expected, next string) (bool, error) {
	return CompareAndSetStatus(r.db.WithContext(ctx), id, expected, next)
}

func (r *ListingRepository) DeleteIfRemovable(ctx context.Context, id int64) (bool, error) {
	activeClaims := r.db.Model(&claimDatamodel.Claim{}).
		Select("1").
		Where("claims.listing_id = listings.id AND claims.status IN ?", activeClaimStatuses)

	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, listing.StatusAvailable).
		Where("NOT EXISTS (?)", activeClaims).
		Delete(&listingDatamodel.Listing{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ListingRepository) ListExpirable(ctx context.Context, cutoff time.Time) ([]*listing.Listing, error) {
	var rows []*listingDatamodel.Listing
	err := r.db.WithContext(ctx).
		Where("status = ? AND expiration_date < ?", listing.StatusAvailable, cutoff).
		Order("expiration_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*listing.Listing, 0, len(rows))
	for _, m := range rows {
		out = append(out, listing.FromDataModel(m))
	}
	return out, nil
}

// CompareAndSetStatus updates the listing status only while it still equals
// expected. db may be a transaction.
func CompareAndSetStatus(db *gorm.DB, id int64, expected, next string) (bool, error) {
	res := db.Model(&listingDatamodel.Listing{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]interface{}{
			"status":     next,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IsUniqueViolation recognises duplicate key errors from postgres and sqlite,
// translated or not.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
