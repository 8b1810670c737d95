package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/frahmantamala/hardware-marketplace/internal"
	userDatamodel "github.com/frahmantamala/hardware-marketplace/internal/core/datamodel/user"
	"github.com/frahmantamala/hardware-marketplace/internal/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Take(&row, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return user.FromDataModel(&row), nil
}

// UpsertByEmail inserts the user or updates name, department and password of
// the existing row with the same email.
func (r *UserRepository) UpsertByEmail(ctx context.Context, u *user.User) (*user.User, error) {
	row := user.ToDataModel(u)
	row.Email = strings.ToLower(strings.TrimSpace(row.Email))
	row.IsActive = true

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "department", "password_hash", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	var saved userDatamodel.User
	if err := r.db.WithContext(ctx).Where("email = ?", row.Email).Take(&saved).Error; err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	return user.FromDataModel(&saved), nil
}
