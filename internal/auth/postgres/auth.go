package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/hardware-marketplace/internal"
	"github.com/frahmantamala/hardware-marketplace/internal/auth"
	userDatamodel "github.com/frahmantamala/hardware-marketplace/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentials(ctx context.Context, email string) (*auth.Credentials, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).
		Select("id", "password_hash", "is_active").
		Where("LOWER(email) = LOWER(?)", email).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	return &auth.Credentials{
		UserID:       row.ID,
		PasswordHash: row.PasswordHash,
		IsActive:     row.IsActive,
	}, nil
}

func (r *Repository) GetUserByID(ctx context.Context, userID int64) (*auth.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Take(&row, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return &auth.User{
		ID:         row.ID,
		Email:      row.Email,
		Name:       row.Name,
		Department: row.Department,
		IsActive:   row.IsActive,
	}, nil
}
