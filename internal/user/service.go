package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/hardware-marketplace/internal"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	UpsertByEmail(ctx context.Context, u *User) (*User, error)
}

type SecurityChecker interface {
	IsSecurityTeam(department string) bool
}

type Service struct {
	repo     RepositoryAPI
	security SecurityChecker
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, security SecurityChecker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		security: security,
		logger:   logger,
	}
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*ProfileResponse, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrUserNotFound
		}
		s.logger.Error("failed to load user", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("failed to load user", err)
	}
	return &ProfileResponse{
		User:           u,
		IsSecurityTeam: s.security.IsSecurityTeam(u.Department),
	}, nil
}

// Provision creates or refreshes a user keyed by email. Used by the seeder.
func (s *Service) Provision(ctx context.Context, u *User) (*User, error) {
	if u.Email == "" || u.Department == "" {
		return nil, internal.ErrMissingFields
	}
	saved, err := s.repo.UpsertByEmail(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to provision user %s: %w", u.Email, err)
	}
	return saved, nil
}
