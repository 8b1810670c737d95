package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/hardware-marketplace/internal"
	"golang.org/x/crypto/bcrypt"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUser(ctx context.Context, userID int64) (*User, error)
}

type RepositoryAPI interface {
	GetCredentials(ctx context.Context, email string) (*Credentials, error)
	GetUserByID(ctx context.Context, userID int64) (*User, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID int64, email string) (string, error)
	GenerateRefreshToken(userID int64, email string) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type Service struct {
	repo       RepositoryAPI
	tokens     TokenGeneratorAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))
	creds, err := s.repo.GetCredentials(ctx, email)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			s.logger.Warn("login for unknown email", "email", email)
			return AuthTokens{}, internal.ErrInvalidCredentials
		}
		s.logger.Error("failed to load credentials", "email", email, "error", err)
		return AuthTokens{}, internal.NewInternalError("failed to authenticate", err)
	}

	if err := VerifyPassword(creds.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login with wrong password", "user_id", creds.UserID)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if !creds.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	return s.issue(creds.UserID, email)
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	user, err := s.GetUser(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, err
	}

	return s.issue(user.ID, user.Email)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateAccessToken(tokenString)
}

// GetUser loads an active user.
func (s *Service) GetUser(ctx context.Context, userID int64) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrUserNotFound
		}
		s.logger.Error("failed to load user", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if !user.IsActive {
		return nil, internal.ErrUserInactive
	}
	return user, nil
}

func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

func (s *Service) issue(userID int64, email string) (AuthTokens, error) {
	accessToken, err := s.tokens.GenerateAccessToken(userID, email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue token", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(userID, email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue token", err)
	}
	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
