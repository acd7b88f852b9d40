package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-tracker/internal/auth"
	"github.com/spec-kit/repair-tracker/internal/config"
	"github.com/spec-kit/repair-tracker/internal/domain"
	"github.com/spec-kit/repair-tracker/internal/repository"
	apperrors "github.com/spec-kit/repair-tracker/pkg/util"
)

// AuthService coordinates registration, login and profile management.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the configured token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates a new team member with the default operator role.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*domain.UserProfile, string, time.Time, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email and password required", nil)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	profile := &domain.UserProfile{
		Email:        email,
		Role:         domain.RoleOperator,
		PasswordHash: hash,
	}
	if trimmed := strings.TrimSpace(username); trimmed != "" {
		profile.Username = &trimmed
	}
	if err := s.users.Create(ctx, profile); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(profile.UID, profile.Email, profile.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return profile, token, exp, nil
}

// Login authenticates a team member.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.UserProfile, string, time.Time, error) {
	profile, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(profile.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(profile.UID, profile.Email, profile.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return profile, token, exp, nil
}

// GetProfile fetches a profile by uid, creating a default operator profile
// when the uid is known to the identity provider but not yet to us.
func (s *AuthService) GetProfile(ctx context.Context, uid, email string) (*domain.UserProfile, error) {
	profile, err := s.users.GetByUID(ctx, uid)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	created := &domain.UserProfile{
		Email: email,
		Role:  domain.RoleOperator,
	}
	if err := s.users.Create(ctx, created); err != nil {
		return nil, apperrors.MapError(err)
	}
	return created, nil
}

// ListUsers returns all team profiles.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.UserProfile, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// UpdateRole changes a member's role. Managers and head technicians only;
// nobody can demote themselves.
func (s *AuthService) UpdateRole(ctx context.Context, actor *domain.UserProfile, uid string, role domain.Role) error {
	if actor == nil || !actor.Role.CanManageRoles() {
		return apperrors.NewForbidden("role cannot manage user roles")
	}
	if !role.Valid() {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}
	if actor.UID == uid {
		return apperrors.NewConflict("cannot change own role", nil)
	}
	if err := s.users.UpdateRole(ctx, uid, role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"uid": uid})
		}
		return apperrors.MapError(err)
	}
	return nil
}
