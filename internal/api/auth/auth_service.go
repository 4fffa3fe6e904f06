package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aura-analytics/aura-backend/internal/api"
	"github.com/aura-analytics/aura-backend/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the business logic contract for authentication.
type AuthService interface {
	// Register creates a new account and returns the user plus a fresh token.
	// Fails with api.ErrConflict when the normalized email is already taken.
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)

	// Login authenticates credentials and returns the user plus a fresh token.
	// Unknown email and wrong password both fail with api.ErrUnauthenticated;
	// a deactivated account fails with api.ErrAccountDisabled.
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)

	// GetProfile re-fetches the user row for a verified identity. Fails with
	// api.ErrNotFound when the user vanished after token issuance.
	GetProfile(ctx context.Context, userID string) (*types.User, error)
}

// AuthServiceImpl composes the credential store, password hasher and token
// service.
type AuthServiceImpl struct {
	logger *slog.Logger
	repo   AuthRepo
	tokens TokenService
}

func NewAuthService(repo AuthRepo, tokens TokenService, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		tokens: tokens,
	}
}

// Register creates a new user account. The pre-check keeps the common case
// fast and friendly; the database unique index remains the real guard, so a
// lost check-then-insert race still surfaces as api.ErrConflict.
func (s *AuthServiceImpl) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	l := s.logger.With(slog.String("method", "Register"), slog.String("email", req.Email))

	_, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err == nil {
		l.WarnContext(ctx, "Registration rejected, email already exists")
		return nil, fmt.Errorf("%w: email already registered", api.ErrConflict)
	}
	if !errors.Is(err, api.ErrNotFound) {
		l.ErrorContext(ctx, "Failed to check for existing user", slog.Any("error", err))
		return nil, fmt.Errorf("error checking existing user: %w", err)
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		l.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, req.Email, passwordHash, req.Name)
	if err != nil {
		if errors.Is(err, api.ErrConflict) {
			l.WarnContext(ctx, "Registration lost insert race, email already exists")
			return nil, err
		}
		l.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue token", slog.Any("error", err))
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	l.InfoContext(ctx, "User registered successfully", slog.String("userID", user.ID))
	return &AuthResponse{User: user, Token: token}, nil
}

// Login authenticates a user. Unknown email and wrong password are
// indistinguishable to the caller to resist account enumeration.
func (s *AuthServiceImpl) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	l := s.logger.With(slog.String("method", "Login"), slog.String("email", req.Email))

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			l.WarnContext(ctx, "Login failed, no such user")
			return nil, fmt.Errorf("%w: invalid email or password", api.ErrUnauthenticated)
		}
		l.ErrorContext(ctx, "Failed to fetch user for login", slog.Any("error", err))
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	if !user.IsActive {
		l.WarnContext(ctx, "Login rejected, account deactivated", slog.String("userID", user.ID))
		return nil, fmt.Errorf("%w", api.ErrAccountDisabled)
	}

	ok, err := CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		l.ErrorContext(ctx, "Password verification failed", slog.Any("error", err))
		return nil, fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		l.WarnContext(ctx, "Login failed, wrong password", slog.String("userID", user.ID))
		return nil, fmt.Errorf("%w: invalid email or password", api.ErrUnauthenticated)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue token", slog.Any("error", err))
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	l.InfoContext(ctx, "Login successful", slog.String("userID", user.ID))
	return &AuthResponse{User: user, Token: token}, nil
}

// GetProfile returns the current user row for a previously verified identity.
// The row is re-fetched rather than trusting cached claims so a deleted user
// is reported as api.ErrNotFound.
func (s *AuthServiceImpl) GetProfile(ctx context.Context, userID string) (*types.User, error) {
	l := s.logger.With(slog.String("method", "GetProfile"), slog.String("userID", userID))

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			l.WarnContext(ctx, "Profile fetch failed, user no longer exists")
			return nil, err
		}
		l.ErrorContext(ctx, "Failed to fetch user profile", slog.Any("error", err))
		return nil, fmt.Errorf("error fetching user profile: %w", err)
	}

	return user, nil
}
