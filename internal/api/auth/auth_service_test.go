package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aura-analytics/aura-backend/internal/api"
	"github.com/aura-analytics/aura-backend/internal/types"
)

// MockAuthRepo is a mock implementation of the AuthRepo interface.
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) CreateUser(ctx context.Context, email, passwordHash string, name *string) (*types.User, error) {
	args := m.Called(ctx, email, passwordHash, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) GetUserByID(ctx context.Context, userID string) (*types.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func newTestService(repo AuthRepo) *AuthServiceImpl {
	return NewAuthService(repo, NewTokenService(testJWTConfig()), slog.Default())
}

func activeUser(email, password string) *types.User {
	hash, _ := HashPassword(password)
	return &types.User{
		ID:           "d290f1ee-6c54-4b01-90e6-d701748f0851",
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		req := &RegisterRequest{Email: "alice@example.com", Password: "Abcdef12", Name: strPtr("Alice")}

		mockRepo.On("GetUserByEmail", ctx, "alice@example.com").Return(nil, api.ErrNotFound).Once()
		mockRepo.On("CreateUser", ctx, "alice@example.com", mock.AnythingOfType("string"), req.Name).
			Run(func(args mock.Arguments) {
				// The stored digest must verify against the plaintext and never equal it.
				hash := args.String(2)
				assert.NotEqual(t, "Abcdef12", hash)
				ok, err := CheckPassword("Abcdef12", hash)
				assert.NoError(t, err)
				assert.True(t, ok)
			}).
			Return(activeUser("alice@example.com", "Abcdef12"), nil).Once()

		resp, err := service.Register(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, "alice@example.com", resp.User.Email)

		// The issued token must be accepted by verification.
		claims, err := service.tokens.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, claims.UserID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		mockRepo.On("GetUserByEmail", ctx, "alice@example.com").
			Return(activeUser("alice@example.com", "Abcdef12"), nil).Once()

		resp, err := service.Register(ctx, &RegisterRequest{Email: "alice@example.com", Password: "Abcdef12"})
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, api.ErrConflict)
		mockRepo.AssertExpectations(t)
	})

	t.Run("LostInsertRace", func(t *testing.T) {
		// The existence check passed but a concurrent registration won the
		// insert; the unique index reports the conflict.
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		mockRepo.On("GetUserByEmail", ctx, "alice@example.com").Return(nil, api.ErrNotFound).Once()
		mockRepo.On("CreateUser", ctx, "alice@example.com", mock.AnythingOfType("string"), (*string)(nil)).
			Return(nil, api.ErrConflict).Once()

		resp, err := service.Register(ctx, &RegisterRequest{Email: "alice@example.com", Password: "Abcdef12"})
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, api.ErrConflict)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RepoFailure", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		mockRepo.On("GetUserByEmail", ctx, "alice@example.com").
			Return(nil, errors.New("connection refused")).Once()

		resp, err := service.Register(ctx, &RegisterRequest{Email: "alice@example.com", Password: "Abcdef12"})
		assert.Nil(t, resp)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, api.ErrConflict)
		mockRepo.AssertExpectations(t)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		user := activeUser("alice@example.com", "Abcdef12")

		mockRepo.On("GetUserByEmail", ctx, "alice@example.com").Return(user, nil).Once()

		resp, err := service.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "Abcdef12"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, resp.User.ID)

		claims, err := service.tokens.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, user.Email, claims.Email)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		mockRepo.On("GetUserByEmail", ctx, "nobody@example.com").Return(nil, api.ErrNotFound).Once()

		resp, err := service.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "Abcdef12"})
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		mockRepo.On("GetUserByEmail", ctx, "alice@example.com").
			Return(activeUser("alice@example.com", "Abcdef12"), nil).Once()

		resp, err := service.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "WrongPass1"})
		assert.Nil(t, resp)
		// Same sentinel as unknown email: the two cases are indistinguishable.
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})

	t.Run("DeactivatedAccount", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		user := activeUser("alice@example.com", "Abcdef12")
		user.IsActive = false

		mockRepo.On("GetUserByEmail", ctx, "alice@example.com").Return(user, nil).Once()

		resp, err := service.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "Abcdef12"})
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, api.ErrAccountDisabled)
		mockRepo.AssertExpectations(t)
	})
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		user := activeUser("alice@example.com", "Abcdef12")

		mockRepo.On("GetUserByID", ctx, user.ID).Return(user, nil).Once()

		got, err := service.GetProfile(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UserVanished", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		mockRepo.On("GetUserByID", ctx, "gone").Return(nil, api.ErrNotFound).Once()

		got, err := service.GetProfile(ctx, "gone")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, api.ErrNotFound)
		mockRepo.AssertExpectations(t)
	})
}
