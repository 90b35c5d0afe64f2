package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/travelmate-api/config"
	"github.com/FACorreiaa/travelmate-api/internal/types"
)

// MockAuthRepository is a mock implementation of Repository
type MockAuthRepository struct {
	mock.Mock
}

func (m *MockAuthRepository) CreateUser(ctx context.Context, username, email, passwordHash string) (*types.User, error) {
	args := m.Called(ctx, username, email, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepository) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func setupAuthServiceTest() (*ServiceImpl, *MockAuthRepository) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockRepo := new(MockAuthRepository)
	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenExpiry = time.Hour
	service := NewService(mockRepo, cfg, logger)
	return service, mockRepo
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("success hashes the password and lowercases the email", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()

		var storedHash string
		mockRepo.On("CreateUser", mock.Anything, "alice", "alice@example.com", mock.Anything).
			Run(func(args mock.Arguments) {
				storedHash = args.String(3)
			}).
			Return(&types.User{ID: uuid.New()}, nil).Once()

		err := service.Register(ctx, types.RegisterRequest{
			Username: " alice ",
			Email:    " Alice@Example.COM ",
			Password: "correct horse",
		})
		require.NoError(t, err)

		assert.NotEqual(t, "correct horse", storedHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("correct horse")))
		mockRepo.AssertExpectations(t)
	})

	t.Run("short password is rejected", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()

		err := service.Register(ctx, types.RegisterRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "short",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrValidation))
		mockRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing username or email is rejected", func(t *testing.T) {
		service, _ := setupAuthServiceTest()

		err := service.Register(ctx, types.RegisterRequest{Email: "a@b.com", Password: "longenough"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrValidation))

		err = service.Register(ctx, types.RegisterRequest{Username: "alice", Password: "longenough"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrValidation))
	})

	t.Run("duplicate user conflict passes through", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()

		mockRepo.On("CreateUser", mock.Anything, "alice", "alice@example.com", mock.Anything).
			Return(nil, types.ErrConflict).Once()

		err := service.Register(ctx, types.RegisterRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "longenough",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrConflict))
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &types.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}

	t.Run("success issues a verifiable token", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()
		mockRepo.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(user, nil).Once()

		signed, err := service.Login(ctx, types.LoginRequest{
			Email:    " Alice@Example.com ",
			Password: "correct horse",
		})
		require.NoError(t, err)
		require.NotEmpty(t, signed)

		claims := &Claims{}
		parsed, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		require.NoError(t, err)
		assert.True(t, parsed.Valid)
		assert.Equal(t, user.ID.String(), claims.Subject)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
	})

	t.Run("unknown email comes back as unauthenticated", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()
		mockRepo.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, types.ErrNotFound).Once()

		_, err := service.Login(ctx, types.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrUnauthenticated))
		assert.False(t, errors.Is(err, types.ErrNotFound), "lookup failure must not be distinguishable")
	})

	t.Run("wrong password comes back as unauthenticated", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()
		mockRepo.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(user, nil).Once()

		_, err := service.Login(ctx, types.LoginRequest{Email: "alice@example.com", Password: "wrong"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrUnauthenticated))
	})

	t.Run("database failure is not masked", func(t *testing.T) {
		service, mockRepo := setupAuthServiceTest()
		dbErr := errors.New("connection refused")
		mockRepo.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(nil, dbErr).Once()

		_, err := service.Login(ctx, types.LoginRequest{Email: "alice@example.com", Password: "correct horse"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, dbErr))
		assert.False(t, errors.Is(err, types.ErrUnauthenticated))
	})
}
