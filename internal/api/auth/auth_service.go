package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/travelmate-api/config"
	"github.com/FACorreiaa/travelmate-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Register(ctx context.Context, req types.RegisterRequest) error
	Login(ctx context.Context, req types.LoginRequest) (string, error)
}

type ServiceImpl struct {
	repo   Repository
	cfg    config.Config
	logger *slog.Logger
}

func NewService(repo Repository, cfg config.Config, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *ServiceImpl) Register(ctx context.Context, req types.RegisterRequest) error {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register")
	defer span.End()

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if username == "" || email == "" || len(req.Password) < 8 {
		return fmt.Errorf("username, email and a password of at least 8 characters are required: %w", types.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.repo.CreateUser(ctx, username, email, string(hash)); err != nil {
		return err
	}
	return nil
}

// Login verifies the credentials and issues a signed access token. Lookup
// failures and bad passwords both come back as ErrUnauthenticated so the
// handler cannot leak which of the two happened.
func (s *ServiceImpl) Login(ctx context.Context, req types.LoginRequest) (string, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	email := strings.TrimSpace(strings.ToLower(req.Email))
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return "", fmt.Errorf("invalid credentials: %w", types.ErrUnauthenticated)
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.WarnContext(ctx, "Password mismatch on login", slog.String("email", email))
		return "", fmt.Errorf("invalid credentials: %w", types.ErrUnauthenticated)
	}

	expiry := s.cfg.Auth.TokenExpiry
	if expiry == 0 {
		expiry = 24 * time.Hour
	}

	claims := Claims{
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Auth.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}
