package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/signals-service/internal/auth"
	"github.com/spec-kit/signals-service/internal/domain"
	"github.com/spec-kit/signals-service/internal/repository"
	apperrors "github.com/spec-kit/signals-service/pkg/util"
)

// RegisterInput carries the fields needed to create an official's
// account.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Permissions []string
}

// AuthResult is the outcome of a successful login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService handles account registration and login for officials.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService wires the service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, bcryptCost int, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost, logger: logger}
}

// Register creates a new active account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	fields := map[string][]string{}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = append(fields["name"], msgFieldRequired)
	}
	if strings.TrimSpace(input.Email) == "" {
		fields["email"] = append(fields["email"], msgFieldRequired)
	}
	if len(input.Password) < 8 {
		fields["password"] = append(fields["password"], "Ensure this field has at least 8 characters.")
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}

	if existing, err := s.users.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("email already registered")
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        strings.ToLower(input.Email),
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
		Permissions:  input.Permissions,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// Login verifies credentials and issues a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if user.Status != domain.UserStatusActive {
		return nil, apperrors.NewUnauthorized("user disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
