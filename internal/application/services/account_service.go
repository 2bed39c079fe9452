package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
	"github.com/openclinic/vaccine-scheduler/internal/domain/repositories"
	apperrors "github.com/openclinic/vaccine-scheduler/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// AccountService handles patient and caregiver registration and login.
// Sessions are stateless JWTs; the authenticated actor travels in the
// request context instead of process-global state.
type AccountService struct {
	users     repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAccountService creates a new account service
func NewAccountService(users repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) *AccountService {
	return &AccountService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Register creates a new patient or caregiver account
func (s *AccountService) Register(ctx context.Context, username, password string, role entities.UserRole) (*entities.User, error) {
	if username == "" {
		return nil, apperrors.NewValidationError("username is required")
	}
	if password == "" {
		return nil, apperrors.NewValidationError("password is required")
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("role must be patient or caregiver")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	user := &entities.User{
		Username:     username,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and returns a signed session token
func (s *AccountService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return "", apperrors.NewUnauthorizedError("invalid username or password")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.NewUnauthorizedError("invalid username or password")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.Username,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperrors.NewInternalError("failed to sign session token", err)
	}

	return signed, nil
}
