package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/openclinic/vaccine-scheduler/internal/application/services"
	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
	apperrors "github.com/openclinic/vaccine-scheduler/pkg/errors"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

const testJWTSecret = "test-secret"

func TestAccountService_Register(t *testing.T) {
	t.Run("stores the account with a hashed password", func(t *testing.T) {
		users := new(MockUserRepository)
		service := services.NewAccountService(users, testJWTSecret, time.Hour)

		users.On("Create", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.Username == "dave" &&
				u.Role == entities.UserRolePatient &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")) == nil
		})).Return(nil)

		user, err := service.Register(context.Background(), "dave", "s3cret", entities.UserRolePatient)

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.NotEqual(t, "s3cret", user.PasswordHash)
		users.AssertExpectations(t)
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		users := new(MockUserRepository)
		service := services.NewAccountService(users, testJWTSecret, time.Hour)

		_, err := service.Register(context.Background(), "dave", "s3cret", entities.UserRole("admin"))

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("propagates a duplicate username conflict", func(t *testing.T) {
		users := new(MockUserRepository)
		service := services.NewAccountService(users, testJWTSecret, time.Hour)

		users.On("Create", mock.Anything, mock.Anything).
			Return(apperrors.NewConflictError("username dave is already taken"))

		_, err := service.Register(context.Background(), "dave", "s3cret", entities.UserRolePatient)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	})
}

func TestAccountService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	assert.NoError(t, err)

	storedUser := &entities.User{
		Username:     "alice",
		Role:         entities.UserRoleCaregiver,
		PasswordHash: string(hash),
	}

	t.Run("returns a token carrying the username and role", func(t *testing.T) {
		users := new(MockUserRepository)
		service := services.NewAccountService(users, testJWTSecret, time.Hour)

		users.On("GetByUsername", mock.Anything, "alice").Return(storedUser, nil)

		tokenString, err := service.Login(context.Background(), "alice", "s3cret")

		assert.NoError(t, err)
		assert.NotEmpty(t, tokenString)

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			return []byte(testJWTSecret), nil
		})
		assert.NoError(t, err)

		claims, ok := token.Claims.(jwt.MapClaims)
		assert.True(t, ok)
		assert.Equal(t, "alice", claims["sub"])
		assert.Equal(t, "caregiver", claims["role"])
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		users := new(MockUserRepository)
		service := services.NewAccountService(users, testJWTSecret, time.Hour)

		users.On("GetByUsername", mock.Anything, "alice").Return(storedUser, nil)

		_, err := service.Login(context.Background(), "alice", "wrong")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})

	t.Run("does not reveal whether the username exists", func(t *testing.T) {
		users := new(MockUserRepository)
		service := services.NewAccountService(users, testJWTSecret, time.Hour)

		users.On("GetByUsername", mock.Anything, "ghost").
			Return(nil, apperrors.NewNotFoundError("user ghost not found"))

		_, err := service.Login(context.Background(), "ghost", "s3cret")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})
}
