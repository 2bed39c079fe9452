package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
	"github.com/openclinic/vaccine-scheduler/internal/domain/repositories"
	"github.com/openclinic/vaccine-scheduler/internal/infrastructure/clients/postgres"
	apperrors "github.com/openclinic/vaccine-scheduler/pkg/errors"
)

// UserAdapter implements the UserRepository interface
type UserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create stores a new account
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	record := goqu.Record{
		"username":      user.Username,
		"role":          user.Role,
		"password_hash": user.PasswordHash,
		"created_at":    user.CreatedAt,
	}

	query, args, err := a.db.Insert("users").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err = a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("username %s is already taken", user.Username))
		}
		return apperrors.NewInternalError("failed to create user", err)
	}

	return nil
}

// GetByUsername retrieves an account by username
func (a *UserAdapter) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	query, args, err := a.db.Select(
		"username", "role", "password_hash", "created_at",
	).From("users").
		Where(goqu.Ex{"username": username}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	user := &entities.User{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&user.Username,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", username))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	return user, nil
}
