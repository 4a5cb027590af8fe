// Package repository provides data persistence implementations for user entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/sessions/internal/database"
	"github.com/allisson/sessions/internal/user/domain"

	apperrors "github.com/allisson/sessions/internal/errors"
)

const postgresUserColumns = `id, name, email, password, is_active, failed_attempts, locked_until, created_at, updated_at`

// PostgreSQLUserRepository handles user persistence for PostgreSQL
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRepository creates a new PostgreSQLUserRepository
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{
		db: db,
	}
}

// Create inserts a new user
func (r *PostgreSQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users (id, name, email, password, is_active, failed_attempts, locked_until, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, 0, NULL, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.Password, user.IsActive)
	if err != nil {
		// Check for unique constraint violation (duplicate email)
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *PostgreSQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresUserColumns + ` FROM users WHERE id = $1`

	user, err := scanPostgreSQLUser(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by id")
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *PostgreSQLUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresUserColumns + ` FROM users WHERE email = $1`

	user, err := scanPostgreSQLUser(querier.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by email")
	}

	return user, nil
}

// UpdatePassword replaces the stored password hash
func (r *PostgreSQLUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, password string) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`

	if _, err := querier.ExecContext(ctx, query, password, id); err != nil {
		return apperrors.Wrap(err, "failed to update user password")
	}
	return nil
}

// UpdateLoginState stores the failed attempt counter and lockout deadline
func (r *PostgreSQLUserRepository) UpdateLoginState(
	ctx context.Context,
	id uuid.UUID,
	failedAttempts int,
	lockedUntil *time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users SET failed_attempts = $1, locked_until = $2 WHERE id = $3`

	if _, err := querier.ExecContext(ctx, query, failedAttempts, lockedUntil, id); err != nil {
		return apperrors.Wrap(err, "failed to update user login state")
	}
	return nil
}

// RecordFailedLogin increments the failed attempt counter in a single statement.
// Reaching maxAttempts resets the counter and sets locked_until.
func (r *PostgreSQLUserRepository) RecordFailedLogin(
	ctx context.Context,
	id uuid.UUID,
	maxAttempts int,
	lockedUntil time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users SET
			locked_until = CASE WHEN failed_attempts + 1 >= $1 THEN $2 ELSE locked_until END,
			failed_attempts = CASE WHEN failed_attempts + 1 >= $1 THEN 0 ELSE failed_attempts + 1 END
		WHERE id = $3`

	if _, err := querier.ExecContext(ctx, query, maxAttempts, lockedUntil, id); err != nil {
		return apperrors.Wrap(err, "failed to record failed login")
	}
	return nil
}

// Deactivate marks the user as inactive
func (r *PostgreSQLUserRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1`

	if _, err := querier.ExecContext(ctx, query, id); err != nil {
		return apperrors.Wrap(err, "failed to deactivate user")
	}
	return nil
}

// Delete removes the user. Tokens are removed by the foreign key cascade.
func (r *PostgreSQLUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete user")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows count")
	}
	if count == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanPostgreSQLUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var lockedUntil sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.IsActive,
		&user.FailedAttempts,
		&lockedUntil,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lockedUntil.Valid {
		user.LockedUntil = &lockedUntil.Time
	}
	return &user, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
