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

const mysqlUserColumns = `id, name, email, password, is_active, failed_attempts, locked_until, created_at, updated_at`

// MySQLUserRepository handles user persistence for MySQL
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{
		db: db,
	}
}

// Create inserts a new user
func (r *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users (id, name, email, password, is_active, failed_attempts, locked_until, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, 0, NULL, NOW(), NOW())`

	// Convert UUID to bytes for MySQL BINARY(16)
	uuidBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(ctx, query, uuidBytes, user.Name, user.Email, user.Password, user.IsActive)
	if err != nil {
		// Check for unique constraint violation (duplicate email)
		if isMySQLUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *MySQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlUserColumns + ` FROM users WHERE id = ?`

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	user, err := scanMySQLUser(querier.QueryRowContext(ctx, query, uuidBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by id")
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlUserColumns + ` FROM users WHERE email = ?`

	user, err := scanMySQLUser(querier.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by email")
	}

	return user, nil
}

// UpdatePassword replaces the stored password hash
func (r *MySQLUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, password string) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE users SET password = ?, updated_at = NOW() WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, password, uuidBytes); err != nil {
		return apperrors.Wrap(err, "failed to update user password")
	}
	return nil
}

// UpdateLoginState stores the failed attempt counter and lockout deadline
func (r *MySQLUserRepository) UpdateLoginState(
	ctx context.Context,
	id uuid.UUID,
	failedAttempts int,
	lockedUntil *time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE users SET failed_attempts = ?, locked_until = ? WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, failedAttempts, lockedUntil, uuidBytes); err != nil {
		return apperrors.Wrap(err, "failed to update user login state")
	}
	return nil
}

// RecordFailedLogin increments the failed attempt counter in a single statement.
// MySQL applies SET assignments left to right, so locked_until is evaluated
// against the counter before it changes.
func (r *MySQLUserRepository) RecordFailedLogin(
	ctx context.Context,
	id uuid.UUID,
	maxAttempts int,
	lockedUntil time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE users SET
			locked_until = CASE WHEN failed_attempts + 1 >= ? THEN ? ELSE locked_until END,
			failed_attempts = CASE WHEN failed_attempts + 1 >= ? THEN 0 ELSE failed_attempts + 1 END
		WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, maxAttempts, lockedUntil, maxAttempts, uuidBytes); err != nil {
		return apperrors.Wrap(err, "failed to record failed login")
	}
	return nil
}

// Deactivate marks the user as inactive
func (r *MySQLUserRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, uuidBytes); err != nil {
		return apperrors.Wrap(err, "failed to deactivate user")
	}
	return nil
}

// Delete removes the user. Tokens are removed by the foreign key cascade.
func (r *MySQLUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, uuidBytes)
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

func scanMySQLUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var idBytes []byte
	var lockedUntil sql.NullTime

	err := row.Scan(
		&idBytes,
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

	// Convert bytes back to UUID
	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	if lockedUntil.Valid {
		user.LockedUntil = &lockedUntil.Time
	}
	return &user, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
