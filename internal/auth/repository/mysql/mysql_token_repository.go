// Package mysql implements session token persistence for MySQL.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	"github.com/allisson/sessions/internal/database"
	apperrors "github.com/allisson/sessions/internal/errors"
)

// MySQLTokenRepository implements Token persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLTokenRepository struct {
	db *sql.DB
}

// Create inserts a new Token into the MySQL database using BINARY(16) for UUIDs.
// Returns an error if UUID marshaling or database insertion fails.
func (m *MySQLTokenRepository) Create(ctx context.Context, token *authDomain.Token) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO tokens (id, token_hash, user_id, kind, user_agent, ip_address, expires_at, revoked_at, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := token.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token id")
	}

	userID, err := token.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		token.TokenHash,
		userID,
		string(token.Kind),
		token.UserAgent,
		token.IPAddress,
		token.ExpiresAt,
		token.RevokedAt,
		token.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create token")
	}
	return nil
}

// FindUsable retrieves the unrevoked, unexpired Token with the given hash.
// Returns ErrTokenNotFound when no usable record matches.
func (m *MySQLTokenRepository) FindUsable(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (*authDomain.Token, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, token_hash, user_id, kind, user_agent, ip_address, expires_at, revoked_at, created_at
			  FROM tokens
			  WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > ?`

	var token authDomain.Token
	var idBytes []byte
	var userIDBytes []byte
	var kind string

	err := querier.QueryRowContext(ctx, query, tokenHash, now).Scan(
		&idBytes,
		&token.TokenHash,
		&userIDBytes,
		&kind,
		&token.UserAgent,
		&token.IPAddress,
		&token.ExpiresAt,
		&token.RevokedAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to find usable token")
	}

	if err := token.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal token id")
	}

	if err := token.UserID.UnmarshalBinary(userIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	token.Kind = authDomain.TokenKind(kind)
	return &token, nil
}

// RevokeAll marks every unrevoked token of the user as revoked in one statement.
func (m *MySQLTokenRepository) RevokeAll(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `UPDATE tokens SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, now, id)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to revoke tokens")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}

	return count, nil
}

// RevokeAllOfKind marks every unrevoked token of the given kind of the user as revoked.
func (m *MySQLTokenRepository) RevokeAllOfKind(
	ctx context.Context,
	userID uuid.UUID,
	kind authDomain.TokenKind,
	now time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `UPDATE tokens SET revoked_at = ? WHERE user_id = ? AND kind = ? AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, now, id, string(kind))
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to revoke tokens")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}

	return count, nil
}

// LockOwner takes a row lock on the user record for the rest of the current
// transaction. Returns ErrIdentityUnavailable if the user does not exist.
func (m *MySQLTokenRepository) LockOwner(ctx context.Context, userID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT id FROM users WHERE id = ? FOR UPDATE`

	var idBytes []byte
	if err := querier.QueryRowContext(ctx, query, id).Scan(&idBytes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authDomain.ErrIdentityUnavailable
		}
		return apperrors.Wrap(err, "failed to lock token owner")
	}

	return nil
}

// DeleteExpired removes tokens that expired or were revoked before the given time.
// When dryRun is true, returns count via SELECT COUNT(*) without deletion.
func (m *MySQLTokenRepository) DeleteExpired(
	ctx context.Context,
	before time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		query := `SELECT COUNT(*) FROM tokens WHERE expires_at < ? OR revoked_at < ?`
		var count int64
		if err := querier.QueryRowContext(ctx, query, before, before).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count expired tokens")
		}
		return count, nil
	}

	query := `DELETE FROM tokens WHERE expires_at < ? OR revoked_at < ?`
	result, err := querier.ExecContext(ctx, query, before, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired tokens")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}

	return count, nil
}

// NewMySQLTokenRepository creates a new MySQL Token repository.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}
