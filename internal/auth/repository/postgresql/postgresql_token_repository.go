// Package postgresql implements session token persistence for PostgreSQL.
package postgresql

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

// PostgreSQLTokenRepository implements Token persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// Create inserts a new Token into the PostgreSQL database. Uses transaction support
// via database.GetTx(). Returns an error if database insertion fails.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *authDomain.Token) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO tokens (id, token_hash, user_id, kind, user_agent, ip_address, expires_at, revoked_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.TokenHash,
		token.UserID,
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
func (p *PostgreSQLTokenRepository) FindUsable(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (*authDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, token_hash, user_id, kind, user_agent, ip_address, expires_at, revoked_at, created_at
			  FROM tokens
			  WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > $2`

	var token authDomain.Token
	var kind string

	err := querier.QueryRowContext(ctx, query, tokenHash, now).Scan(
		&token.ID,
		&token.TokenHash,
		&token.UserID,
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

	token.Kind = authDomain.TokenKind(kind)
	return &token, nil
}

// RevokeAll marks every unrevoked token of the user as revoked in one statement.
// Returns the number of tokens revoked.
func (p *PostgreSQLTokenRepository) RevokeAll(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE tokens SET revoked_at = $1 WHERE user_id = $2 AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, now, userID)
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
func (p *PostgreSQLTokenRepository) RevokeAllOfKind(
	ctx context.Context,
	userID uuid.UUID,
	kind authDomain.TokenKind,
	now time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE tokens SET revoked_at = $1 WHERE user_id = $2 AND kind = $3 AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, now, userID, string(kind))
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
// transaction. Token issuance and revocation for one user serialize on it.
// Returns ErrIdentityUnavailable if the user does not exist.
func (p *PostgreSQLTokenRepository) LockOwner(ctx context.Context, userID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id FROM users WHERE id = $1 FOR UPDATE`

	var id uuid.UUID
	if err := querier.QueryRowContext(ctx, query, userID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authDomain.ErrIdentityUnavailable
		}
		return apperrors.Wrap(err, "failed to lock token owner")
	}

	return nil
}

// DeleteExpired removes tokens that expired or were revoked before the given time.
// When dryRun is true, returns count via SELECT COUNT(*) without deletion.
func (p *PostgreSQLTokenRepository) DeleteExpired(
	ctx context.Context,
	before time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		query := `SELECT COUNT(*) FROM tokens WHERE expires_at < $1 OR revoked_at < $1`
		var count int64
		if err := querier.QueryRowContext(ctx, query, before).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count expired tokens")
		}
		return count, nil
	}

	query := `DELETE FROM tokens WHERE expires_at < $1 OR revoked_at < $1`
	result, err := querier.ExecContext(ctx, query, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired tokens")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}

	return count, nil
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL Token repository.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}
