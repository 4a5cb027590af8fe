package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	"github.com/allisson/sessions/internal/database"
	"github.com/allisson/sessions/internal/testutil"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func newTestToken(userID uuid.UUID, kind authDomain.TokenKind, hash string, ttl time.Duration) *authDomain.Token {
	now := time.Now().UTC()
	return &authDomain.Token{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: hash,
		UserID:    userID,
		Kind:      kind,
		UserAgent: "test-agent",
		IPAddress: "127.0.0.1",
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

func TestPostgreSQLTokenRepository_Statements(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	t.Run("Success_Create", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLTokenRepository(db)
		token := newTestToken(userID, authDomain.AccessToken, "hash-1", time.Hour)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tokens")).
			WithArgs(sqlmock.AnyArg(), "hash-1", sqlmock.AnyArg(), "access", "test-agent", "127.0.0.1",
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, token))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_CreateFails", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLTokenRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tokens")).WillReturnError(errors.New("boom"))

		err := repo.Create(ctx, newTestToken(userID, authDomain.AccessToken, "hash-1", time.Hour))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create token")
	})

	t.Run("Success_FindUsableFiltersRevokedAndExpired", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLTokenRepository(db)
		tokenID := uuid.Must(uuid.NewV7())

		rows := sqlmock.NewRows([]string{
			"id", "token_hash", "user_id", "kind", "user_agent", "ip_address", "expires_at", "revoked_at", "created_at",
		}).AddRow(tokenID.String(), "hash-1", userID.String(), "refresh", "ua", "10.0.0.1", now.Add(time.Hour), nil, now)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > $2")).
			WithArgs("hash-1", now).
			WillReturnRows(rows)

		token, err := repo.FindUsable(ctx, "hash-1", now)
		require.NoError(t, err)
		assert.Equal(t, tokenID, token.ID)
		assert.Equal(t, userID, token.UserID)
		assert.Equal(t, authDomain.RefreshToken, token.Kind)
		assert.Nil(t, token.RevokedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_FindUsableMiss", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLTokenRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM tokens")).WillReturnError(sql.ErrNoRows)

		token, err := repo.FindUsable(ctx, "missing", now)
		assert.Nil(t, token)
		assert.ErrorIs(t, err, authDomain.ErrTokenNotFound)
	})

	t.Run("Success_RevokeAllIsSingleBulkUpdate", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLTokenRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE tokens SET revoked_at = $1 WHERE user_id = $2 AND revoked_at IS NULL")).
			WithArgs(now, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 4))

		count, err := repo.RevokeAll(ctx, userID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_RevokeAllOfKind", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLTokenRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("WHERE user_id = $2 AND kind = $3 AND revoked_at IS NULL")).
			WithArgs(now, sqlmock.AnyArg(), "access").
			WillReturnResult(sqlmock.NewResult(0, 1))

		count, err := repo.RevokeAllOfKind(ctx, userID, authDomain.AccessToken, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_RevokeAllFails", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLTokenRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE tokens")).WillReturnError(errors.New("boom"))

		_, err := repo.RevokeAll(ctx, userID, now)
		assert.Error(t, err)
	})

	t.Run("Success_LockOwnerInsideTransaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLTokenRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE id = $1 FOR UPDATE")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userID.String()))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE tokens")).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		err := database.NewTxManager(db).WithTx(ctx, func(ctx context.Context) error {
			if err := repo.LockOwner(ctx, userID); err != nil {
				return err
			}
			_, err := repo.RevokeAll(ctx, userID, now)
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_LockOwnerMissingUser", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLTokenRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WillReturnError(sql.ErrNoRows)

		err := repo.LockOwner(ctx, userID)
		assert.ErrorIs(t, err, authDomain.ErrIdentityUnavailable)
	})

	t.Run("Success_DeleteExpiredDryRun", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLTokenRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tokens WHERE expires_at < $1 OR revoked_at < $1")).
			WithArgs(now).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		count, err := repo.DeleteExpired(ctx, now, true)
		require.NoError(t, err)
		assert.Equal(t, int64(7), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_DeleteExpired", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLTokenRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tokens WHERE expires_at < $1 OR revoked_at < $1")).
			WithArgs(now).
			WillReturnResult(sqlmock.NewResult(0, 3))

		count, err := repo.DeleteExpired(ctx, now, false)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLTokenRepository_Integration(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()
	repo := NewPostgreSQLTokenRepository(db)
	userID := testutil.CreateTestUser(t, db, "postgres", "tokens@example.com")

	access := newTestToken(userID, authDomain.AccessToken, "access-hash", time.Hour)
	refresh := newTestToken(userID, authDomain.RefreshToken, "refresh-hash", 24*time.Hour)
	expired := newTestToken(userID, authDomain.AccessToken, "expired-hash", -time.Minute)
	require.NoError(t, repo.Create(ctx, access))
	require.NoError(t, repo.Create(ctx, refresh))
	require.NoError(t, repo.Create(ctx, expired))

	t.Run("FindUsable", func(t *testing.T) {
		found, err := repo.FindUsable(ctx, "access-hash", time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, access.ID, found.ID)
		assert.Equal(t, authDomain.AccessToken, found.Kind)

		_, err = repo.FindUsable(ctx, "expired-hash", time.Now().UTC())
		assert.ErrorIs(t, err, authDomain.ErrTokenNotFound)
	})

	t.Run("RevokeAllOfKindLeavesOtherKind", func(t *testing.T) {
		count, err := repo.RevokeAllOfKind(ctx, userID, authDomain.AccessToken, time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		_, err = repo.FindUsable(ctx, "access-hash", time.Now().UTC())
		assert.ErrorIs(t, err, authDomain.ErrTokenNotFound)

		_, err = repo.FindUsable(ctx, "refresh-hash", time.Now().UTC())
		assert.NoError(t, err)
	})

	t.Run("RevokeAll", func(t *testing.T) {
		count, err := repo.RevokeAll(ctx, userID, time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		_, err = repo.FindUsable(ctx, "refresh-hash", time.Now().UTC())
		assert.ErrorIs(t, err, authDomain.ErrTokenNotFound)
	})

	t.Run("LockOwner", func(t *testing.T) {
		err := database.NewTxManager(db).WithTx(ctx, func(ctx context.Context) error {
			return repo.LockOwner(ctx, userID)
		})
		assert.NoError(t, err)
		assert.ErrorIs(t, repo.LockOwner(ctx, uuid.Must(uuid.NewV7())), authDomain.ErrIdentityUnavailable)
	})

	t.Run("DeleteExpired", func(t *testing.T) {
		count, err := repo.DeleteExpired(ctx, time.Now().UTC().Add(time.Minute), true)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		count, err = repo.DeleteExpired(ctx, time.Now().UTC().Add(time.Minute), false)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
