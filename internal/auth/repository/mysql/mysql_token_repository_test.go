package mysql

import (
	"context"
	"database/sql"
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

func TestMySQLTokenRepository_Statements(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	userIDBytes, err := userID.MarshalBinary()
	require.NoError(t, err)
	now := time.Now().UTC()

	t.Run("Success_CreateUsesBinaryUUIDs", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLTokenRepository(db)
		token := newTestToken(userID, authDomain.RefreshToken, "hash-1", time.Hour)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tokens")).
			WithArgs(sqlmock.AnyArg(), "hash-1", userIDBytes, "refresh", "test-agent", "127.0.0.1",
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, token))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_FindUsable", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLTokenRepository(db)
		tokenID := uuid.Must(uuid.NewV7())
		tokenIDBytes, err := tokenID.MarshalBinary()
		require.NoError(t, err)

		rows := sqlmock.NewRows([]string{
			"id", "token_hash", "user_id", "kind", "user_agent", "ip_address", "expires_at", "revoked_at", "created_at",
		}).AddRow(tokenIDBytes, "hash-1", userIDBytes, "access", "ua", "10.0.0.1", now.Add(time.Hour), nil, now)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > ?")).
			WithArgs("hash-1", now).
			WillReturnRows(rows)

		token, err := repo.FindUsable(ctx, "hash-1", now)
		require.NoError(t, err)
		assert.Equal(t, tokenID, token.ID)
		assert.Equal(t, userID, token.UserID)
		assert.Equal(t, authDomain.AccessToken, token.Kind)
	})

	t.Run("Error_FindUsableMiss", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLTokenRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM tokens")).WillReturnError(sql.ErrNoRows)

		_, err := repo.FindUsable(ctx, "missing", now)
		assert.ErrorIs(t, err, authDomain.ErrTokenNotFound)
	})

	t.Run("Success_RevokeAll", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLTokenRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE tokens SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL")).
			WithArgs(now, userIDBytes).
			WillReturnResult(sqlmock.NewResult(0, 2))

		count, err := repo.RevokeAll(ctx, userID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("Success_RevokeAllOfKind", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLTokenRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("AND kind = ? AND revoked_at IS NULL")).
			WithArgs(now, userIDBytes, "access").
			WillReturnResult(sqlmock.NewResult(0, 1))

		count, err := repo.RevokeAllOfKind(ctx, userID, authDomain.AccessToken, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Success_LockOwner", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLTokenRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE id = ? FOR UPDATE")).
			WithArgs(userIDBytes).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userIDBytes))
		mock.ExpectCommit()

		err := database.NewTxManager(db).WithTx(ctx, func(ctx context.Context) error {
			return repo.LockOwner(ctx, userID)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_LockOwnerMissingUser", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLTokenRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WillReturnError(sql.ErrNoRows)

		assert.ErrorIs(t, repo.LockOwner(ctx, userID), authDomain.ErrIdentityUnavailable)
	})

	t.Run("Success_DeleteExpiredDryRun", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLTokenRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tokens")).
			WithArgs(now, now).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

		count, err := repo.DeleteExpired(ctx, now, true)
		require.NoError(t, err)
		assert.Equal(t, int64(5), count)
	})
}

func TestMySQLTokenRepository_Integration(t *testing.T) {
	testutil.SkipIfNoMySQL(t)

	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	ctx := context.Background()
	repo := NewMySQLTokenRepository(db)
	userID := testutil.CreateTestUser(t, db, "mysql", "tokens@example.com")

	access := newTestToken(userID, authDomain.AccessToken, "access-hash", time.Hour)
	refresh := newTestToken(userID, authDomain.RefreshToken, "refresh-hash", 24*time.Hour)
	require.NoError(t, repo.Create(ctx, access))
	require.NoError(t, repo.Create(ctx, refresh))

	found, err := repo.FindUsable(ctx, "access-hash", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, access.ID, found.ID)
	assert.Equal(t, userID, found.UserID)

	count, err := repo.RevokeAll(ctx, userID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = repo.FindUsable(ctx, "refresh-hash", time.Now().UTC())
	assert.ErrorIs(t, err, authDomain.ErrTokenNotFound)
}
