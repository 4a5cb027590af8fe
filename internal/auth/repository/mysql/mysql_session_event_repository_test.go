package mysql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
)

func TestMySQLSessionEventRepository_Statements(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	userIDBytes, err := userID.MarshalBinary()
	require.NoError(t, err)
	now := time.Now().UTC()

	t.Run("Success_CreateWithoutUser", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLSessionEventRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO session_events")).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "login_failed", "", "", sqlmock.AnyArg(), []byte("sig"), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(ctx, &authDomain.SessionEvent{
			ID:        uuid.Must(uuid.NewV7()),
			EventType: authDomain.EventLoginFailed,
			Signature: []byte("sig"),
			CreatedAt: now,
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_ListByUser", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLSessionEventRepository(db)
		eventID := uuid.Must(uuid.NewV7())
		eventIDBytes, err := eventID.MarshalBinary()
		require.NoError(t, err)

		rows := sqlmock.NewRows([]string{
			"id", "user_id", "event_type", "ip_address", "user_agent", "metadata", "signature", "created_at",
		}).AddRow(eventIDBytes, userIDBytes, "login_succeeded", "1.1.1.1", "ua", nil, []byte("sig"), now)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = ?")).
			WithArgs(userIDBytes, 20, 0).
			WillReturnRows(rows)

		events, err := repo.ListByUser(ctx, userID, 0, 20)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, eventID, events[0].ID)
		require.NotNil(t, events[0].UserID)
		assert.Equal(t, userID, *events[0].UserID)
	})

	t.Run("Success_DeleteOlderThanDryRun", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLSessionEventRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM session_events WHERE created_at < ?")).
			WithArgs(now).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		count, err := repo.DeleteOlderThan(ctx, now, true)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
