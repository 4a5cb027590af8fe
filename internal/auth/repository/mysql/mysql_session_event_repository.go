package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	"github.com/allisson/sessions/internal/database"
	apperrors "github.com/allisson/sessions/internal/errors"
)

// MySQLSessionEventRepository implements SessionEvent persistence for MySQL.
// Uses BINARY(16) for UUIDs.
type MySQLSessionEventRepository struct {
	db *sql.DB
}

// Create inserts a new SessionEvent. Nil user id and nil metadata are stored as NULL.
func (m *MySQLSessionEventRepository) Create(ctx context.Context, event *authDomain.SessionEvent) error {
	querier := database.GetTx(ctx, m.db)

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal session event id")
	}

	var userID []byte
	if event.UserID != nil {
		userID, err = event.UserID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal user id")
		}
	}

	var metadataJSON []byte
	if event.Metadata != nil {
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal session event metadata")
		}
	}

	query := `INSERT INTO session_events (id, user_id, event_type, ip_address, user_agent, metadata, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		userID,
		string(event.EventType),
		event.IPAddress,
		event.UserAgent,
		metadataJSON,
		event.Signature,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create session event")
	}

	return nil
}

// ListByUser retrieves the events of a user, newest first, with pagination.
func (m *MySQLSessionEventRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*authDomain.SessionEvent, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT id, user_id, event_type, ip_address, user_agent, metadata, signature, created_at
			  FROM session_events
			  WHERE user_id = ?
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, id, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list session events")
	}
	return scanSessionEvents(rows)
}

// List retrieves all events ordered by id ascending with pagination.
func (m *MySQLSessionEventRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*authDomain.SessionEvent, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, event_type, ip_address, user_agent, metadata, signature, created_at
			  FROM session_events
			  ORDER BY id ASC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list session events")
	}
	return scanSessionEvents(rows)
}

// DeleteOlderThan removes session events created before the specified timestamp.
// When dryRun is true, returns count via SELECT COUNT(*) without deletion.
func (m *MySQLSessionEventRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		query := `SELECT COUNT(*) FROM session_events WHERE created_at < ?`
		var count int64
		if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count session events")
		}
		return count, nil
	}

	query := `DELETE FROM session_events WHERE created_at < ?`
	result, err := querier.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete session events")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}

	return count, nil
}

func scanSessionEvents(rows *sql.Rows) ([]*authDomain.SessionEvent, error) {
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*authDomain.SessionEvent, 0)
	for rows.Next() {
		var event authDomain.SessionEvent
		var idBytes []byte
		var userIDBytes []byte
		var eventType string
		var metadataJSON []byte

		err := rows.Scan(
			&idBytes,
			&userIDBytes,
			&eventType,
			&event.IPAddress,
			&event.UserAgent,
			&metadataJSON,
			&event.Signature,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan session event")
		}

		if err := event.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal session event id")
		}

		if userIDBytes != nil {
			var userID uuid.UUID
			if err := userID.UnmarshalBinary(userIDBytes); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal user id")
			}
			event.UserID = &userID
		}

		event.EventType = authDomain.SessionEventType(eventType)

		if metadataJSON != nil {
			if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal session event metadata")
			}
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate session events")
	}

	return events, nil
}

// NewMySQLSessionEventRepository creates a new MySQL SessionEvent repository.
func NewMySQLSessionEventRepository(db *sql.DB) *MySQLSessionEventRepository {
	return &MySQLSessionEventRepository{db: db}
}
