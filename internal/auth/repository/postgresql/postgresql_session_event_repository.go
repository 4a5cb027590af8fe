package postgresql

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

// PostgreSQLSessionEventRepository implements SessionEvent persistence for PostgreSQL.
type PostgreSQLSessionEventRepository struct {
	db *sql.DB
}

// Create inserts a new SessionEvent. Nil metadata is stored as NULL.
func (p *PostgreSQLSessionEventRepository) Create(ctx context.Context, event *authDomain.SessionEvent) error {
	querier := database.GetTx(ctx, p.db)

	var metadataJSON []byte
	var err error

	if event.Metadata != nil {
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal session event metadata")
		}
	}

	query := `INSERT INTO session_events (id, user_id, event_type, ip_address, user_agent, metadata, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
		event.UserID,
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
func (p *PostgreSQLSessionEventRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*authDomain.SessionEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, event_type, ip_address, user_agent, metadata, signature, created_at
			  FROM session_events
			  WHERE user_id = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list session events")
	}
	return scanSessionEvents(rows)
}

// List retrieves all events ordered by id ascending with pagination.
func (p *PostgreSQLSessionEventRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*authDomain.SessionEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, event_type, ip_address, user_agent, metadata, signature, created_at
			  FROM session_events
			  ORDER BY id ASC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list session events")
	}
	return scanSessionEvents(rows)
}

// DeleteOlderThan removes session events created before the specified timestamp.
// When dryRun is true, returns count via SELECT COUNT(*) without deletion.
func (p *PostgreSQLSessionEventRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		query := `SELECT COUNT(*) FROM session_events WHERE created_at < $1`
		var count int64
		if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count session events")
		}
		return count, nil
	}

	query := `DELETE FROM session_events WHERE created_at < $1`
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
		var userID uuid.NullUUID
		var eventType string
		var metadataJSON []byte

		err := rows.Scan(
			&event.ID,
			&userID,
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

		if userID.Valid {
			id := userID.UUID
			event.UserID = &id
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

// NewPostgreSQLSessionEventRepository creates a new PostgreSQL SessionEvent repository.
func NewPostgreSQLSessionEventRepository(db *sql.DB) *PostgreSQLSessionEventRepository {
	return &PostgreSQLSessionEventRepository{db: db}
}
