package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionEvent records a session lifecycle transition. Signature is an
// HMAC-SHA256 over the canonical form of the event and makes tampering
// detectable. UserID is nil for failed logins of unknown accounts.
type SessionEvent struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	EventType SessionEventType
	IPAddress string
	UserAgent string
	Metadata  map[string]any
	Signature []byte
	CreatedAt time.Time
}

// VerificationReport summarises a signature check over stored session events.
type VerificationReport struct {
	Total      int64
	Valid      int64
	Invalid    int64
	InvalidIDs []uuid.UUID
}
