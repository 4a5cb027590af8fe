package domain

import (
	"time"

	"github.com/google/uuid"
)

// Token is the store-side allow-list record of an issued token. The signed
// token value is never persisted, only its SHA-256 hash.
type Token struct {
	ID        uuid.UUID
	TokenHash string
	UserID    uuid.UUID
	Kind      TokenKind
	UserAgent string
	IPAddress string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// IsUsable reports whether the record exists unrevoked and unexpired at now.
func (t *Token) IsUsable(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// Claims is the decoded, signature-verified payload of a token.
type Claims struct {
	ID        uuid.UUID
	Subject   uuid.UUID
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}
