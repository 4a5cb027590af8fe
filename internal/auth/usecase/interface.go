// Package usecase defines business logic interfaces for session token lifecycle operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	userDomain "github.com/allisson/sessions/internal/user/domain"
)

// TokenRepository defines persistence operations for the token allow-list.
// Implementations must support transaction-aware operations via context propagation.
type TokenRepository interface {
	// Create stores a new token record.
	Create(ctx context.Context, token *authDomain.Token) error

	// FindUsable returns the unrevoked, unexpired record with the given hash.
	// Returns ErrTokenNotFound if no usable record matches.
	FindUsable(ctx context.Context, tokenHash string, now time.Time) (*authDomain.Token, error)

	// RevokeAll revokes every live token of the user and returns how many were revoked.
	RevokeAll(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)

	// RevokeAllOfKind revokes every live token of the given kind of the user.
	RevokeAllOfKind(ctx context.Context, userID uuid.UUID, kind authDomain.TokenKind, now time.Time) (int64, error)

	// LockOwner serialises token mutations of one user until the transaction ends.
	// Returns ErrIdentityUnavailable if the user does not exist.
	LockOwner(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired removes records that expired or were revoked before the given time.
	DeleteExpired(ctx context.Context, before time.Time, dryRun bool) (int64, error)
}

// SessionEventRepository defines persistence operations for session events.
type SessionEventRepository interface {
	Create(ctx context.Context, event *authDomain.SessionEvent) error
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*authDomain.SessionEvent, error)
	List(ctx context.Context, offset, limit int) ([]*authDomain.SessionEvent, error)
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// IdentityProvider verifies credentials and resolves token owners.
type IdentityProvider interface {
	// VerifyCredentials returns userDomain.ErrInvalidCredentials for an unknown
	// email, a wrong password or a disabled account. A locked account returns
	// userDomain.ErrUserLocked, which wraps ErrInvalidCredentials.
	VerifyCredentials(ctx context.Context, email, password string) (*userDomain.User, error)

	// GetUserByID returns userDomain.ErrUserNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
}

// SessionUseCase issues, validates and refreshes session tokens.
type SessionUseCase interface {
	// Login verifies credentials, revokes every previous token of the user and
	// mints a fresh access/refresh pair. At most one session per user exists
	// after a successful login.
	Login(ctx context.Context, input *authDomain.LoginInput) (*authDomain.Session, error)

	// Refresh exchanges a usable refresh token for a new access token. Every
	// previous access token of the owner is revoked; the refresh token is left
	// untouched and stays usable until it expires or is revoked.
	Refresh(ctx context.Context, input *authDomain.RefreshInput) (*authDomain.RefreshOutput, error)

	// Authenticate resolves an access token to the principal it was issued for.
	// A token is accepted only if it decodes, is of kind access, is on the
	// allow-list and its owner is still active and not locked.
	Authenticate(ctx context.Context, accessToken string) (*authDomain.Principal, error)

	// RefreshOwner returns the owner of a usable refresh token. Logout uses it
	// when the access token has already expired.
	RefreshOwner(ctx context.Context, refreshToken string) (uuid.UUID, error)
}

// RevocationUseCase invalidates session tokens.
type RevocationUseCase interface {
	// RevokeAll revokes every live token of the user. Takes effect for the
	// very next request presenting one of those tokens.
	RevokeAll(ctx context.Context, userID uuid.UUID, reason authDomain.RevocationReason) error

	// CleanupExpired deletes token records that expired or were revoked more
	// than days ago. When dryRun is true only the count is returned.
	CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error)
}

// SessionEventUseCase records and inspects the signed session event trail.
type SessionEventUseCase interface {
	// Record signs and stores the event. ID and CreatedAt are assigned here.
	Record(ctx context.Context, event *authDomain.SessionEvent) error

	// ListByUser returns the events of a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*authDomain.SessionEvent, error)

	// Cleanup deletes events older than days. When dryRun is true only the count is returned.
	Cleanup(ctx context.Context, days int, dryRun bool) (int64, error)

	// Verify checks the signature of every stored event in batches.
	Verify(ctx context.Context, batchSize int) (*authDomain.VerificationReport, error)
}
