// Package domain defines session token domain models.
// Covers token records, decoded claims, principals and the signed session event trail.
package domain

// TokenKind distinguishes short-lived access tokens from long-lived refresh tokens.
// A token of one kind is never accepted where the other is expected.
type TokenKind string

const (
	// AccessToken authenticates individual requests.
	AccessToken TokenKind = "access"

	// RefreshToken is exchanged for a new access token.
	RefreshToken TokenKind = "refresh"
)

// IsValid reports whether the kind is one of the known token kinds.
func (k TokenKind) IsValid() bool {
	return k == AccessToken || k == RefreshToken
}

// RevocationReason records why every token of a user was revoked.
type RevocationReason string

const (
	ReasonLogin           RevocationReason = "login"
	ReasonLogout          RevocationReason = "logout"
	ReasonLogoutAll       RevocationReason = "logout_all"
	ReasonPasswordChanged RevocationReason = "password_changed"
	ReasonDeactivated     RevocationReason = "deactivated"
	ReasonDeleted         RevocationReason = "deleted"
	ReasonAdmin           RevocationReason = "admin"
)

// SessionEventType identifies a session lifecycle transition.
type SessionEventType string

const (
	EventLoginSucceeded SessionEventType = "login_succeeded"
	EventLoginFailed    SessionEventType = "login_failed"
	EventRefreshed      SessionEventType = "refreshed"
	EventRevoked        SessionEventType = "revoked"
)
