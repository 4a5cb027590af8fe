package domain

import (
	"github.com/allisson/sessions/internal/errors"
)

// Session token errors.
var (
	// ErrInvalidCredentials is returned for unknown email, wrong password and disabled accounts alike.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrMissingToken indicates the expected token cookie was not sent.
	ErrMissingToken = errors.Wrap(errors.ErrUnauthorized, "missing token")

	// ErrMalformedToken covers bad structure, bad signature, wrong algorithm and unknown kind.
	ErrMalformedToken = errors.Wrap(errors.ErrUnauthorized, "malformed token")

	// ErrExpiredToken indicates the token payload expiry has passed.
	ErrExpiredToken = errors.Wrap(errors.ErrUnauthorized, "expired token")

	// ErrUnexpectedTokenKind indicates an access token was used as refresh token or vice versa.
	ErrUnexpectedTokenKind = errors.Wrap(errors.ErrUnauthorized, "unexpected token kind")

	// ErrInvalidToken indicates the token is not on the allow-list (revoked, expired or never issued).
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrTokenNotFound indicates no usable token record matches the lookup.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrIdentityUnavailable indicates the token owner is deleted, disabled or locked.
	ErrIdentityUnavailable = errors.Wrap(errors.ErrForbidden, "identity unavailable")

	// ErrSignatureInvalid indicates a session event signature does not verify.
	ErrSignatureInvalid = errors.Wrap(errors.ErrInvalidInput, "signature invalid")

	// ErrWeakSigningSecret indicates the configured token signing secret is too short.
	ErrWeakSigningSecret = errors.Wrap(errors.ErrInvalidInput, "signing secret must be at least 32 bytes")
)
