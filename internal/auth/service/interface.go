// Package service provides technical services for session token operations.
//
// This package implements signed token encoding and decoding, token hashing for
// the store-side allow-list, session event signing and resolution of the
// signing secret from configuration or a KMS.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
)

// TokenCodec mints and verifies signed, self-describing session tokens.
type TokenCodec interface {
	// Issue mints a token of the given kind for subject that expires after ttl.
	// Returns the signed token value and the claims embedded in it.
	Issue(subject uuid.UUID, kind authDomain.TokenKind, ttl time.Duration) (string, *authDomain.Claims, error)

	// Decode verifies the signature and payload expiry of a token and returns its claims.
	// Returns ErrExpiredToken when the payload expiry has passed and ErrMalformedToken
	// for every other failure (structure, signature, algorithm, issuer, unknown kind).
	Decode(token string) (*authDomain.Claims, error)
}

// TokenService defines the hashing used to key token records in the store.
type TokenService interface {
	// HashToken hashes a signed token value using SHA-256.
	HashToken(plainToken string) string
}

// EventSigner signs and verifies session events.
type EventSigner interface {
	// Sign returns the HMAC-SHA256 signature of the event.
	Sign(event *authDomain.SessionEvent) ([]byte, error)

	// Verify returns ErrSignatureInvalid if the stored signature does not match.
	Verify(event *authDomain.SessionEvent) error
}

// SecretResolver resolves the raw token signing secret.
type SecretResolver interface {
	// Resolve returns secret as-is when keyURI is empty; otherwise secret is
	// treated as base64 ciphertext and decrypted with the KMS key at keyURI.
	Resolve(ctx context.Context, secret, keyURI string) ([]byte, error)
}
