package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	apperrors "github.com/allisson/sessions/internal/errors"
)

// tokenClaims is the JWT payload. Kind is a private claim; every other
// field is a registered claim.
type tokenClaims struct {
	Kind authDomain.TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// tokenCodec implements TokenCodec with HS256 JWTs.
type tokenCodec struct {
	key    []byte
	issuer string
	parser *jwt.Parser
	now    func() time.Time
}

// NewTokenCodec creates a TokenCodec signing with a key derived from secret.
// Returns ErrWeakSigningSecret if secret is shorter than MinSigningSecretLength.
func NewTokenCodec(secret []byte, issuer string) (TokenCodec, error) {
	return newTokenCodec(secret, issuer, time.Now)
}

func newTokenCodec(secret []byte, issuer string, now func() time.Time) (*tokenCodec, error) {
	if len(secret) < MinSigningSecretLength {
		return nil, authDomain.ErrWeakSigningSecret
	}

	key, err := deriveKey(secret, tokenSigningInfo)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to derive token signing key")
	}

	return &tokenCodec{
		key:    key,
		issuer: issuer,
		now:    now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
		),
	}, nil
}

// Issue mints a signed token. Each token carries a UUIDv7 jti, so two tokens
// minted for the same subject within the same second still differ.
func (c *tokenCodec) Issue(
	subject uuid.UUID,
	kind authDomain.TokenKind,
	ttl time.Duration,
) (string, *authDomain.Claims, error) {
	if !kind.IsValid() {
		return "", nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown token kind %q", kind)
	}
	if ttl <= 0 {
		return "", nil, apperrors.Wrap(apperrors.ErrInvalidInput, "token ttl must be positive")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", nil, apperrors.Wrap(err, "failed to generate token id")
	}

	// JWT timestamps have second precision
	issuedAt := c.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl)

	claims := tokenClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.String(),
			Subject:   subject.String(),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", nil, apperrors.Wrap(err, "failed to sign token")
	}

	return signed, &authDomain.Claims{
		ID:        id,
		Subject:   subject,
		Kind:      kind,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Decode verifies token and returns its claims.
func (c *tokenCodec) Decode(token string) (*authDomain.Claims, error) {
	if token == "" {
		return nil, authDomain.ErrMalformedToken
	}

	var claims tokenClaims
	parsed, err := c.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		// A forged token must never be reported as merely expired
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, authDomain.ErrMalformedToken
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, authDomain.ErrExpiredToken
		}
		return nil, authDomain.ErrMalformedToken
	}
	if !parsed.Valid || !claims.Kind.IsValid() {
		return nil, authDomain.ErrMalformedToken
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, authDomain.ErrMalformedToken
	}
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, authDomain.ErrMalformedToken
	}

	result := &authDomain.Claims{
		ID:        id,
		Subject:   subject,
		Kind:      claims.Kind,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}

	return result, nil
}
