package service

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestCodec(t *testing.T, now func() time.Time) *tokenCodec {
	t.Helper()
	codec, err := newTokenCodec(testSecret, "sessions-test", now)
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodec(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		codec, err := NewTokenCodec(testSecret, "sessions")
		require.NoError(t, err)
		assert.NotNil(t, codec)
	})

	t.Run("Error_WeakSecret", func(t *testing.T) {
		codec, err := NewTokenCodec([]byte("short"), "sessions")
		assert.ErrorIs(t, err, authDomain.ErrWeakSigningSecret)
		assert.Nil(t, codec)
	})
}

func TestTokenCodec_IssueAndDecode(t *testing.T) {
	codec := newTestCodec(t, time.Now)
	subject := uuid.Must(uuid.NewV7())

	for _, kind := range []authDomain.TokenKind{authDomain.AccessToken, authDomain.RefreshToken} {
		t.Run("Success_"+string(kind), func(t *testing.T) {
			token, issued, err := codec.Issue(subject, kind, 15*time.Minute)
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.Equal(t, subject, issued.Subject)
			assert.Equal(t, kind, issued.Kind)
			assert.Equal(t, 15*time.Minute, issued.ExpiresAt.Sub(issued.IssuedAt))

			decoded, err := codec.Decode(token)
			require.NoError(t, err)
			assert.Equal(t, issued.ID, decoded.ID)
			assert.Equal(t, subject, decoded.Subject)
			assert.Equal(t, kind, decoded.Kind)
			assert.True(t, issued.ExpiresAt.Equal(decoded.ExpiresAt))
			assert.True(t, issued.IssuedAt.Equal(decoded.IssuedAt))
		})
	}

	t.Run("Success_UniqueTokensWithinSameSecond", func(t *testing.T) {
		fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		fixedCodec := newTestCodec(t, func() time.Time { return fixed })

		first, _, err := fixedCodec.Issue(subject, authDomain.AccessToken, time.Hour)
		require.NoError(t, err)
		second, _, err := fixedCodec.Issue(subject, authDomain.AccessToken, time.Hour)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("Error_UnknownKind", func(t *testing.T) {
		token, claims, err := codec.Issue(subject, authDomain.TokenKind("id"), time.Hour)
		assert.Error(t, err)
		assert.Empty(t, token)
		assert.Nil(t, claims)
	})

	t.Run("Error_NonPositiveTTL", func(t *testing.T) {
		_, _, err := codec.Issue(subject, authDomain.AccessToken, 0)
		assert.Error(t, err)
	})
}

func TestTokenCodec_Decode(t *testing.T) {
	subject := uuid.Must(uuid.NewV7())

	t.Run("Error_Expired", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		issuer := newTestCodec(t, func() time.Time { return past })
		token, _, err := issuer.Issue(subject, authDomain.AccessToken, time.Hour)
		require.NoError(t, err)

		_, err = newTestCodec(t, time.Now).Decode(token)
		assert.ErrorIs(t, err, authDomain.ErrExpiredToken)
	})

	t.Run("Error_TamperedPayload", func(t *testing.T) {
		codec := newTestCodec(t, time.Now)
		token, _, err := codec.Issue(subject, authDomain.AccessToken, time.Hour)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		payload, err := base64.RawURLEncoding.DecodeString(parts[1])
		require.NoError(t, err)
		forged := strings.Replace(string(payload), `"kind":"access"`, `"kind":"refresh"`, 1)
		require.NotEqual(t, string(payload), forged)
		parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

		_, err = codec.Decode(strings.Join(parts, "."))
		assert.ErrorIs(t, err, authDomain.ErrMalformedToken)
	})

	t.Run("Error_TamperedSignature", func(t *testing.T) {
		codec := newTestCodec(t, time.Now)
		token, _, err := codec.Issue(subject, authDomain.AccessToken, time.Hour)
		require.NoError(t, err)

		// Flip the first signature character; trailing base64 bits may be ignored
		sigStart := strings.LastIndex(token, ".") + 1
		replacement := "A"
		if token[sigStart] == 'A' {
			replacement = "B"
		}

		_, err = codec.Decode(token[:sigStart] + replacement + token[sigStart+1:])
		assert.ErrorIs(t, err, authDomain.ErrMalformedToken)
	})

	t.Run("Error_DifferentSecret", func(t *testing.T) {
		token, _, err := newTestCodec(t, time.Now).Issue(subject, authDomain.AccessToken, time.Hour)
		require.NoError(t, err)

		other, err := newTokenCodec([]byte("abcdef0123456789abcdef0123456789"), "sessions-test", time.Now)
		require.NoError(t, err)

		_, err = other.Decode(token)
		assert.ErrorIs(t, err, authDomain.ErrMalformedToken)
	})

	t.Run("Error_DifferentIssuer", func(t *testing.T) {
		token, _, err := newTestCodec(t, time.Now).Issue(subject, authDomain.AccessToken, time.Hour)
		require.NoError(t, err)

		other, err := newTokenCodec(testSecret, "someone-else", time.Now)
		require.NoError(t, err)

		_, err = other.Decode(token)
		assert.ErrorIs(t, err, authDomain.ErrMalformedToken)
	})

	t.Run("Error_NoneAlgorithm", func(t *testing.T) {
		claims := tokenClaims{
			Kind: authDomain.AccessToken,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.Must(uuid.NewV7()).String(),
				Subject:   subject.String(),
				Issuer:    "sessions-test",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = newTestCodec(t, time.Now).Decode(token)
		assert.ErrorIs(t, err, authDomain.ErrMalformedToken)
	})

	t.Run("Error_UnknownKind", func(t *testing.T) {
		codec := newTestCodec(t, time.Now)
		claims := tokenClaims{
			Kind: authDomain.TokenKind("id"),
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.Must(uuid.NewV7()).String(),
				Subject:   subject.String(),
				Issuer:    "sessions-test",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(codec.key)
		require.NoError(t, err)

		_, err = codec.Decode(token)
		assert.ErrorIs(t, err, authDomain.ErrMalformedToken)
	})

	t.Run("Error_MissingExpiry", func(t *testing.T) {
		codec := newTestCodec(t, time.Now)
		claims := tokenClaims{
			Kind: authDomain.AccessToken,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:      uuid.Must(uuid.NewV7()).String(),
				Subject: subject.String(),
				Issuer:  "sessions-test",
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(codec.key)
		require.NoError(t, err)

		_, err = codec.Decode(token)
		assert.ErrorIs(t, err, authDomain.ErrMalformedToken)
	})

	t.Run("Error_Garbage", func(t *testing.T) {
		codec := newTestCodec(t, time.Now)
		for _, token := range []string{"", "not-a-token", "a.b.c"} {
			_, err := codec.Decode(token)
			assert.ErrorIs(t, err, authDomain.ErrMalformedToken, token)
		}
	})
}
