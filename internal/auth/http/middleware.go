package http

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	authUseCase "github.com/allisson/sessions/internal/auth/usecase"
	apperrors "github.com/allisson/sessions/internal/errors"
	"github.com/allisson/sessions/internal/httputil"
)

// DefaultPublicPaths are never authenticated. A trailing "/*" matches the prefix
// and everything below it.
var DefaultPublicPaths = []string{
	"/auth/login",
	"/auth/refresh",
	"/health",
	"/ready",
	"/docs/*",
}

// IsPublicPath reports whether path matches an entry of publicPaths.
func IsPublicPath(path string, publicPaths []string) bool {
	for _, pattern := range publicPaths {
		if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == pattern {
			return true
		}
	}
	return false
}

// AuthenticationMiddleware resolves the access token cookie to a principal.
//
// The middleware never rejects a request: on any failure it clears the access
// cookie, logs the reason and lets the request continue anonymously. Handlers
// that need a principal are guarded by RequireAuthentication.
//
// Steps for non-public paths:
//  1. Read the access token cookie (absent ⇒ anonymous, nothing cleared)
//  2. SessionUseCase.Authenticate (decode, kind, allow-list, identity)
//  3. Store the principal in the request context via WithPrincipal
func AuthenticationMiddleware(
	sessionUseCase authUseCase.SessionUseCase,
	cookies *CookieTransport,
	publicPaths []string,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsPublicPath(c.Request.URL.Path, publicPaths) {
			c.Next()
			return
		}

		token, ok := cookies.GetAccess(c)
		if !ok {
			c.Next()
			return
		}

		principal, err := sessionUseCase.Authenticate(c.Request.Context(), token)
		if err != nil {
			cookies.ClearAccess(c)
			logAuthenticationFailure(logger, c.Request.URL.Path, err)
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// logAuthenticationFailure keeps expected token failures at debug level and
// surfaces infrastructure errors.
func logAuthenticationFailure(logger *slog.Logger, path string, err error) {
	reason := "error"
	switch {
	case errors.Is(err, authDomain.ErrExpiredToken):
		reason = "expired"
	case errors.Is(err, authDomain.ErrMalformedToken):
		reason = "malformed"
	case errors.Is(err, authDomain.ErrUnexpectedTokenKind):
		reason = "unexpected_kind"
	case errors.Is(err, authDomain.ErrInvalidToken):
		reason = "revoked"
	case errors.Is(err, authDomain.ErrIdentityUnavailable):
		reason = "identity_unavailable"
	default:
		logger.Error("authentication failed",
			slog.String("path", path),
			slog.Any("error", err))
		return
	}

	logger.Debug("authentication failed",
		slog.String("path", path),
		slog.String("reason", reason))
}

// RequireAuthentication rejects requests without a principal with 401.
// MUST be used after AuthenticationMiddleware.
func RequireAuthentication(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetPrincipal(c.Request.Context()); !ok {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}
		c.Next()
	}
}
