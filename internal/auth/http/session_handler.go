package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	"github.com/allisson/sessions/internal/auth/http/dto"
	authUseCase "github.com/allisson/sessions/internal/auth/usecase"
	apperrors "github.com/allisson/sessions/internal/errors"
	"github.com/allisson/sessions/internal/httputil"
	customValidation "github.com/allisson/sessions/internal/validation"
)

// SessionHandler handles the /auth endpoints: login, refresh, logout and status.
type SessionHandler struct {
	sessionUseCase    authUseCase.SessionUseCase
	revocationUseCase authUseCase.RevocationUseCase
	eventUseCase      authUseCase.SessionEventUseCase
	cookies           *CookieTransport
	logger            *slog.Logger
}

// NewSessionHandler creates a new session handler with required dependencies.
func NewSessionHandler(
	sessionUseCase authUseCase.SessionUseCase,
	revocationUseCase authUseCase.RevocationUseCase,
	eventUseCase authUseCase.SessionEventUseCase,
	cookies *CookieTransport,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessionUseCase:    sessionUseCase,
		revocationUseCase: revocationUseCase,
		eventUseCase:      eventUseCase,
		cookies:           cookies,
		logger:            logger,
	}
}

// LoginHandler authenticates credentials and starts a new session.
// POST /auth/login - Public, IP rate limited.
// Returns 200 OK with both token cookies set. Any earlier session of the user is revoked.
func (h *SessionHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	session, err := h.sessionUseCase.Login(c.Request.Context(), &authDomain.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, authDomain.ErrInvalidCredentials) {
			h.logger.Debug("login failed", slog.String("client_ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, httputil.ErrorResponse{
				Error:   "invalid_credentials",
				Message: "invalid credentials",
			})
			return
		}
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.cookies.SetAccess(c, session.AccessToken, time.Until(session.AccessTokenExpiry))
	h.cookies.SetRefresh(c, session.RefreshToken, time.Until(session.RefreshTokenExpiry))

	c.JSON(http.StatusOK, dto.MapSessionToLoginResponse(session))
}

// RefreshHandler exchanges the refresh token cookie for a new access token.
// POST /auth/refresh - Public, IP rate limited.
// Returns 200 OK with a new access cookie. Any token failure clears both
// cookies and returns 401; the refresh cookie is never rewritten on success.
func (h *SessionHandler) RefreshHandler(c *gin.Context) {
	refreshToken, _ := h.cookies.GetRefresh(c)

	output, err := h.sessionUseCase.Refresh(c.Request.Context(), &authDomain.RefreshInput{
		RefreshToken: refreshToken,
		UserAgent:    c.Request.UserAgent(),
		IPAddress:    c.ClientIP(),
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthorized) {
			h.logger.Debug("refresh failed", slog.Any("error", err))
			h.cookies.ClearAll(c)
			c.JSON(http.StatusUnauthorized, httputil.ErrorResponse{
				Error:   "unauthorized",
				Message: "Authentication is required",
			})
			return
		}
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.cookies.SetAccess(c, output.AccessToken, time.Until(output.AccessTokenExpiry))

	c.JSON(http.StatusOK, dto.RefreshResponse{AccessTokenExpiresAt: output.AccessTokenExpiry})
}

// LogoutHandler ends the caller's session.
// POST /auth/logout - Always 200 OK and always clears both cookies, so it is
// safe to repeat. Tokens are revoked for the authenticated principal or, when
// the access token is gone, for the owner of a usable refresh cookie.
func (h *SessionHandler) LogoutHandler(c *gin.Context) {
	if userID, ok := h.logoutOwner(c); ok {
		err := h.revocationUseCase.RevokeAll(c.Request.Context(), userID, authDomain.ReasonLogout)
		if err != nil {
			h.logger.Error("failed to revoke sessions on logout",
				slog.String("user_id", userID.String()),
				slog.Any("error", err))
		}
	}

	h.cookies.ClearAll(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "logged out"})
}

func (h *SessionHandler) logoutOwner(c *gin.Context) (uuid.UUID, bool) {
	if principal, ok := GetPrincipal(c.Request.Context()); ok {
		return principal.UserID, true
	}

	refreshToken, ok := h.cookies.GetRefresh(c)
	if !ok {
		return uuid.Nil, false
	}

	userID, err := h.sessionUseCase.RefreshOwner(c.Request.Context(), refreshToken)
	if err != nil {
		h.logger.Debug("logout without a usable refresh token", slog.Any("error", err))
		return uuid.Nil, false
	}
	return userID, true
}

// LogoutAllHandler revokes every token of the caller on every device.
// POST /auth/logout-all - 400 without an access cookie, 401 if the cookie did
// not authenticate, otherwise 200 OK with both cookies cleared.
func (h *SessionHandler) LogoutAllHandler(c *gin.Context) {
	if _, ok := h.cookies.GetAccess(c); !ok {
		c.JSON(http.StatusBadRequest, httputil.ErrorResponse{
			Error:   "missing_token",
			Message: "access token cookie is required",
		})
		return
	}

	principal, ok := GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	err := h.revocationUseCase.RevokeAll(c.Request.Context(), principal.UserID, authDomain.ReasonLogoutAll)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.cookies.ClearAll(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "logged out from all devices"})
}

// StatusHandler reports which session cookies are present and whether the
// request authenticated. Token values are never echoed.
// GET /auth/status - Always 200 OK.
func (h *SessionHandler) StatusHandler(c *gin.Context) {
	_, hasAccess := h.cookies.GetAccess(c)
	_, hasRefresh := h.cookies.GetRefresh(c)

	response := dto.StatusResponse{
		CookiesPresent:      hasAccess || hasRefresh,
		AccessTokenPresent:  hasAccess,
		RefreshTokenPresent: hasRefresh,
	}

	if principal, ok := GetPrincipal(c.Request.Context()); ok {
		response.Authenticated = true
		response.UserID = principal.UserID.String()
	}

	c.JSON(http.StatusOK, response)
}

// ListEventsHandler lists the caller's session events, newest first.
// GET /auth/events?offset=0&limit=50 - Requires authentication.
func (h *SessionHandler) ListEventsHandler(c *gin.Context) {
	principal, ok := GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	events, err := h.eventUseCase.ListByUser(c.Request.Context(), principal.UserID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSessionEventsToListResponse(events))
}
