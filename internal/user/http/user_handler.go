// Package http provides HTTP handlers for user-related operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/sessions/internal/auth/http"
	apperrors "github.com/allisson/sessions/internal/errors"
	"github.com/allisson/sessions/internal/httputil"
	"github.com/allisson/sessions/internal/user/http/dto"
	"github.com/allisson/sessions/internal/user/usecase"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userUseCase usecase.UseCase
	cookies     *authHTTP.CookieTransport
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(
	userUseCase usecase.UseCase,
	cookies *authHTTP.CookieTransport,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		cookies:     cookies,
		logger:      logger,
	}
}

// RegisterHandler creates a new account.
// POST /v1/users - Public. Returns 201 Created; does not start a session.
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	user, err := h.userUseCase.RegisterUser(c.Request.Context(), dto.ToRegisterUserInput(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

// MeHandler returns the authenticated user.
// GET /v1/users/me - Requires authentication.
func (h *UserHandler) MeHandler(c *gin.Context) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	user, err := h.userUseCase.GetUserByID(c.Request.Context(), principal.UserID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// ChangePasswordHandler replaces the caller's password.
// PUT /v1/users/me/password - Requires authentication.
// Returns 204 No Content. Every session of the user, this one included, is
// revoked and the cookies are cleared, so the client must log in again.
func (h *UserHandler) ChangePasswordHandler(c *gin.Context) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	err := h.userUseCase.ChangePassword(c.Request.Context(), principal.UserID, dto.ToChangePasswordInput(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.cookies.ClearAll(c)
	c.Status(http.StatusNoContent)
}

// DeleteHandler removes the caller's account.
// DELETE /v1/users/me - Requires authentication. Returns 204 No Content with cookies cleared.
func (h *UserHandler) DeleteHandler(c *gin.Context) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if err := h.userUseCase.DeleteUser(c.Request.Context(), principal.UserID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.cookies.ClearAll(c)
	c.Status(http.StatusNoContent)
}
