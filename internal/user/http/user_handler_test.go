package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	authHTTP "github.com/allisson/sessions/internal/auth/http"
	"github.com/allisson/sessions/internal/user/domain"
	"github.com/allisson/sessions/internal/user/http/dto"
	"github.com/allisson/sessions/internal/user/usecase"
	usecaseMocks "github.com/allisson/sessions/internal/user/usecase/mocks"
)

func setupTestHandler(t *testing.T) (*UserHandler, *usecaseMocks.MockUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockUseCase := &usecaseMocks.MockUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewUserHandler(mockUseCase, authHTTP.NewCookieTransport("", false), logger)
	return handler, mockUseCase
}

// newRouter registers handler at method/path, optionally behind a fake
// authenticated principal.
func newRouter(method, path string, principal *authDomain.Principal, handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	handlers := []gin.HandlerFunc{}
	if principal != nil {
		handlers = append(handlers, func(c *gin.Context) {
			c.Request = c.Request.WithContext(authHTTP.WithPrincipal(c.Request.Context(), principal))
			c.Next()
		})
	}
	router.Handle(method, path, append(handlers, handler)...)
	return router
}

func createJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func assertCookiesCleared(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	cleared := map[string]bool{}
	for _, cookie := range w.Result().Cookies() {
		if cookie.MaxAge < 0 {
			cleared[cookie.Name] = true
		}
	}
	assert.True(t, cleared[authHTTP.AccessTokenCookie], "access cookie cleared")
	assert.True(t, cleared[authHTTP.RefreshTokenCookie], "refresh cookie cleared")
}

func TestUserHandler_RegisterHandler(t *testing.T) {
	validRequest := dto.RegisterUserRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "S3cure!Passw0rd",
	}

	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		router := newRouter(http.MethodPost, "/v1/users", nil, handler.RegisterHandler)

		user := &domain.User{
			ID:        uuid.Must(uuid.NewV7()),
			Name:      "Alice",
			Email:     "alice@example.com",
			Password:  "$argon2id$hash",
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		mockUseCase.On("RegisterUser", mock.Anything, usecase.RegisterUserInput{
			Name:     "Alice",
			Email:    "alice@example.com",
			Password: "S3cure!Passw0rd",
		}).Return(user, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONRequest(t, http.MethodPost, "/v1/users", validRequest))

		assert.Equal(t, http.StatusCreated, w.Code)
		var response dto.UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, user.ID, response.ID)
		assert.True(t, response.IsActive)
		assert.NotContains(t, w.Body.String(), "argon2id")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_Conflict", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		router := newRouter(http.MethodPost, "/v1/users", nil, handler.RegisterHandler)

		mockUseCase.On("RegisterUser", mock.Anything, mock.Anything).Return(nil, domain.ErrUserAlreadyExists)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONRequest(t, http.MethodPost, "/v1/users", validRequest))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Error_WeakPassword", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		router := newRouter(http.MethodPost, "/v1/users", nil, handler.RegisterHandler)

		req := validRequest
		req.Password = "password"

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONRequest(t, http.MethodPost, "/v1/users", req))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		router := newRouter(http.MethodPost, "/v1/users", nil, handler.RegisterHandler)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewBufferString("not json")))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestUserHandler_MeHandler(t *testing.T) {
	principal := &authDomain.Principal{UserID: uuid.Must(uuid.NewV7())}

	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		router := newRouter(http.MethodGet, "/v1/users/me", principal, handler.MeHandler)

		mockUseCase.On("GetUserByID", mock.Anything, principal.UserID).Return(&domain.User{
			ID:       principal.UserID,
			Name:     "Alice",
			Email:    "alice@example.com",
			IsActive: true,
		}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/users/me", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice@example.com")
	})

	t.Run("Error_Anonymous", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		router := newRouter(http.MethodGet, "/v1/users/me", nil, handler.MeHandler)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/users/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		router := newRouter(http.MethodGet, "/v1/users/me", principal, handler.MeHandler)

		mockUseCase.On("GetUserByID", mock.Anything, principal.UserID).Return(nil, domain.ErrUserNotFound)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/users/me", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUserHandler_ChangePasswordHandler(t *testing.T) {
	principal := &authDomain.Principal{UserID: uuid.Must(uuid.NewV7())}
	validRequest := dto.ChangePasswordRequest{
		CurrentPassword: "Old!Passw0rd",
		NewPassword:     "N3w!Passw0rd",
	}

	t.Run("Success_ClearsCookies", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		router := newRouter(http.MethodPut, "/v1/users/me/password", principal, handler.ChangePasswordHandler)

		mockUseCase.On("ChangePassword", mock.Anything, principal.UserID, usecase.ChangePasswordInput{
			CurrentPassword: "Old!Passw0rd",
			NewPassword:     "N3w!Passw0rd",
		}).Return(nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONRequest(t, http.MethodPut, "/v1/users/me/password", validRequest))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assertCookiesCleared(t, w)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_WrongCurrentPassword", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		router := newRouter(http.MethodPut, "/v1/users/me/password", principal, handler.ChangePasswordHandler)

		mockUseCase.On("ChangePassword", mock.Anything, principal.UserID, mock.Anything).
			Return(domain.ErrInvalidCredentials)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONRequest(t, http.MethodPut, "/v1/users/me/password", validRequest))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("Error_WeakNewPassword", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		router := newRouter(http.MethodPut, "/v1/users/me/password", principal, handler.ChangePasswordHandler)

		req := validRequest
		req.NewPassword = "short"

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONRequest(t, http.MethodPut, "/v1/users/me/password", req))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "ChangePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_Anonymous", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		router := newRouter(http.MethodPut, "/v1/users/me/password", nil, handler.ChangePasswordHandler)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONRequest(t, http.MethodPut, "/v1/users/me/password", validRequest))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUserHandler_DeleteHandler(t *testing.T) {
	principal := &authDomain.Principal{UserID: uuid.Must(uuid.NewV7())}

	t.Run("Success_ClearsCookies", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		router := newRouter(http.MethodDelete, "/v1/users/me", principal, handler.DeleteHandler)

		mockUseCase.On("DeleteUser", mock.Anything, principal.UserID).Return(nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/users/me", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assertCookiesCleared(t, w)
	})

	t.Run("Error_Internal", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		router := newRouter(http.MethodDelete, "/v1/users/me", principal, handler.DeleteHandler)

		mockUseCase.On("DeleteUser", mock.Anything, principal.UserID).Return(errors.New("database down"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/users/me", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
