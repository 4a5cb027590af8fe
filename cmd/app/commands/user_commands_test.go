package commands

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	authMocks "github.com/allisson/sessions/internal/auth/usecase/mocks"
	userDomain "github.com/allisson/sessions/internal/user/domain"
	userUsecase "github.com/allisson/sessions/internal/user/usecase"
	userMocks "github.com/allisson/sessions/internal/user/usecase/mocks"
)

func testUser() *userDomain.User {
	return &userDomain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Name:     "Alice",
		Email:    "alice@example.com",
		IsActive: true,
	}
}

func TestRunCreateUser(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("password-flag-text", func(t *testing.T) {
		user := testUser()
		mockUseCase := &userMocks.MockUseCase{}
		mockUseCase.On("RegisterUser", ctx, userUsecase.RegisterUserInput{
			Name:     "Alice",
			Email:    "alice@example.com",
			Password: "S3cure!Passw0rd",
		}).Return(user, nil)

		var out bytes.Buffer
		err := RunCreateUser(ctx, mockUseCase, logger, "Alice", "alice@example.com", "S3cure!Passw0rd", "text",
			IOTuple{Writer: &out})

		require.NoError(t, err)
		require.Contains(t, out.String(), user.ID.String())
		mockUseCase.AssertExpectations(t)
	})

	t.Run("interactive-password-json", func(t *testing.T) {
		user := testUser()
		mockUseCase := &userMocks.MockUseCase{}
		mockUseCase.On("RegisterUser", ctx, mock.MatchedBy(func(in userUsecase.RegisterUserInput) bool {
			return in.Password == "S3cure!Passw0rd"
		})).Return(user, nil)

		var out bytes.Buffer
		err := RunCreateUser(ctx, mockUseCase, logger, "Alice", "alice@example.com", "", "json", IOTuple{
			Reader: strings.NewReader("S3cure!Passw0rd\n"),
			Writer: &out,
		})

		require.NoError(t, err)
		require.Contains(t, out.String(), `"email": "alice@example.com"`)
		require.NotContains(t, out.String(), "S3cure!Passw0rd")
	})

	t.Run("empty-interactive-password", func(t *testing.T) {
		mockUseCase := &userMocks.MockUseCase{}

		err := RunCreateUser(ctx, mockUseCase, logger, "Alice", "alice@example.com", "", "text", IOTuple{
			Reader: strings.NewReader("\n"),
			Writer: &bytes.Buffer{},
		})

		require.Error(t, err)
		mockUseCase.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything)
	})

	t.Run("duplicate-email", func(t *testing.T) {
		mockUseCase := &userMocks.MockUseCase{}
		mockUseCase.On("RegisterUser", ctx, mock.Anything).Return(nil, userDomain.ErrUserAlreadyExists)

		err := RunCreateUser(ctx, mockUseCase, logger, "Alice", "alice@example.com", "S3cure!Passw0rd", "text",
			IOTuple{Writer: &bytes.Buffer{}})

		require.ErrorIs(t, err, userDomain.ErrUserAlreadyExists)
	})
}

func TestRunDeactivateUser(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("success", func(t *testing.T) {
		user := testUser()
		mockUseCase := &userMocks.MockUseCase{}
		mockUseCase.On("GetUserByEmail", ctx, "alice@example.com").Return(user, nil)
		mockUseCase.On("DeactivateUser", ctx, user.ID).Return(nil)

		var out bytes.Buffer
		err := RunDeactivateUser(ctx, mockUseCase, logger, &out, "alice@example.com", "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"is_active": false`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("unknown-user", func(t *testing.T) {
		mockUseCase := &userMocks.MockUseCase{}
		mockUseCase.On("GetUserByEmail", ctx, "ghost@example.com").Return(nil, userDomain.ErrUserNotFound)

		err := RunDeactivateUser(ctx, mockUseCase, logger, &bytes.Buffer{}, "ghost@example.com", "text")

		require.ErrorIs(t, err, userDomain.ErrUserNotFound)
		mockUseCase.AssertNotCalled(t, "DeactivateUser", mock.Anything, mock.Anything)
	})
}

func TestRunRevokeSessions(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("success", func(t *testing.T) {
		user := testUser()
		userUseCase := &userMocks.MockUseCase{}
		userUseCase.On("GetUserByEmail", ctx, "alice@example.com").Return(user, nil)
		revocation := &authMocks.MockRevocationUseCase{}
		revocation.On("RevokeAll", ctx, user.ID, authDomain.ReasonAdmin).Return(nil)

		var out bytes.Buffer
		err := RunRevokeSessions(ctx, userUseCase, revocation, logger, &out, "alice@example.com", "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "All sessions of user "+user.ID.String()+" revoked")
		revocation.AssertExpectations(t)
	})

	t.Run("unknown-user", func(t *testing.T) {
		userUseCase := &userMocks.MockUseCase{}
		userUseCase.On("GetUserByEmail", ctx, "ghost@example.com").Return(nil, userDomain.ErrUserNotFound)
		revocation := &authMocks.MockRevocationUseCase{}

		err := RunRevokeSessions(ctx, userUseCase, revocation, logger, &bytes.Buffer{}, "ghost@example.com", "text")

		require.Error(t, err)
		revocation.AssertNotCalled(t, "RevokeAll", mock.Anything, mock.Anything, mock.Anything)
	})
}
