package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	"github.com/allisson/sessions/internal/auth/usecase"
	usecaseMocks "github.com/allisson/sessions/internal/auth/usecase/mocks"
)

// mockBusinessMetrics is a local mock for metrics.BusinessMetrics to avoid dependency issues.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func expectMetrics(ctx context.Context, m *mockBusinessMetrics, operation, status string) {
	m.On("RecordOperation", ctx, "auth", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "auth", operation, mock.AnythingOfType("time.Duration"), status).
		Return().
		Once()
}

func TestSessionUseCaseWithMetrics(t *testing.T) {
	mockNext := &usecaseMocks.MockSessionUseCase{}
	mockMetrics := &mockBusinessMetrics{}
	uc := usecase.NewSessionUseCaseWithMetrics(mockNext, mockMetrics)

	ctx := context.Background()

	t.Run("Login success", func(t *testing.T) {
		input := &authDomain.LoginInput{Email: "john@example.com"}
		session := &authDomain.Session{AccessToken: "a", RefreshToken: "r"}

		mockNext.On("Login", ctx, input).Return(session, nil).Once()
		expectMetrics(ctx, mockMetrics, "login", "success")

		res, err := uc.Login(ctx, input)
		assert.NoError(t, err)
		assert.Equal(t, session, res)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Login error", func(t *testing.T) {
		input := &authDomain.LoginInput{Email: "john@example.com"}

		mockNext.On("Login", ctx, input).Return(nil, authDomain.ErrInvalidCredentials).Once()
		expectMetrics(ctx, mockMetrics, "login", "error")

		res, err := uc.Login(ctx, input)
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		assert.Nil(t, res)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Refresh success", func(t *testing.T) {
		input := &authDomain.RefreshInput{RefreshToken: "r"}
		output := &authDomain.RefreshOutput{AccessToken: "a"}

		mockNext.On("Refresh", ctx, input).Return(output, nil).Once()
		expectMetrics(ctx, mockMetrics, "refresh", "success")

		res, err := uc.Refresh(ctx, input)
		assert.NoError(t, err)
		assert.Equal(t, output, res)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Authenticate error", func(t *testing.T) {
		mockNext.On("Authenticate", ctx, "bad").Return(nil, authDomain.ErrMalformedToken).Once()
		expectMetrics(ctx, mockMetrics, "authenticate", "error")

		res, err := uc.Authenticate(ctx, "bad")
		assert.Error(t, err)
		assert.Nil(t, res)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("RefreshOwner success", func(t *testing.T) {
		userID := uuid.Must(uuid.NewV7())
		mockNext.On("RefreshOwner", ctx, "refresh").Return(userID, nil).Once()
		expectMetrics(ctx, mockMetrics, "refresh_owner", "success")

		owner, err := uc.RefreshOwner(ctx, "refresh")
		assert.NoError(t, err)
		assert.Equal(t, userID, owner)
		mockMetrics.AssertExpectations(t)
	})
}

func TestRevocationUseCaseWithMetrics(t *testing.T) {
	mockNext := &usecaseMocks.MockRevocationUseCase{}
	mockMetrics := &mockBusinessMetrics{}
	uc := usecase.NewRevocationUseCaseWithMetrics(mockNext, mockMetrics)

	ctx := context.Background()
	userID := uuid.New()

	t.Run("RevokeAll success", func(t *testing.T) {
		mockNext.On("RevokeAll", ctx, userID, authDomain.ReasonLogout).Return(nil).Once()
		expectMetrics(ctx, mockMetrics, "revoke_all", "success")

		assert.NoError(t, uc.RevokeAll(ctx, userID, authDomain.ReasonLogout))
		mockMetrics.AssertExpectations(t)
	})

	t.Run("RevokeAll error", func(t *testing.T) {
		expectedErr := errors.New("error")
		mockNext.On("RevokeAll", ctx, userID, authDomain.ReasonAdmin).Return(expectedErr).Once()
		expectMetrics(ctx, mockMetrics, "revoke_all", "error")

		assert.Equal(t, expectedErr, uc.RevokeAll(ctx, userID, authDomain.ReasonAdmin))
		mockMetrics.AssertExpectations(t)
	})

	t.Run("CleanupExpired success", func(t *testing.T) {
		mockNext.On("CleanupExpired", ctx, 7, true).Return(int64(4), nil).Once()
		expectMetrics(ctx, mockMetrics, "token_cleanup", "success")

		count, err := uc.CleanupExpired(ctx, 7, true)
		assert.NoError(t, err)
		assert.Equal(t, int64(4), count)
		mockMetrics.AssertExpectations(t)
	})
}
