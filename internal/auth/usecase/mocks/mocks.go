// Package mocks provides mock implementations of the auth use case interfaces for testing.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	userDomain "github.com/allisson/sessions/internal/user/domain"
)

// MockTxManager is a mock implementation of database.TxManager. The callback
// runs when WithTx is configured to return nil.
type MockTxManager struct {
	mock.Mock
}

// WithTx mocks the WithTx method of TxManager.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// MockTokenRepository is a mock implementation of TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

// Create mocks the Create method of TokenRepository.
func (m *MockTokenRepository) Create(ctx context.Context, token *authDomain.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// FindUsable mocks the FindUsable method of TokenRepository.
func (m *MockTokenRepository) FindUsable(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (*authDomain.Token, error) {
	args := m.Called(ctx, tokenHash, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Token), args.Error(1)
}

// RevokeAll mocks the RevokeAll method of TokenRepository.
func (m *MockTokenRepository) RevokeAll(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	args := m.Called(ctx, userID, now)
	return args.Get(0).(int64), args.Error(1)
}

// RevokeAllOfKind mocks the RevokeAllOfKind method of TokenRepository.
func (m *MockTokenRepository) RevokeAllOfKind(
	ctx context.Context,
	userID uuid.UUID,
	kind authDomain.TokenKind,
	now time.Time,
) (int64, error) {
	args := m.Called(ctx, userID, kind, now)
	return args.Get(0).(int64), args.Error(1)
}

// LockOwner mocks the LockOwner method of TokenRepository.
func (m *MockTokenRepository) LockOwner(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// DeleteExpired mocks the DeleteExpired method of TokenRepository.
func (m *MockTokenRepository) DeleteExpired(ctx context.Context, before time.Time, dryRun bool) (int64, error) {
	args := m.Called(ctx, before, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// MockSessionEventRepository is a mock implementation of SessionEventRepository.
type MockSessionEventRepository struct {
	mock.Mock
}

// Create mocks the Create method of SessionEventRepository.
func (m *MockSessionEventRepository) Create(ctx context.Context, event *authDomain.SessionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// ListByUser mocks the ListByUser method of SessionEventRepository.
func (m *MockSessionEventRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*authDomain.SessionEvent, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.SessionEvent), args.Error(1)
}

// List mocks the List method of SessionEventRepository.
func (m *MockSessionEventRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*authDomain.SessionEvent, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.SessionEvent), args.Error(1)
}

// DeleteOlderThan mocks the DeleteOlderThan method of SessionEventRepository.
func (m *MockSessionEventRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	args := m.Called(ctx, olderThan, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// MockIdentityProvider is a mock implementation of IdentityProvider.
type MockIdentityProvider struct {
	mock.Mock
}

// VerifyCredentials mocks the VerifyCredentials method of IdentityProvider.
func (m *MockIdentityProvider) VerifyCredentials(
	ctx context.Context,
	email, password string,
) (*userDomain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

// GetUserByID mocks the GetUserByID method of IdentityProvider.
func (m *MockIdentityProvider) GetUserByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

// MockSessionUseCase is a mock implementation of SessionUseCase.
type MockSessionUseCase struct {
	mock.Mock
}

// Login mocks the Login method of SessionUseCase.
func (m *MockSessionUseCase) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.Session, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Session), args.Error(1)
}

// Refresh mocks the Refresh method of SessionUseCase.
func (m *MockSessionUseCase) Refresh(
	ctx context.Context,
	input *authDomain.RefreshInput,
) (*authDomain.RefreshOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.RefreshOutput), args.Error(1)
}

// Authenticate mocks the Authenticate method of SessionUseCase.
func (m *MockSessionUseCase) Authenticate(ctx context.Context, accessToken string) (*authDomain.Principal, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Principal), args.Error(1)
}

// RefreshOwner mocks the RefreshOwner method of SessionUseCase.
func (m *MockSessionUseCase) RefreshOwner(ctx context.Context, refreshToken string) (uuid.UUID, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockRevocationUseCase is a mock implementation of RevocationUseCase.
type MockRevocationUseCase struct {
	mock.Mock
}

// RevokeAll mocks the RevokeAll method of RevocationUseCase.
func (m *MockRevocationUseCase) RevokeAll(
	ctx context.Context,
	userID uuid.UUID,
	reason authDomain.RevocationReason,
) error {
	args := m.Called(ctx, userID, reason)
	return args.Error(0)
}

// CleanupExpired mocks the CleanupExpired method of RevocationUseCase.
func (m *MockRevocationUseCase) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// MockSessionEventUseCase is a mock implementation of SessionEventUseCase.
type MockSessionEventUseCase struct {
	mock.Mock
}

// Record mocks the Record method of SessionEventUseCase.
func (m *MockSessionEventUseCase) Record(ctx context.Context, event *authDomain.SessionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// ListByUser mocks the ListByUser method of SessionEventUseCase.
func (m *MockSessionEventUseCase) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*authDomain.SessionEvent, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.SessionEvent), args.Error(1)
}

// Cleanup mocks the Cleanup method of SessionEventUseCase.
func (m *MockSessionEventUseCase) Cleanup(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// Verify mocks the Verify method of SessionEventUseCase.
func (m *MockSessionEventUseCase) Verify(
	ctx context.Context,
	batchSize int,
) (*authDomain.VerificationReport, error) {
	args := m.Called(ctx, batchSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.VerificationReport), args.Error(1)
}
