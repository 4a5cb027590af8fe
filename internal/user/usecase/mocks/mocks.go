// Package mocks provides testify mocks for the user use case interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/sessions/internal/user/domain"
	"github.com/allisson/sessions/internal/user/usecase"
)

// MockUseCase is a mock implementation of usecase.UseCase.
type MockUseCase struct {
	mock.Mock
}

// RegisterUser mocks the RegisterUser method.
func (m *MockUseCase) RegisterUser(ctx context.Context, input usecase.RegisterUserInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// GetUserByEmail mocks the GetUserByEmail method.
func (m *MockUseCase) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// GetUserByID mocks the GetUserByID method.
func (m *MockUseCase) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// VerifyCredentials mocks the VerifyCredentials method.
func (m *MockUseCase) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// ChangePassword mocks the ChangePassword method.
func (m *MockUseCase) ChangePassword(ctx context.Context, id uuid.UUID, input usecase.ChangePasswordInput) error {
	args := m.Called(ctx, id, input)
	return args.Error(0)
}

// DeactivateUser mocks the DeactivateUser method.
func (m *MockUseCase) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// DeleteUser mocks the DeleteUser method.
func (m *MockUseCase) DeleteUser(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
