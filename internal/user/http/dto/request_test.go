package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/sessions/internal/errors"
)

func TestRegisterUserRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterUserRequest
		wantErr bool
	}{
		{
			name:    "valid",
			req:     RegisterUserRequest{Name: "Alice", Email: "alice@example.com", Password: "S3cure!Passw0rd"},
			wantErr: false,
		},
		{
			name:    "blank name",
			req:     RegisterUserRequest{Name: "   ", Email: "alice@example.com", Password: "S3cure!Passw0rd"},
			wantErr: true,
		},
		{
			name:    "invalid email",
			req:     RegisterUserRequest{Name: "Alice", Email: "alice", Password: "S3cure!Passw0rd"},
			wantErr: true,
		},
		{
			name:    "weak password",
			req:     RegisterUserRequest{Name: "Alice", Email: "alice@example.com", Password: "password123"},
			wantErr: true,
		},
		{
			name:    "missing password",
			req:     RegisterUserRequest{Name: "Alice", Email: "alice@example.com"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestChangePasswordRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ChangePasswordRequest
		wantErr bool
	}{
		{
			name:    "valid",
			req:     ChangePasswordRequest{CurrentPassword: "anything", NewPassword: "N3w!Passw0rd"},
			wantErr: false,
		},
		{
			name:    "missing current password",
			req:     ChangePasswordRequest{NewPassword: "N3w!Passw0rd"},
			wantErr: true,
		},
		{
			name:    "weak new password",
			req:     ChangePasswordRequest{CurrentPassword: "anything", NewPassword: "alllowercase"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}
