// Package dto provides data transfer objects for session HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/sessions/internal/validation"
)

// LoginRequest contains the credentials for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request payload, never logged
}

// Validate checks if the login request is valid. Password strength is not
// checked here; a weak password simply fails verification.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Email,
			validation.Length(5, 255),
		),
		validation.Field(&r.Password,
			validation.Required,
			validation.Length(1, 128),
		),
	)
}
