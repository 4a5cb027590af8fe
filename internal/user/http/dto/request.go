// Package dto provides data transfer objects for the user HTTP layer.
package dto

import (
	validation "github.com/jellydator/validation"

	appValidation "github.com/allisson/sessions/internal/validation"
)

// passwordRules is shared by registration and password change.
var passwordRules = []validation.Rule{
	validation.Length(appValidation.MinPasswordLength, appValidation.MaxPasswordLength).
		Error("password must be between 8 and 128 characters"),
	appValidation.AccountPassword,
}

// RegisterUserRequest represents the API request for user registration
type RegisterUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request payload, never logged
}

// Validate validates the RegisterUserRequest using the jellydator/validation library
// This provides comprehensive validation including:
// - Required field checks
// - Email format validation
// - Password strength requirements (min 8 chars, uppercase, lowercase, number, special char)
func (r *RegisterUserRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&r.Password,
			append([]validation.Rule{validation.Required.Error("password is required")}, passwordRules...)...,
		),
	)
	return appValidation.WrapValidationError(err)
}

// ChangePasswordRequest represents the API request for PUT /v1/users/me/password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"` //nolint:gosec // request payload, never logged
	NewPassword     string `json:"new_password"`     //nolint:gosec // request payload, never logged
}

// Validate checks the new password strength. The current password is only
// required; it is compared against the stored hash by the use case.
func (r *ChangePasswordRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.CurrentPassword,
			validation.Required.Error("current password is required"),
			validation.Length(1, 128),
		),
		validation.Field(&r.NewPassword,
			append([]validation.Rule{validation.Required.Error("new password is required")}, passwordRules...)...,
		),
	)
	return appValidation.WrapValidationError(err)
}
