// Package domain defines the core user domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/sessions/internal/errors"
)

// User represents a user in the system
type User struct {
	ID             uuid.UUID
	Name           string
	Email          string
	Password       string
	IsActive       bool
	FailedAttempts int
	LockedUntil    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsLocked reports whether the account is inside a lockout window at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// IsAvailable reports whether the account may hold a session at now.
func (u *User) IsAvailable(now time.Time) bool {
	return u.IsActive && !u.IsLocked(now)
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same email already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrInvalidCredentials indicates an unknown email, a wrong password or a disabled account.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrUserLocked indicates too many failed logins locked the account. It wraps
	// ErrInvalidCredentials so callers see the same 401 as for any other bad login.
	ErrUserLocked = errors.Wrap(ErrInvalidCredentials, "user is locked")

	// ErrInvalidEmail indicates the email format is invalid.
	ErrInvalidEmail = errors.Wrap(errors.ErrInvalidInput, "invalid email format")

	// ErrInvalidPassword indicates the password doesn't meet requirements.
	ErrInvalidPassword = errors.Wrap(errors.ErrInvalidInput, "invalid password")

	// ErrNameRequired indicates the name field is required.
	ErrNameRequired = errors.Wrap(errors.ErrInvalidInput, "name is required")

	// ErrEmailRequired indicates the email field is required.
	ErrEmailRequired = errors.Wrap(errors.ErrInvalidInput, "email is required")

	// ErrPasswordRequired indicates the password field is required.
	ErrPasswordRequired = errors.Wrap(errors.ErrInvalidInput, "password is required")
)
