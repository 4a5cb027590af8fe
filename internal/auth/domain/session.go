package domain

import (
	"time"

	"github.com/google/uuid"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID  uuid.UUID
	Name    string
	Email   string
	TokenID uuid.UUID
}

// LoginInput carries credentials and the client fingerprint for a login.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// Session is the result of a successful login: a fresh access/refresh pair.
type Session struct {
	Principal          *Principal
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// RefreshInput carries the presented refresh token and the client fingerprint.
type RefreshInput struct {
	RefreshToken string
	UserAgent    string
	IPAddress    string
}

// RefreshOutput holds the newly minted access token.
type RefreshOutput struct {
	UserID            uuid.UUID
	AccessToken       string
	AccessTokenExpiry time.Time
}
