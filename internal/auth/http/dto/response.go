package dto

import (
	"time"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
)

// LoginResponse is returned by a successful login. Token values travel in
// cookies only and never appear in response bodies.
type LoginResponse struct {
	UserID                string    `json:"user_id"`
	Name                  string    `json:"name"`
	Email                 string    `json:"email"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// MapSessionToLoginResponse converts a domain session to an API response.
func MapSessionToLoginResponse(session *authDomain.Session) LoginResponse {
	return LoginResponse{
		UserID:                session.Principal.UserID.String(),
		Name:                  session.Principal.Name,
		Email:                 session.Principal.Email,
		AccessTokenExpiresAt:  session.AccessTokenExpiry,
		RefreshTokenExpiresAt: session.RefreshTokenExpiry,
	}
}

// RefreshResponse is returned by a successful refresh.
type RefreshResponse struct {
	AccessTokenExpiresAt time.Time `json:"access_token_expires_at"`
}

// MessageResponse carries a short human readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// StatusResponse describes which session cookies the request carried and
// whether they authenticated it.
type StatusResponse struct {
	CookiesPresent      bool   `json:"cookies_present"`
	AccessTokenPresent  bool   `json:"access_token_present"`
	RefreshTokenPresent bool   `json:"refresh_token_present"`
	Authenticated       bool   `json:"authenticated"`
	UserID              string `json:"user_id,omitempty"`
}

// SessionEventResponse represents a session event in API responses.
type SessionEventResponse struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// MapSessionEventToResponse converts a domain session event to an API response.
func MapSessionEventToResponse(event *authDomain.SessionEvent) SessionEventResponse {
	return SessionEventResponse{
		ID:        event.ID.String(),
		EventType: string(event.EventType),
		IPAddress: event.IPAddress,
		UserAgent: event.UserAgent,
		Metadata:  event.Metadata,
		CreatedAt: event.CreatedAt,
	}
}

// ListSessionEventsResponse represents a paginated list of session events.
type ListSessionEventsResponse struct {
	Data []SessionEventResponse `json:"data"`
}

// MapSessionEventsToListResponse converts domain session events to a list API response.
func MapSessionEventsToListResponse(events []*authDomain.SessionEvent) ListSessionEventsResponse {
	responses := make([]SessionEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, MapSessionEventToResponse(event))
	}
	return ListSessionEventsResponse{Data: responses}
}
