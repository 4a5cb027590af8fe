// Package usecase implements business logic orchestration for session token operations.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	authService "github.com/allisson/sessions/internal/auth/service"
	"github.com/allisson/sessions/internal/config"
	"github.com/allisson/sessions/internal/database"
	userDomain "github.com/allisson/sessions/internal/user/domain"
)

// sessionUseCase implements SessionUseCase.
type sessionUseCase struct {
	config       *config.Config
	txManager    database.TxManager
	tokenRepo    TokenRepository
	identities   IdentityProvider
	codec        authService.TokenCodec
	tokenService authService.TokenService
	events       SessionEventUseCase
	logger       *slog.Logger
}

// Login authenticates the user and starts a new session.
//
// Security Notes:
//   - Unknown emails, wrong passwords, disabled and locked accounts all return
//     ErrInvalidCredentials so the response does not reveal which one happened;
//     only the login_failed event records the reason
//   - Every previously issued token of the user is revoked in the same
//     transaction that stores the new pair (single session per user)
//   - Token values are returned only here and never persisted; the store keeps
//     their SHA-256 hashes
func (s *sessionUseCase) Login(ctx context.Context, input *authDomain.LoginInput) (*authDomain.Session, error) {
	user, err := s.identities.VerifyCredentials(ctx, input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, userDomain.ErrUserLocked):
			s.recordLoginFailure(ctx, input, "locked")
			return nil, authDomain.ErrInvalidCredentials
		case errors.Is(err, userDomain.ErrInvalidCredentials):
			s.recordLoginFailure(ctx, input, "invalid_credentials")
			return nil, authDomain.ErrInvalidCredentials
		default:
			return nil, err
		}
	}

	var session *authDomain.Session
	var revoked int64

	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.tokenRepo.LockOwner(ctx, user.ID); err != nil {
			return err
		}

		count, err := s.tokenRepo.RevokeAll(ctx, user.ID, time.Now().UTC())
		if err != nil {
			return err
		}
		revoked = count

		accessToken, accessRecord, err := s.mint(
			ctx, user.ID, authDomain.AccessToken, s.config.AuthAccessTokenTTL, input.UserAgent, input.IPAddress,
		)
		if err != nil {
			return err
		}

		refreshToken, refreshRecord, err := s.mint(
			ctx, user.ID, authDomain.RefreshToken, s.config.AuthRefreshTokenTTL, input.UserAgent, input.IPAddress,
		)
		if err != nil {
			return err
		}

		session = &authDomain.Session{
			Principal: &authDomain.Principal{
				UserID:  user.ID,
				Name:    user.Name,
				Email:   user.Email,
				TokenID: accessRecord.ID,
			},
			AccessToken:        accessToken,
			AccessTokenExpiry:  accessRecord.ExpiresAt,
			RefreshToken:       refreshToken,
			RefreshTokenExpiry: refreshRecord.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, &authDomain.SessionEvent{
		UserID:    &user.ID,
		EventType: authDomain.EventLoginSucceeded,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		Metadata:  map[string]any{"revoked_tokens": revoked},
	})

	return session, nil
}

// Refresh mints a new access token from a usable refresh token.
//
// The owner row is locked before the allow-list lookup so a concurrent
// revocation either completes first (the lookup misses) or waits until the
// new access token is stored (and then revokes it too).
func (s *sessionUseCase) Refresh(
	ctx context.Context,
	input *authDomain.RefreshInput,
) (*authDomain.RefreshOutput, error) {
	if input.RefreshToken == "" {
		return nil, authDomain.ErrMissingToken
	}

	claims, err := s.codec.Decode(input.RefreshToken)
	if err != nil {
		return nil, err
	}

	if claims.Kind != authDomain.RefreshToken {
		return nil, authDomain.ErrUnexpectedTokenKind
	}

	var output *authDomain.RefreshOutput

	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.tokenRepo.LockOwner(ctx, claims.Subject); err != nil {
			if errors.Is(err, authDomain.ErrIdentityUnavailable) {
				return authDomain.ErrInvalidToken
			}
			return err
		}

		now := time.Now().UTC()

		record, err := s.tokenRepo.FindUsable(ctx, s.tokenService.HashToken(input.RefreshToken), now)
		if err != nil {
			if errors.Is(err, authDomain.ErrTokenNotFound) {
				return authDomain.ErrInvalidToken
			}
			return err
		}

		if record.UserID != claims.Subject || record.Kind != authDomain.RefreshToken {
			return authDomain.ErrInvalidToken
		}

		user, err := s.identities.GetUserByID(ctx, record.UserID)
		if err != nil {
			if errors.Is(err, userDomain.ErrUserNotFound) {
				return authDomain.ErrInvalidToken
			}
			return err
		}

		if !user.IsAvailable(now) {
			return authDomain.ErrInvalidToken
		}

		if _, err := s.tokenRepo.RevokeAllOfKind(ctx, user.ID, authDomain.AccessToken, now); err != nil {
			return err
		}

		accessToken, accessRecord, err := s.mint(
			ctx, user.ID, authDomain.AccessToken, s.config.AuthAccessTokenTTL, input.UserAgent, input.IPAddress,
		)
		if err != nil {
			return err
		}

		output = &authDomain.RefreshOutput{
			UserID:            user.ID,
			AccessToken:       accessToken,
			AccessTokenExpiry: accessRecord.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, &authDomain.SessionEvent{
		UserID:    &output.UserID,
		EventType: authDomain.EventRefreshed,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
	})

	return output, nil
}

// Authenticate validates an access token against the codec and the allow-list.
//
// Returns:
//   - ErrMissingToken for an empty token
//   - ErrMalformedToken or ErrExpiredToken from the codec
//   - ErrUnexpectedTokenKind for a refresh token
//   - ErrInvalidToken if the token is revoked, expired store-side or unknown
//   - ErrIdentityUnavailable if the owner is deleted, disabled or locked
//   - Other errors from repository operations are propagated as-is
func (s *sessionUseCase) Authenticate(ctx context.Context, accessToken string) (*authDomain.Principal, error) {
	if accessToken == "" {
		return nil, authDomain.ErrMissingToken
	}

	claims, err := s.codec.Decode(accessToken)
	if err != nil {
		return nil, err
	}

	if claims.Kind != authDomain.AccessToken {
		return nil, authDomain.ErrUnexpectedTokenKind
	}

	now := time.Now().UTC()

	record, err := s.tokenRepo.FindUsable(ctx, s.tokenService.HashToken(accessToken), now)
	if err != nil {
		if errors.Is(err, authDomain.ErrTokenNotFound) {
			return nil, authDomain.ErrInvalidToken
		}
		return nil, err
	}

	if record.UserID != claims.Subject || record.Kind != authDomain.AccessToken {
		return nil, authDomain.ErrInvalidToken
	}

	user, err := s.identities.GetUserByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			return nil, authDomain.ErrIdentityUnavailable
		}
		return nil, err
	}

	if !user.IsAvailable(now) {
		return nil, authDomain.ErrIdentityUnavailable
	}

	return &authDomain.Principal{
		UserID:  user.ID,
		Name:    user.Name,
		Email:   user.Email,
		TokenID: record.ID,
	}, nil
}

// RefreshOwner decodes a refresh token and checks it against the allow-list.
// The owner's account state is not checked.
func (s *sessionUseCase) RefreshOwner(ctx context.Context, refreshToken string) (uuid.UUID, error) {
	if refreshToken == "" {
		return uuid.Nil, authDomain.ErrMissingToken
	}

	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return uuid.Nil, err
	}

	if claims.Kind != authDomain.RefreshToken {
		return uuid.Nil, authDomain.ErrUnexpectedTokenKind
	}

	record, err := s.tokenRepo.FindUsable(ctx, s.tokenService.HashToken(refreshToken), time.Now().UTC())
	if err != nil {
		if errors.Is(err, authDomain.ErrTokenNotFound) {
			return uuid.Nil, authDomain.ErrInvalidToken
		}
		return uuid.Nil, err
	}

	if record.UserID != claims.Subject || record.Kind != authDomain.RefreshToken {
		return uuid.Nil, authDomain.ErrInvalidToken
	}

	return record.UserID, nil
}

// mint signs a token and stores its allow-list record. The record id is the
// token's jti and the record expiry is the payload expiry.
func (s *sessionUseCase) mint(
	ctx context.Context,
	userID uuid.UUID,
	kind authDomain.TokenKind,
	ttl time.Duration,
	userAgent, ipAddress string,
) (string, *authDomain.Token, error) {
	token, claims, err := s.codec.Issue(userID, kind, ttl)
	if err != nil {
		return "", nil, err
	}

	record := &authDomain.Token{
		ID:        claims.ID,
		TokenHash: s.tokenService.HashToken(token),
		UserID:    userID,
		Kind:      kind,
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: claims.ExpiresAt,
		CreatedAt: claims.IssuedAt,
	}

	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return "", nil, err
	}

	return token, record, nil
}

func (s *sessionUseCase) recordLoginFailure(ctx context.Context, input *authDomain.LoginInput, reason string) {
	s.record(ctx, &authDomain.SessionEvent{
		EventType: authDomain.EventLoginFailed,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		Metadata: map[string]any{
			"email":  input.Email,
			"reason": reason,
		},
	})
}

func (s *sessionUseCase) record(ctx context.Context, event *authDomain.SessionEvent) {
	recordEvent(ctx, s.events, s.logger, event)
}

// recordEvent stores a session event. Failures are logged and never fail the
// operation that produced the event.
func recordEvent(ctx context.Context, events SessionEventUseCase, logger *slog.Logger, event *authDomain.SessionEvent) {
	if err := events.Record(ctx, event); err != nil {
		logger.Error("failed to record session event",
			slog.String("event_type", string(event.EventType)),
			slog.Any("error", err),
		)
	}
}

// NewSessionUseCase creates a new SessionUseCase with the provided dependencies.
func NewSessionUseCase(
	config *config.Config,
	txManager database.TxManager,
	tokenRepo TokenRepository,
	identities IdentityProvider,
	codec authService.TokenCodec,
	tokenService authService.TokenService,
	events SessionEventUseCase,
	logger *slog.Logger,
) SessionUseCase {
	return &sessionUseCase{
		config:       config,
		txManager:    txManager,
		tokenRepo:    tokenRepo,
		identities:   identities,
		codec:        codec,
		tokenService: tokenService,
		events:       events,
		logger:       logger,
	}
}
