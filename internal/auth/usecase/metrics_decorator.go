package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	"github.com/allisson/sessions/internal/metrics"
)

// sessionUseCaseWithMetrics decorates SessionUseCase with metrics instrumentation.
type sessionUseCaseWithMetrics struct {
	next    SessionUseCase
	metrics metrics.BusinessMetrics
}

// NewSessionUseCaseWithMetrics wraps a SessionUseCase with metrics recording.
func NewSessionUseCaseWithMetrics(useCase SessionUseCase, m metrics.BusinessMetrics) SessionUseCase {
	return &sessionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Login records metrics for login operations.
func (s *sessionUseCaseWithMetrics) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.Session, error) {
	start := time.Now()
	session, err := s.next.Login(ctx, input)
	s.observe(ctx, "login", start, err)
	return session, err
}

// Refresh records metrics for refresh operations.
func (s *sessionUseCaseWithMetrics) Refresh(
	ctx context.Context,
	input *authDomain.RefreshInput,
) (*authDomain.RefreshOutput, error) {
	start := time.Now()
	output, err := s.next.Refresh(ctx, input)
	s.observe(ctx, "refresh", start, err)
	return output, err
}

// Authenticate records metrics for request authentication.
func (s *sessionUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	accessToken string,
) (*authDomain.Principal, error) {
	start := time.Now()
	principal, err := s.next.Authenticate(ctx, accessToken)
	s.observe(ctx, "authenticate", start, err)
	return principal, err
}

// RefreshOwner records metrics for refresh token owner lookups.
func (s *sessionUseCaseWithMetrics) RefreshOwner(ctx context.Context, refreshToken string) (uuid.UUID, error) {
	start := time.Now()
	userID, err := s.next.RefreshOwner(ctx, refreshToken)
	s.observe(ctx, "refresh_owner", start, err)
	return userID, err
}

func (s *sessionUseCaseWithMetrics) observe(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "auth", operation, status)
	s.metrics.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

// revocationUseCaseWithMetrics decorates RevocationUseCase with metrics instrumentation.
type revocationUseCaseWithMetrics struct {
	next    RevocationUseCase
	metrics metrics.BusinessMetrics
}

// NewRevocationUseCaseWithMetrics wraps a RevocationUseCase with metrics recording.
func NewRevocationUseCaseWithMetrics(useCase RevocationUseCase, m metrics.BusinessMetrics) RevocationUseCase {
	return &revocationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// RevokeAll records metrics for revocation operations.
func (r *revocationUseCaseWithMetrics) RevokeAll(
	ctx context.Context,
	userID uuid.UUID,
	reason authDomain.RevocationReason,
) error {
	start := time.Now()
	err := r.next.RevokeAll(ctx, userID, reason)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "auth", "revoke_all", status)
	r.metrics.RecordDuration(ctx, "auth", "revoke_all", time.Since(start), status)

	return err
}

// CleanupExpired records metrics for token cleanup operations.
func (r *revocationUseCaseWithMetrics) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := r.next.CleanupExpired(ctx, days, dryRun)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "auth", "token_cleanup", status)
	r.metrics.RecordDuration(ctx, "auth", "token_cleanup", time.Since(start), status)

	return count, err
}
