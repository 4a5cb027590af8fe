package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	"github.com/allisson/sessions/internal/database"
	apperrors "github.com/allisson/sessions/internal/errors"
)

// revocationUseCase implements RevocationUseCase.
type revocationUseCase struct {
	txManager database.TxManager
	tokenRepo TokenRepository
	events    SessionEventUseCase
	logger    *slog.Logger
}

// RevokeAll locks the owner and revokes every live token in one transaction.
func (r *revocationUseCase) RevokeAll(
	ctx context.Context,
	userID uuid.UUID,
	reason authDomain.RevocationReason,
) error {
	var revoked int64

	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.tokenRepo.LockOwner(ctx, userID); err != nil {
			return err
		}

		count, err := r.tokenRepo.RevokeAll(ctx, userID, time.Now().UTC())
		if err != nil {
			return err
		}
		revoked = count
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("sessions revoked",
		slog.String("user_id", userID.String()),
		slog.String("reason", string(reason)),
		slog.Int64("count", revoked),
	)

	recordEvent(ctx, r.events, r.logger, &authDomain.SessionEvent{
		UserID:    &userID,
		EventType: authDomain.EventRevoked,
		Metadata: map[string]any{
			"reason":         string(reason),
			"revoked_tokens": revoked,
		},
	})

	return nil
}

// CleanupExpired deletes token records whose expiry or revocation is older than days.
func (r *revocationUseCase) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be a positive number")
	}

	before := time.Now().UTC().AddDate(0, 0, -days)

	count, err := r.tokenRepo.DeleteExpired(ctx, before, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired tokens")
	}

	return count, nil
}

// NewRevocationUseCase creates a new RevocationUseCase with the provided dependencies.
func NewRevocationUseCase(
	txManager database.TxManager,
	tokenRepo TokenRepository,
	events SessionEventUseCase,
	logger *slog.Logger,
) RevocationUseCase {
	return &revocationUseCase{
		txManager: txManager,
		tokenRepo: tokenRepo,
		events:    events,
		logger:    logger,
	}
}
