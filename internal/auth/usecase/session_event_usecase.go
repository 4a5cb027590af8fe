package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	authService "github.com/allisson/sessions/internal/auth/service"
	apperrors "github.com/allisson/sessions/internal/errors"
)

// DefaultVerifyBatchSize is used by Verify when batchSize is not positive.
const DefaultVerifyBatchSize = 500

// sessionEventUseCase implements SessionEventUseCase.
type sessionEventUseCase struct {
	eventRepo SessionEventRepository
	signer    authService.EventSigner
}

// Record assigns identity and timestamp, signs the event and persists it.
// CreatedAt is truncated to microseconds, the precision both databases store,
// so the signature still verifies after a round trip.
func (s *sessionEventUseCase) Record(ctx context.Context, event *authDomain.SessionEvent) error {
	event.ID = uuid.Must(uuid.NewV7())
	event.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	signature, err := s.signer.Sign(event)
	if err != nil {
		return apperrors.Wrap(err, "failed to sign session event")
	}
	event.Signature = signature

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to create session event")
	}

	return nil
}

// ListByUser returns the events of a user, newest first.
func (s *sessionEventUseCase) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*authDomain.SessionEvent, error) {
	events, err := s.eventRepo.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list session events")
	}
	return events, nil
}

// Cleanup deletes events created more than days ago.
func (s *sessionEventUseCase) Cleanup(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be a positive number")
	}

	olderThan := time.Now().UTC().AddDate(0, 0, -days)

	count, err := s.eventRepo.DeleteOlderThan(ctx, olderThan, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete session events")
	}
	return count, nil
}

// Verify walks every stored event in id order and checks its signature.
func (s *sessionEventUseCase) Verify(ctx context.Context, batchSize int) (*authDomain.VerificationReport, error) {
	if batchSize <= 0 {
		batchSize = DefaultVerifyBatchSize
	}

	report := &authDomain.VerificationReport{InvalidIDs: []uuid.UUID{}}

	for offset := 0; ; offset += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		events, err := s.eventRepo.List(ctx, offset, batchSize)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list session events")
		}

		for _, event := range events {
			report.Total++

			err := s.signer.Verify(event)
			switch {
			case err == nil:
				report.Valid++
			case errors.Is(err, authDomain.ErrSignatureInvalid):
				report.Invalid++
				report.InvalidIDs = append(report.InvalidIDs, event.ID)
			default:
				return nil, apperrors.Wrap(err, "failed to verify session event")
			}
		}

		if len(events) < batchSize {
			break
		}
	}

	return report, nil
}

// NewSessionEventUseCase creates a new SessionEventUseCase with the provided dependencies.
func NewSessionEventUseCase(
	eventRepo SessionEventRepository,
	signer authService.EventSigner,
) SessionEventUseCase {
	return &sessionEventUseCase{
		eventRepo: eventRepo,
		signer:    signer,
	}
}
