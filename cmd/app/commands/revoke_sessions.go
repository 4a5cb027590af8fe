package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	authUseCase "github.com/allisson/sessions/internal/auth/usecase"
	userUsecase "github.com/allisson/sessions/internal/user/usecase"
)

// RunRevokeSessions revokes every session token of the user with the given email.
// The account stays usable; the user has to log in again.
func RunRevokeSessions(
	ctx context.Context,
	userUseCase userUsecase.UseCase,
	revocationUseCase authUseCase.RevocationUseCase,
	logger *slog.Logger,
	writer io.Writer,
	email string,
	format string,
) error {
	user, err := userUseCase.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := revocationUseCase.RevokeAll(ctx, user.ID, authDomain.ReasonAdmin); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]string{
			"user_id": user.ID.String(),
			"reason":  string(authDomain.ReasonAdmin),
		}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "All sessions of user %s revoked\n", user.ID)
	}

	logger.Info("sessions revoked by administrator", slog.String("user_id", user.ID.String()))
	return nil
}
