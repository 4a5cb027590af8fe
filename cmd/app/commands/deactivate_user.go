package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	userUsecase "github.com/allisson/sessions/internal/user/usecase"
)

// RunDeactivateUser disables the account with the given email. Every session of
// the user is revoked and further logins fail with invalid credentials.
func RunDeactivateUser(
	ctx context.Context,
	userUseCase userUsecase.UseCase,
	logger *slog.Logger,
	writer io.Writer,
	email string,
	format string,
) error {
	user, err := userUseCase.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := userUseCase.DeactivateUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	user.IsActive = false
	if format == "json" {
		if err := writeJSON(writer, newUserResult(user)); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "User %s deactivated and all sessions revoked\n", user.ID)
	}

	logger.Info("user deactivated", slog.String("user_id", user.ID.String()))
	return nil
}
