package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authUseCase "github.com/allisson/sessions/internal/auth/usecase"
)

// RunCleanSessionEvents deletes session events older than the specified number of days.
func RunCleanSessionEvents(
	ctx context.Context,
	eventUseCase authUseCase.SessionEventUseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("cleaning session events",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	count, err := eventUseCase.Cleanup(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to cleanup session events: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, cleanupResult{Count: count, Days: days, DryRun: dryRun}); err != nil {
			return err
		}
	} else {
		outputCleanupText(writer, "session event(s)", count, days, dryRun)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}
