package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authUseCase "github.com/allisson/sessions/internal/auth/usecase"
)

// RunCleanExpiredTokens deletes session tokens that expired or were revoked more
// than days ago. Supports dry-run mode to preview the count and text/JSON output.
//
// Requirements: Database must be migrated and accessible.
func RunCleanExpiredTokens(
	ctx context.Context,
	revocationUseCase authUseCase.RevocationUseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("cleaning expired tokens",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	count, err := revocationUseCase.CleanupExpired(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to cleanup expired tokens: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, cleanupResult{Count: count, Days: days, DryRun: dryRun}); err != nil {
			return err
		}
	} else {
		outputCleanupText(writer, "expired token(s)", count, days, dryRun)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

// cleanupResult is the JSON output of the cleanup commands.
type cleanupResult struct {
	Count  int64 `json:"count"`
	Days   int   `json:"days"`
	DryRun bool  `json:"dry_run"`
}

func outputCleanupText(writer io.Writer, noun string, count int64, days int, dryRun bool) {
	if dryRun {
		_, _ = fmt.Fprintf(writer, "Dry-run mode: Would delete %d %s older than %d day(s)\n", count, noun, days)
		return
	}
	_, _ = fmt.Fprintf(writer, "Successfully deleted %d %s older than %d day(s)\n", count, noun, days)
}
