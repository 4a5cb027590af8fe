package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	authUseCase "github.com/allisson/sessions/internal/auth/usecase"
)

// RunVerifySessionEvents checks the HMAC signature of every stored session event.
// Returns an error when at least one event fails verification so the command
// exits non-zero.
func RunVerifySessionEvents(
	ctx context.Context,
	eventUseCase authUseCase.SessionEventUseCase,
	logger *slog.Logger,
	writer io.Writer,
	batchSize int,
	format string,
) error {
	if batchSize <= 0 {
		batchSize = authUseCase.DefaultVerifyBatchSize
	}

	logger.Info("verifying session events", slog.Int("batch_size", batchSize))

	report, err := eventUseCase.Verify(ctx, batchSize)
	if err != nil {
		return fmt.Errorf("failed to verify session events: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, newVerifyResult(report)); err != nil {
			return err
		}
	} else {
		outputVerifyText(writer, report)
	}

	logger.Info("verification completed",
		slog.Int64("total", report.Total),
		slog.Int64("valid", report.Valid),
		slog.Int64("invalid", report.Invalid),
	)

	if report.Invalid > 0 {
		return fmt.Errorf("integrity check failed: %d invalid signature(s)", report.Invalid)
	}

	return nil
}

type verifyResult struct {
	Total      int64    `json:"total"`
	Valid      int64    `json:"valid"`
	Invalid    int64    `json:"invalid"`
	InvalidIDs []string `json:"invalid_ids"`
	Passed     bool     `json:"passed"`
}

func newVerifyResult(report *authDomain.VerificationReport) verifyResult {
	ids := make([]string, 0, len(report.InvalidIDs))
	for _, id := range report.InvalidIDs {
		ids = append(ids, id.String())
	}
	return verifyResult{
		Total:      report.Total,
		Valid:      report.Valid,
		Invalid:    report.Invalid,
		InvalidIDs: ids,
		Passed:     report.Invalid == 0,
	}
}

func outputVerifyText(writer io.Writer, report *authDomain.VerificationReport) {
	_, _ = fmt.Fprintln(writer, "Session Event Integrity Verification")
	_, _ = fmt.Fprintf(writer, "Total Checked: %d\n", report.Total)
	_, _ = fmt.Fprintf(writer, "Valid:         %d\n", report.Valid)
	_, _ = fmt.Fprintf(writer, "Invalid:       %d\n", report.Invalid)

	if report.Invalid == 0 {
		_, _ = fmt.Fprintln(writer, "\nStatus: PASSED")
		return
	}

	_, _ = fmt.Fprintln(writer, "\nStatus: FAILED")
	_, _ = fmt.Fprintln(writer, "Invalid event IDs:")
	for _, id := range report.InvalidIDs {
		_, _ = fmt.Fprintf(writer, "  - %s\n", id)
	}
}
