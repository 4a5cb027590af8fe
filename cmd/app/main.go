// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

// Build-time version information (injected via ldflags during build).
var (
	version   = "v0.1.0" // Semantic version
	buildDate = "unknown"
	commitSHA = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:     "app",
		Usage:    "Cookie-based session authentication service",
		Version:  version,
		Commands: getCommands(version),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error",
			slog.Any("error", err),
			slog.String("version", version),
			slog.String("build_date", buildDate),
			slog.String("commit_sha", commitSHA),
		)
		os.Exit(1)
	}
}
