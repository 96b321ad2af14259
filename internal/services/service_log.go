package services

import (
	"context"
	"log/slog"

	"scorecli/internal/infrastructure"
)

// logServiceError logs an error in service operations using the
// context-aware infrastructure logger
func logServiceError(ctx context.Context, action, message string, err error, attrs ...slog.Attr) {
	logger := infrastructure.WithError(infrastructure.LoggerWithContext(ctx), err)

	allAttrs := []slog.Attr{
		slog.String("component", "analysis_service"),
		slog.String("action", action),
	}
	allAttrs = append(allAttrs, attrs...)

	logger.LogAttrs(ctx, slog.LevelError, message, allAttrs...)
}
