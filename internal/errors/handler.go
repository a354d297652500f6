package errors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Proton-105/zaza-provision/pkg/logger"
	"github.com/Proton-105/zaza-provision/pkg/metrics"
)

// Handler is the single place run errors are reported. Errors are reported
// through the logger only; when Sentry is enabled the logger forwards Error
// records to it, so the level chosen here decides what reaches Sentry.
type Handler struct {
	log *slog.Logger
}

func NewHandler(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// Handle logs err with its taxonomy attributes and counts it. High and critical
// severities, and errors outside the taxonomy, are logged at Error; the rest at Warn.
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}

	log := h.log
	if log == nil {
		log = slog.Default()
	}

	var attrs []slog.Attr
	level := slog.LevelError
	msg := "unknown error"
	code, severity := "unknown", SeverityHigh

	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		msg = "application error"
		code, severity = appErr.Code, appErr.Severity
		if appErr.StatusCode != 0 {
			attrs = append(attrs, slog.Int("status", appErr.StatusCode))
		}
		if severity != SeverityHigh && severity != SeverityCritical {
			level = slog.LevelWarn
		}
		attrs = append(attrs, slog.String("code", code))
	}

	attrs = append(attrs,
		slog.String("severity", string(severity)),
		slog.Any("error", err),
	)
	if runID := logger.RunIDFromContext(ctx); runID != "" {
		attrs = append(attrs, slog.String("run_id", runID))
	}

	log.LogAttrs(ctx, level, msg, attrs...)
	metrics.RecordError(code, string(severity))
}
