package logging

import (
	"context"
	"log/slog"

	"garland/internal/services"
)

// ContextFields collects the identifiers stamped on ctx into log attrs.
// Absent identifiers contribute nothing, so a bare context yields nil.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	var fields []Attr
	if id, ok := services.InviteIDFromContext(ctx); ok {
		fields = append(fields, String(FieldInviteID, id))
	}
	if id, ok := services.UserIDFromContext(ctx); ok {
		fields = append(fields, String(FieldUserID, id))
	}
	if id, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, String(FieldRequestID, id))
	}
	return fields
}

// WithContext returns logger enriched with the identifiers stamped on ctx,
// so every subsequent line carries the invite, user, and request attrs.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
