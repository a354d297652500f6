package logger

import (
	"context"

	"github.com/google/uuid"
)

// runIDKey marks the context storage slot for the run identifier.
type runIDKey struct{}

// NewRunID returns a fresh identifier for one provisioning run.
func NewRunID() string {
	return uuid.NewString()
}

// WithRunID stores id in ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run identifier stored in ctx, or an empty string when absent.
func RunIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(runIDKey{}).(string); ok {
		return id
	}

	return ""
}
