package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	probeIDKey   contextKey = "probe_id"
	iterationKey contextKey = "iteration"
	loggerKey    contextKey = "logger"
)

// WithProbeID adds the probe id to context
func WithProbeID(ctx context.Context, probeID string) context.Context {
	return context.WithValue(ctx, probeIDKey, probeID)
}

// WithIteration adds the poll loop iteration number to context
func WithIteration(ctx context.Context, iteration int) context.Context {
	return context.WithValue(ctx, iterationKey, iteration)
}

// ProbeID returns the probe id stored in ctx, if any.
func ProbeID(ctx context.Context) string {
	id, _ := ctx.Value(probeIDKey).(string)
	return id
}

// WithLogger adds logger to context
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts logger from context with all accumulated fields
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}

	l := direct()

	var fields []zap.Field
	if probeID, ok := ctx.Value(probeIDKey).(string); ok && probeID != "" {
		fields = append(fields, zap.String("probe_id", probeID))
	}
	if iteration, ok := ctx.Value(iterationKey).(int); ok && iteration > 0 {
		fields = append(fields, zap.Int("iteration", iteration))
	}

	if len(fields) > 0 {
		l = l.With(fields...)
	}
	return l
}
