package logging

import (
	"context"
	"log/slog"

	"lorecast/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldChapterHash is the standardized structured logging key for chapter fingerprints.
	FieldChapterHash = "chapter_hash"
	// FieldBookHash is the standardized structured logging key for book fingerprints.
	FieldBookHash = "book_hash"
	// FieldQueue is the standardized structured logging key for queue/stream names.
	FieldQueue = "queue"
	// FieldAttempt is the standardized structured logging key for delivery attempt counters.
	FieldAttempt = "attempt"
	// FieldCorrelationID is the standardized structured logging key for job correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType tags workflow lifecycle events in structured output.
	FieldEventType = "event_type"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if hash, ok := services.ChapterHashFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldChapterHash, hash))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	return services.WithStage(ctx, stage)
}
