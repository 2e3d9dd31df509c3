package logging

import (
	"context"
	"maps"

	"github.com/wynotes/go-notes/pkg/interfaces"
)

// WithFields attaches fields when logger implements interfaces.FieldsLogger
// and returns it unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}

// ForRequest scopes logger to the account and request recorded on ctx.
func ForRequest(ctx context.Context, logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		logger = NoOp()
	}
	return WithFields(logger, ContextFields(ctx))
}
