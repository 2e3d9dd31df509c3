package logging

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

const (
	rootModule     = "notes"
	accessModule   = "notes.access"
	markdownModule = "notes.markdown"
	usersModule    = "notes.users"
	mediaModule    = "notes.media"
	httpModule     = "notes.http"
)

const (
	fieldAccountID = "account_id"
	fieldTargetID  = "target_id"
	fieldAction    = "action"
	fieldRequestID = "request_id"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// AccessLogger returns the logger namespace reserved for gate decisions.
func AccessLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, accessModule)
}

// MarkdownLogger returns the logger namespace reserved for the render pipeline.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// UsersLogger returns the logger namespace reserved for account administration.
func UsersLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, usersModule)
}

// MediaLogger returns the logger namespace reserved for upload tracking and cleanup.
func MediaLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, mediaModule)
}

// HTTPLogger returns the logger namespace reserved for HTTP adapters.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// WithAccountContext enriches the logger with the acting account, the target
// account and the administrative action. Zero values are skipped.
func WithAccountContext(logger interfaces.Logger, actor, target uuid.UUID, action string) interfaces.Logger {
	fields := map[string]any{}
	if actor != uuid.Nil {
		fields[fieldAccountID] = actor.String()
	}
	if target != uuid.Nil {
		fields[fieldTargetID] = target.String()
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
