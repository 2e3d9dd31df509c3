package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/wynotes/go-notes/internal/logging"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

// TelemetryStatus is the outcome class of one command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes one command execution.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// ErrorCode returns the go-errors text code of the failure, if any.
func (i TelemetryInfo) ErrorCode() string {
	var tagged *goerrors.Error
	if i.Error != nil && goerrors.As(i.Error, &tagged) {
		return tagged.TextCode
	}
	return ""
}

// Telemetry is invoked once per execution in place of the default outcome log.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs the outcome on logger, scoped to the account and
// request found on ctx.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = EnsureLogger(logger)
	return func(ctx context.Context, _ T, info TelemetryInfo) {
		fields := logging.ContextFields(ctx)
		if fields == nil {
			fields = make(map[string]any, len(info.Fields))
		}
		for k, v := range info.Fields {
			fields[k] = v
		}
		entry := logging.WithFields(logger, fields)
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		if code := info.ErrorCode(); code != "" {
			args = append(args, "error_code", code)
		}
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.execute.success", args...)
		case TelemetryStatusContextError:
			entry.Warn("command.execute.context_error", append(args, "error", info.Error)...)
		default:
			entry.Error("command.execute.failed", append(args, "error", info.Error)...)
		}
	}
}
