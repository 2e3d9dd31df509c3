package commands

import (
	"context"
	"time"

	"github.com/wynotes/go-notes/internal/logging"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

// DefaultCommandTimeout bounds one account command, including its profile
// write and activity record.
const DefaultCommandTimeout = 30 * time.Second

// EnsureLogger returns logger, or a no-op logger when nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}

// boundedContext derives the execution context of one command. A nil parent
// becomes context.Background and a non-positive timeout leaves it unbounded.
func boundedContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
