package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/wynotes/go-notes/internal/logging"
	"github.com/wynotes/go-notes/internal/users"
)

// Text codes attached to errors returned by Handler.Execute.
const (
	CodeInvalidMessage = "COMMAND_INVALID_MESSAGE"
	CodeCanceled       = "COMMAND_CANCELED"
	CodeTimedOut       = "COMMAND_TIMED_OUT"
	CodeTargetMissing  = "COMMAND_TARGET_NOT_FOUND"
	CodeFailed         = "COMMAND_FAILED"
)

func invalidMessage(ctx context.Context, messageType string, err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return annotate(ctx, messageType,
		goerrors.Wrap(err, goerrors.CategoryValidation, "invalid command message").WithTextCode(CodeInvalidMessage))
}

// classify tags an execution failure. Errors that already carry a go-errors
// category (access denials, validation issues) pass through untouched.
func classify(ctx context.Context, messageType string, err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	var notFound *users.NotFoundError
	var wrapped *goerrors.Error
	switch {
	case errors.Is(err, context.Canceled):
		wrapped = goerrors.Wrap(err, goerrors.CategoryCommand, "command canceled").WithTextCode(CodeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		wrapped = goerrors.Wrap(err, goerrors.CategoryCommand, "command timed out").WithTextCode(CodeTimedOut)
	case errors.As(err, &notFound), errors.Is(err, users.ErrProfileNotFound):
		wrapped = goerrors.Wrap(err, goerrors.CategoryNotFound, "command target not found").WithTextCode(CodeTargetMissing)
	default:
		wrapped = goerrors.Wrap(err, goerrors.CategoryCommand, "command failed").WithTextCode(CodeFailed)
	}
	return annotate(ctx, messageType, wrapped)
}

func annotate(ctx context.Context, messageType string, err *goerrors.Error) *goerrors.Error {
	if messageType != "" {
		err = err.WithMetadata(map[string]any{"command": messageType})
	}
	if id := logging.RequestID(ctx); id != "" {
		err = err.WithRequestID(id)
	}
	return err
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
