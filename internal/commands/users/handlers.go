package userscmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/wynotes/go-notes/internal/access"
	"github.com/wynotes/go-notes/internal/commands"
	"github.com/wynotes/go-notes/internal/logging"
	"github.com/wynotes/go-notes/internal/users"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

// ErrServiceRequired is returned when registration is attempted without a users service.
var ErrServiceRequired = errors.New("users command registration: service is nil")

// AccountCommand is satisfied by the four account mutation messages.
type AccountCommand interface {
	command.Message
	action() access.Action
	mutation() AccountMutation
}

// AccountHandler applies one administrative account mutation through the users service.
type AccountHandler[T AccountCommand] struct {
	inner *commands.Handler[T]
}

// NewAccountHandler wires the mutation for T to service.
func NewAccountHandler[T AccountCommand](service *users.Service, logger interfaces.Logger, opts ...commands.HandlerOption[T]) *AccountHandler[T] {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg T) error {
		m := msg.mutation()
		profile, err := service.Mutate(ctx, msg.action(), m.identity(), m.TargetID)
		if err != nil {
			return err
		}
		logging.WithAccountContext(baseLogger, m.ActorID, m.TargetID, string(msg.action())).
			Info("users.command.applied", "role", profile.Role.String(), "status", profile.Status.String())
		if m.OnApplied != nil {
			m.OnApplied(profile)
		}
		return nil
	}

	var zero T
	handlerOpts := []commands.HandlerOption[T]{
		commands.WithLogger[T](baseLogger),
		commands.WithOperation[T]("users." + string(zero.action())),
		commands.WithTelemetry(commands.DefaultTelemetry[T](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &AccountHandler[T]{
		inner: commands.NewHandler[T](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[T].
func (h *AccountHandler[T]) Execute(ctx context.Context, msg T) error {
	return h.inner.Execute(ctx, msg)
}

// HandlerSet groups the account handlers produced by RegisterUserCommands.
type HandlerSet struct {
	Approve       *AccountHandler[ApproveAccountCommand]
	Suspend       *AccountHandler[SuspendAccountCommand]
	PromoteAdmin  *AccountHandler[PromoteAdminCommand]
	DemoteCreator *AccountHandler[DemoteCreatorCommand]
}

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// RegisterUserCommands builds the account handlers and registers them with reg when non-nil.
func RegisterUserCommands(reg CommandRegistry, service *users.Service, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if service == nil {
		return nil, ErrServiceRequired
	}
	logger := commands.CommandLogger(provider, "users")

	set := &HandlerSet{
		Approve:       NewAccountHandler[ApproveAccountCommand](service, logger),
		Suspend:       NewAccountHandler[SuspendAccountCommand](service, logger),
		PromoteAdmin:  NewAccountHandler[PromoteAdminCommand](service, logger),
		DemoteCreator: NewAccountHandler[DemoteCreatorCommand](service, logger),
	}
	if reg != nil {
		for _, handler := range []any{set.Approve, set.Suspend, set.PromoteAdmin, set.DemoteCreator} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// Dispatch routes a mutation for action to the matching handler.
func (s *HandlerSet) Dispatch(ctx context.Context, action access.Action, m AccountMutation) error {
	switch action {
	case access.ActionApprove:
		return s.Approve.Execute(ctx, ApproveAccountCommand{AccountMutation: m})
	case access.ActionSuspend:
		return s.Suspend.Execute(ctx, SuspendAccountCommand{AccountMutation: m})
	case access.ActionPromoteAdmin:
		return s.PromoteAdmin.Execute(ctx, PromoteAdminCommand{AccountMutation: m})
	case access.ActionDemoteCreator:
		return s.DemoteCreator.Execute(ctx, DemoteCreatorCommand{AccountMutation: m})
	default:
		return access.Decide(action, access.Subject{}, access.Subject{})
	}
}
