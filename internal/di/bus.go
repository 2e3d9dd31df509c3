package di

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	userscmd "github.com/wynotes/go-notes/internal/commands/users"
)

// CommandBus subscribes registered handlers to the go-command dispatcher so
// account commands can also be sent with dispatcher.Dispatch.
type CommandBus struct {
	mu            sync.Mutex
	subscriptions []subscription
	opts          []runner.Option
}

type subscription interface {
	Unsubscribe()
}

// NewCommandBus constructs a bus applying opts to every subscription.
func NewCommandBus(opts ...runner.Option) *CommandBus {
	return &CommandBus{opts: opts}
}

// RegisterCommand satisfies userscmd.CommandRegistry.
func (b *CommandBus) RegisterCommand(handler any) error {
	var sub subscription
	switch h := handler.(type) {
	case *userscmd.AccountHandler[userscmd.ApproveAccountCommand]:
		sub = dispatcher.SubscribeCommand(h, b.opts...)
	case *userscmd.AccountHandler[userscmd.SuspendAccountCommand]:
		sub = dispatcher.SubscribeCommand(h, b.opts...)
	case *userscmd.AccountHandler[userscmd.PromoteAdminCommand]:
		sub = dispatcher.SubscribeCommand(h, b.opts...)
	case *userscmd.AccountHandler[userscmd.DemoteCreatorCommand]:
		sub = dispatcher.SubscribeCommand(h, b.opts...)
	default:
		return fmt.Errorf("di: unsupported command handler %T", handler)
	}

	b.mu.Lock()
	b.subscriptions = append(b.subscriptions, sub)
	b.mu.Unlock()
	return nil
}

// Len reports the number of live subscriptions.
func (b *CommandBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscriptions)
}

// Close unsubscribes every handler.
func (b *CommandBus) Close() {
	b.mu.Lock()
	subs := b.subscriptions
	b.subscriptions = nil
	b.mu.Unlock()
	for _, sub := range subs {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
}
