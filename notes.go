package notes

import (
	"net/http"

	userscmd "github.com/wynotes/go-notes/internal/commands/users"
	"github.com/wynotes/go-notes/internal/di"
	"github.com/wynotes/go-notes/internal/identity"
	"github.com/wynotes/go-notes/internal/markdown"
	"github.com/wynotes/go-notes/internal/media"
	"github.com/wynotes/go-notes/internal/users"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

// UserService exports the account administration service.
type UserService = *users.Service

// MarkdownService exports the article rendering service.
type MarkdownService = *markdown.Service

// MediaService exports the upload and cleanup contract.
type MediaService = media.Service

// UserCommands exports the account command handlers.
type UserCommands = *userscmd.HandlerSet

// Module represents the top level notes runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a notes module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Users returns the account administration service.
func (m *Module) Users() UserService {
	return m.container.UserService()
}

// Commands returns the account command handlers.
func (m *Module) Commands() UserCommands {
	return m.container.UserCommands()
}

// Markdown returns the article service.
func (m *Module) Markdown() MarkdownService {
	return m.container.MarkdownService()
}

// Media returns the media service, nil when media is disabled.
func (m *Module) Media() MediaService {
	return m.container.MediaService()
}

// Sessions returns the session token issuer.
func (m *Module) Sessions() *identity.Issuer {
	return m.container.Issuer()
}

// Logger returns a logger scoped to module.
func (m *Module) Logger(module string) interfaces.Logger {
	return m.container.LoggerProvider().GetLogger(module)
}

// Handler builds the HTTP handler serving the admin and public API.
func (m *Module) Handler() (http.Handler, error) {
	return m.container.API().Router()
}

// Close releases resources held by the module.
func (m *Module) Close() error {
	return m.container.Close()
}
