package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wynotes/go-notes/internal/access"
	userscmd "github.com/wynotes/go-notes/internal/commands/users"
	"github.com/wynotes/go-notes/internal/identity"
	"github.com/wynotes/go-notes/internal/logging"
	"github.com/wynotes/go-notes/internal/markdown"
	"github.com/wynotes/go-notes/internal/media"
	"github.com/wynotes/go-notes/internal/users"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

const defaultRequestTimeout = 60 * time.Second

// ActivityLog exposes recorded administrative activity, newest first.
type ActivityLog interface {
	Records() []interfaces.ActivityRecord
}

// API registers the admin and public endpoints.
type API struct {
	basePath string
	gate     *access.Gate
	users    *users.Service
	commands *userscmd.HandlerSet
	markdown *markdown.Service
	media    media.Service
	activity ActivityLog
	sessions *identity.Middleware
	secure   bool
	logger   interfaces.Logger
	timeout  time.Duration
}

// Option mutates the API configuration.
type Option func(*API)

// NewAPI constructs an API instance. A gate is required before Register.
func NewAPI(opts ...Option) *API {
	api := &API{
		basePath: "/admin/api",
		logger:   logging.NoOp(),
		timeout:  defaultRequestTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the admin API path (defaults to "/admin/api").
func WithBasePath(path string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithGate wires the access gate guarding every admin route.
func WithGate(gate *access.Gate) Option {
	return func(api *API) {
		api.gate = gate
	}
}

// WithUserService wires account listing and self-service profile edits.
func WithUserService(service *users.Service) Option {
	return func(api *API) {
		api.users = service
	}
}

// WithUserCommands wires the account mutation command handlers.
func WithUserCommands(set *userscmd.HandlerSet) Option {
	return func(api *API) {
		api.commands = set
	}
}

// WithMarkdownService wires previews and article rendering.
func WithMarkdownService(service *markdown.Service) Option {
	return func(api *API) {
		api.markdown = service
	}
}

// WithMediaService wires uploads and orphan cleanup.
func WithMediaService(service media.Service) Option {
	return func(api *API) {
		api.media = service
	}
}

// WithActivityLog wires the admin activity log.
func WithActivityLog(log ActivityLog) Option {
	return func(api *API) {
		api.activity = log
	}
}

// WithSessions installs the session middleware ahead of every route.
func WithSessions(sessions *identity.Middleware) Option {
	return func(api *API) {
		api.sessions = sessions
	}
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(api *API) {
		api.secure = secure
	}
}

// WithLogger sets the adapter logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// WithRequestTimeout overrides the per-request timeout used by Router.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(api *API) {
		if timeout > 0 {
			api.timeout = timeout
		}
	}
}

// Register attaches every endpoint to r.
func (api *API) Register(r chi.Router) error {
	if r == nil {
		return fmt.Errorf("http: router is required")
	}
	if api == nil {
		return fmt.Errorf("http: api is nil")
	}
	if api.gate == nil {
		return fmt.Errorf("http: access gate is required")
	}

	r.Route(joinPath(api.basePath, ""), func(r chi.Router) {
		r.Use(api.provisionProfile)
		api.registerAccountRoutes(r)
		api.registerMarkdownRoutes(r)
		api.registerMediaRoutes(r)
	})
	api.registerPublicRoutes(r)
	return nil
}

// Router builds a chi router with the standard middleware stack and every
// endpoint registered.
func (api *API) Router() (http.Handler, error) {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		tagRequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(api.timeout),
	)
	if api.sessions != nil {
		router.Use(api.sessions.Handler)
	}
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if err := api.Register(router); err != nil {
		return nil, err
	}
	return router, nil
}

func tagRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.ContextWithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
