package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/wynotes/go-notes/internal/access"
	userscmd "github.com/wynotes/go-notes/internal/commands/users"
	notehttp "github.com/wynotes/go-notes/internal/http"
	"github.com/wynotes/go-notes/internal/identity"
	"github.com/wynotes/go-notes/internal/logging"
	"github.com/wynotes/go-notes/internal/logging/gologger"
	"github.com/wynotes/go-notes/internal/markdown"
	"github.com/wynotes/go-notes/internal/media"
	"github.com/wynotes/go-notes/internal/runtimeconfig"
	"github.com/wynotes/go-notes/internal/users"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

// Container wires module dependencies from a validated configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB       *bun.DB
	ownsDB      bool
	profileRepo users.ProfileRepository
	contentFS   fs.FS
	objectStore interfaces.ObjectStore
	registry    userscmd.CommandRegistry
	bus         *CommandBus

	activity *users.MemoryActivitySink
	gate     *access.Gate
	userSvc  *users.Service
	commands *userscmd.HandlerSet
	loader   *markdown.Loader
	markdown *markdown.Service
	media    media.Service
	issuer   *identity.Issuer
	sessions *identity.Middleware
	api      *notehttp.API
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the go-logger provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB supplies an open database. The container does not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithProfileRepository overrides the profile store, bypassing the database.
func WithProfileRepository(repo users.ProfileRepository) Option {
	return func(c *Container) {
		c.profileRepo = repo
	}
}

// WithContentFS overrides the filesystem the article library is read from.
func WithContentFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.contentFS = fsys
	}
}

// WithObjectStore overrides the upload bucket implementation.
func WithObjectStore(store interfaces.ObjectStore) Option {
	return func(c *Container) {
		c.objectStore = store
	}
}

// WithCommandRegistry registers the account handlers with reg instead of the
// in-process go-command dispatcher.
func WithCommandRegistry(reg userscmd.CommandRegistry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	steps := []func() error{
		c.configureLogging,
		c.configureProfiles,
		c.configureUsers,
		c.configureCommands,
		c.configureMarkdown,
		c.configureMedia,
		c.configureSessions,
		c.configureHTTP,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureProfiles() error {
	if c.profileRepo != nil {
		return nil
	}
	if c.bunDB == nil {
		db, err := OpenDB(c.Config.Storage)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if c.Config.Storage.AutoMigrate {
		if err := EnsureSchema(context.Background(), c.bunDB); err != nil {
			return err
		}
	}
	c.profileRepo = users.NewBunProfileRepository(c.bunDB)
	return nil
}

func (c *Container) configureUsers() error {
	c.gate = access.NewGate(
		users.NewDirectory(c.profileRepo),
		access.WithLogger(logging.AccessLogger(c.loggerProvider)),
	)

	c.activity = users.NewMemoryActivitySink(c.Config.Activity.Limit)
	svc, err := users.NewService(c.profileRepo, c.gate,
		users.WithActivitySink(users.MultiActivitySink{
			c.activity,
			users.LoggerActivitySink{Logger: logging.UsersLogger(c.loggerProvider)},
		}),
		users.WithLogger(logging.UsersLogger(c.loggerProvider)),
	)
	if err != nil {
		return err
	}
	c.userSvc = svc
	return nil
}

func (c *Container) configureCommands() error {
	reg := c.registry
	if reg == nil {
		c.bus = NewCommandBus()
		reg = c.bus
	}
	set, err := userscmd.RegisterUserCommands(reg, c.userSvc, c.loggerProvider)
	if err != nil {
		return fmt.Errorf("register user commands: %w", err)
	}
	c.commands = set
	return nil
}

func (c *Container) configureMarkdown() error {
	if c.contentFS == nil {
		c.contentFS = os.DirFS(c.Config.Markdown.ContentDir)
	}
	c.loader = markdown.NewLoader(c.contentFS, ".")

	transformers := c.Config.Markdown.Transformers
	if len(transformers) == 0 {
		transformers = markdown.DefaultTransformers()
	}
	renderer := markdown.NewRenderer(markdown.Config{
		Theme:        c.Config.Markdown.Theme,
		Transformers: transformers,
	}, markdown.WithLogger(logging.MarkdownLogger(c.loggerProvider)))

	c.markdown = markdown.NewService(renderer, c.loader,
		markdown.WithServiceLogger(logging.MarkdownLogger(c.loggerProvider)),
	)
	return nil
}

func (c *Container) configureMedia() error {
	if !c.Config.Media.Enabled {
		return nil
	}
	cfg := c.Config.Media

	if c.objectStore == nil {
		switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
		case "minio":
			store, err := media.NewMinioStore(media.MinioConfig{
				Endpoint:  cfg.Endpoint,
				AccessKey: cfg.AccessKey,
				SecretKey: cfg.SecretKey,
				Bucket:    cfg.Bucket,
				UseSSL:    cfg.UseSSL,
			})
			if err != nil {
				return fmt.Errorf("media: %w", err)
			}
			c.objectStore = store
		default:
			c.objectStore = media.NewMemoryStore(cfg.Bucket)
		}
	}

	locator, err := media.NewLocator(cfg.PublicBaseURL, c.objectStore.Bucket())
	if err != nil {
		return fmt.Errorf("media: %w", err)
	}
	svc, err := media.NewService(c.objectStore, locator,
		media.WithReferenceSources(
			users.AvatarReferences{Repo: c.profileRepo},
			markdown.DocumentReferences{Source: c.loader},
		),
		media.WithMaxUploadBytes(cfg.MaxUploadBytes),
		media.WithLogger(logging.MediaLogger(c.loggerProvider)),
	)
	if err != nil {
		return err
	}
	c.media = svc
	return nil
}

func (c *Container) configureSessions() error {
	issuer, err := identity.NewIssuer(c.Config.Auth.Secret,
		identity.WithTTL(c.Config.Auth.TokenTTL),
		identity.WithIssuerName(c.Config.Auth.Issuer),
	)
	if err != nil {
		return err
	}
	c.issuer = issuer
	c.sessions = identity.NewMiddleware(issuer,
		identity.WithCookieName(c.Config.Auth.CookieName),
		identity.WithLogger(logging.ModuleLogger(c.loggerProvider, "notes.identity")),
	)
	return nil
}

func (c *Container) configureHTTP() error {
	opts := []notehttp.Option{
		notehttp.WithGate(c.gate),
		notehttp.WithUserService(c.userSvc),
		notehttp.WithUserCommands(c.commands),
		notehttp.WithMarkdownService(c.markdown),
		notehttp.WithActivityLog(c.activity),
		notehttp.WithSessions(c.sessions),
		notehttp.WithSecureCookies(c.Config.Server.SecureCookies),
		notehttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
		notehttp.WithRequestTimeout(c.Config.Server.RequestTimeout),
	}
	if c.media != nil {
		opts = append(opts, notehttp.WithMediaService(c.media))
	}
	c.api = notehttp.NewAPI(opts...)
	return nil
}

// Close releases the database opened by the container and drops dispatcher
// subscriptions.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.bus != nil {
		c.bus.Close()
	}
	if c.ownsDB && c.bunDB != nil {
		errs = append(errs, c.bunDB.Close())
		c.bunDB = nil
	}
	return errors.Join(errs...)
}

// LoggerProvider returns the configured logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// DB returns the bun database, nil when a profile repository was injected.
func (c *Container) DB() *bun.DB { return c.bunDB }

// Gate returns the access gate.
func (c *Container) Gate() *access.Gate { return c.gate }

// UserService returns the account administration service.
func (c *Container) UserService() *users.Service { return c.userSvc }

// UserCommands returns the registered account command handlers.
func (c *Container) UserCommands() *userscmd.HandlerSet { return c.commands }

// ActivityLog returns the in-memory admin activity sink.
func (c *Container) ActivityLog() *users.MemoryActivitySink { return c.activity }

// MarkdownService returns the article service.
func (c *Container) MarkdownService() *markdown.Service { return c.markdown }

// MediaService returns the media service, nil when media is disabled.
func (c *Container) MediaService() media.Service { return c.media }

// ObjectStore returns the upload bucket, nil when media is disabled.
func (c *Container) ObjectStore() interfaces.ObjectStore { return c.objectStore }

// Issuer returns the session token issuer.
func (c *Container) Issuer() *identity.Issuer { return c.issuer }

// Sessions returns the session middleware.
func (c *Container) Sessions() *identity.Middleware { return c.sessions }

// API returns the HTTP API.
func (c *Container) API() *notehttp.API { return c.api }

// OpenDB opens the profile database selected by cfg.
func OpenDB(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "postgres":
		sqlDB, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	case "sqlite":
		sqlDB, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrStorageDriverUnknown, cfg.Driver)
	}
}

// EnsureSchema creates the profiles table when it does not exist.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return errors.New("di: database is required")
	}
	if _, err := db.NewCreateTable().Model((*users.Profile)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create profiles table: %w", err)
	}
	return nil
}
