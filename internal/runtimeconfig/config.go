package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var ErrAuthSecretRequired = errors.New("notes config: auth secret is required")
var ErrTokenTTLInvalid = errors.New("notes config: token ttl must be positive")
var ErrStorageDriverUnknown = errors.New("notes config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("notes config: storage dsn is required")
var ErrMarkdownContentDirRequired = errors.New("notes config: markdown content directory is required")
var ErrMediaProviderUnknown = errors.New("notes config: media provider is invalid")
var ErrMediaBaseURLInvalid = errors.New("notes config: media public base url must be absolute")
var ErrMediaBucketRequired = errors.New("notes config: media bucket is required")
var ErrMediaMinioEndpointRequired = errors.New("notes config: minio endpoint and credentials are required")
var ErrMediaUploadLimitInvalid = errors.New("notes config: media upload limit must be positive")
var ErrLoggingLevelInvalid = errors.New("notes config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("notes config: logging format is invalid")
var ErrServerAddrRequired = errors.New("notes config: server address is required")

// Config aggregates the runtime settings of the notes service.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Markdown MarkdownConfig
	Media    MediaConfig
	Logging  LoggingConfig
	Activity ActivityConfig
}

// ServerConfig captures HTTP listener settings.
type ServerConfig struct {
	Addr           string
	RequestTimeout time.Duration
	SecureCookies  bool
}

// AuthConfig captures session token settings.
type AuthConfig struct {
	Secret     string
	TokenTTL   time.Duration
	Issuer     string
	CookieName string
}

// StorageConfig selects the profile database.
type StorageConfig struct {
	Driver      string
	DSN         string
	AutoMigrate bool
}

// MarkdownConfig captures the article library and render defaults.
type MarkdownConfig struct {
	ContentDir   string
	Theme        string
	Transformers []string
}

// MediaConfig captures the upload bucket.
type MediaConfig struct {
	Enabled        bool
	Provider       string
	PublicBaseURL  string
	Bucket         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	MaxUploadBytes int64
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// ActivityConfig bounds the in-memory admin activity log.
type ActivityConfig struct {
	Limit int
}

// DefaultConfig returns defaults suitable for local development.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 60 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL:   24 * time.Hour,
			Issuer:     "go-notes",
			CookieName: "notes_session",
		},
		Storage: StorageConfig{
			Driver:      "sqlite",
			DSN:         "file:notes.db?cache=shared",
			AutoMigrate: true,
		},
		Markdown: MarkdownConfig{
			ContentDir: "content",
			Theme:      "github",
		},
		Media: MediaConfig{
			Provider:       "memory",
			PublicBaseURL:  "http://localhost:9000",
			Bucket:         "wyNotes",
			MaxUploadBytes: 5 << 20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Activity: ActivityConfig{
			Limit: 500,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return ErrServerAddrRequired
	}
	if strings.TrimSpace(cfg.Auth.Secret) == "" {
		return ErrAuthSecretRequired
	}
	if cfg.Auth.TokenTTL <= 0 {
		return ErrTokenTTLInvalid
	}

	switch normalize(cfg.Storage.Driver) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}

	if strings.TrimSpace(cfg.Markdown.ContentDir) == "" {
		return ErrMarkdownContentDirRequired
	}

	if cfg.Media.Enabled {
		if err := cfg.Media.validate(); err != nil {
			return err
		}
	}

	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

func (m MediaConfig) validate() error {
	provider := normalize(m.Provider)
	if provider != "memory" && provider != "minio" {
		return fmt.Errorf("%w: %s", ErrMediaProviderUnknown, m.Provider)
	}
	parsed, err := url.Parse(strings.TrimSpace(m.PublicBaseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ErrMediaBaseURLInvalid
	}
	if strings.TrimSpace(m.Bucket) == "" {
		return ErrMediaBucketRequired
	}
	if m.MaxUploadBytes <= 0 {
		return ErrMediaUploadLimitInvalid
	}
	if provider == "minio" {
		if strings.TrimSpace(m.Endpoint) == "" || strings.TrimSpace(m.AccessKey) == "" || strings.TrimSpace(m.SecretKey) == "" {
			return ErrMediaMinioEndpointRequired
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
