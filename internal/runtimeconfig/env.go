package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by LoadEnv.
const EnvPrefix = "NOTES_"

// LoadEnv overlays environment variables onto cfg. Each file in files is
// loaded first with godotenv; missing files are skipped and variables already
// present in the environment are never overwritten.
func LoadEnv(cfg *Config, files ...string) error {
	if cfg == nil {
		return errors.New("notes config: nil config")
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("notes config: load %s: %w", file, err)
		}
	}

	var errs []error
	str := func(key string, target *string) {
		if value, ok := lookup(key); ok {
			*target = value
		}
	}
	boolean := func(key string, target *bool) {
		if value, ok := lookup(key); ok {
			parsed, err := strconv.ParseBool(value)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*target = parsed
		}
	}
	duration := func(key string, target *time.Duration) {
		if value, ok := lookup(key); ok {
			parsed, err := time.ParseDuration(value)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*target = parsed
		}
	}
	integer := func(key string, target *int64) {
		if value, ok := lookup(key); ok {
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*target = parsed
		}
	}
	list := func(key string, target *[]string) {
		if value, ok := lookup(key); ok {
			*target = splitList(value)
		}
	}

	str("SERVER_ADDR", &cfg.Server.Addr)
	duration("SERVER_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	boolean("SERVER_SECURE_COOKIES", &cfg.Server.SecureCookies)

	str("AUTH_SECRET", &cfg.Auth.Secret)
	duration("AUTH_TOKEN_TTL", &cfg.Auth.TokenTTL)
	str("AUTH_ISSUER", &cfg.Auth.Issuer)
	str("AUTH_COOKIE_NAME", &cfg.Auth.CookieName)

	str("STORAGE_DRIVER", &cfg.Storage.Driver)
	str("STORAGE_DSN", &cfg.Storage.DSN)
	boolean("STORAGE_AUTO_MIGRATE", &cfg.Storage.AutoMigrate)

	str("MARKDOWN_CONTENT_DIR", &cfg.Markdown.ContentDir)
	str("MARKDOWN_THEME", &cfg.Markdown.Theme)
	list("MARKDOWN_TRANSFORMERS", &cfg.Markdown.Transformers)

	boolean("MEDIA_ENABLED", &cfg.Media.Enabled)
	str("MEDIA_PROVIDER", &cfg.Media.Provider)
	str("MEDIA_PUBLIC_BASE_URL", &cfg.Media.PublicBaseURL)
	str("MEDIA_BUCKET", &cfg.Media.Bucket)
	str("MEDIA_ENDPOINT", &cfg.Media.Endpoint)
	str("MEDIA_ACCESS_KEY", &cfg.Media.AccessKey)
	str("MEDIA_SECRET_KEY", &cfg.Media.SecretKey)
	boolean("MEDIA_USE_SSL", &cfg.Media.UseSSL)
	integer("MEDIA_MAX_UPLOAD_BYTES", &cfg.Media.MaxUploadBytes)

	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)
	boolean("LOG_ADD_SOURCE", &cfg.Logging.AddSource)
	list("LOG_FOCUS", &cfg.Logging.Focus)

	var activityLimit = int64(cfg.Activity.Limit)
	integer("ACTIVITY_LIMIT", &activityLimit)
	cfg.Activity.Limit = int(activityLimit)

	return errors.Join(errs...)
}

func lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
