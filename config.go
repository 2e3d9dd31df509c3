package notes

import "github.com/wynotes/go-notes/internal/runtimeconfig"

var (
	ErrAuthSecretRequired         = runtimeconfig.ErrAuthSecretRequired
	ErrTokenTTLInvalid            = runtimeconfig.ErrTokenTTLInvalid
	ErrStorageDriverUnknown       = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired         = runtimeconfig.ErrStorageDSNRequired
	ErrMarkdownContentDirRequired = runtimeconfig.ErrMarkdownContentDirRequired
	ErrMediaProviderUnknown       = runtimeconfig.ErrMediaProviderUnknown
	ErrMediaBaseURLInvalid        = runtimeconfig.ErrMediaBaseURLInvalid
	ErrMediaBucketRequired        = runtimeconfig.ErrMediaBucketRequired
	ErrMediaMinioEndpointRequired = runtimeconfig.ErrMediaMinioEndpointRequired
	ErrMediaUploadLimitInvalid    = runtimeconfig.ErrMediaUploadLimitInvalid
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
	ErrServerAddrRequired         = runtimeconfig.ErrServerAddrRequired
)

type (
	Config         = runtimeconfig.Config
	ServerConfig   = runtimeconfig.ServerConfig
	AuthConfig     = runtimeconfig.AuthConfig
	StorageConfig  = runtimeconfig.StorageConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	MediaConfig    = runtimeconfig.MediaConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	ActivityConfig = runtimeconfig.ActivityConfig
)

// DefaultConfig returns defaults suitable for local development.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadEnv overlays NOTES_* environment variables and optional dotenv files onto cfg.
func LoadEnv(cfg *Config, files ...string) error {
	return runtimeconfig.LoadEnv(cfg, files...)
}
