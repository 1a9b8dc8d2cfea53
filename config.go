package relayfs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Path conventions
	MountTag     string `env:"RELAYFS_MOUNT_TAG,default:remote$"`
	URIScheme    string `env:"RELAYFS_URI_SCHEME,default:rexec"`
	URIAuthority string `env:"RELAYFS_URI_AUTHORITY,default:systems"`

	// Backend driver selection (registered via driver packages)
	RemoteBackend string `env:"RELAYFS_REMOTE_BACKEND,default:sftp"`
	LocalBackend  string `env:"RELAYFS_LOCAL_BACKEND,default:local"`
	LocalRoot     string `env:"RELAYFS_LOCAL_ROOT,default:/"`

	// ReadOnly wraps every remote backend so mutations are rejected
	ReadOnly bool `env:"RELAYFS_READ_ONLY,default:false"`

	// SFTP remote backend configuration. HostPattern is expanded with the
	// system id (e.g. "%s.internal" -> "Ubuntu-22.04.internal").
	SFTPHostPattern string `env:"RELAYFS_SFTP_HOST_PATTERN,default:%s"`
	SFTPPort        int    `env:"RELAYFS_SFTP_PORT,default:22"`
	SFTPUsername    string `env:"RELAYFS_SFTP_USERNAME"`
	SFTPPassword    string `env:"RELAYFS_SFTP_PASSWORD"`
	SFTPPrivateKey  string `env:"RELAYFS_SFTP_PRIVATE_KEY"` // Path to private key file
	SFTPBasePath    string `env:"RELAYFS_SFTP_BASE_PATH"`

	// WatchRoot, when set, is the directory watched by the mount-watch
	// system registry: each subdirectory is one known system id.
	WatchRoot string `env:"RELAYFS_WATCH_ROOT"`

	LogLevel string `env:"RELAYFS_LOG_LEVEL,default:info"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetConfigWithPrefix returns config loaded from environment variables with
// the given prefix prepended to every key.
func GetConfigWithPrefix(prefix string) (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: prefix}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Convention derives the path conventions from configuration.
func (c *Config) Convention() Convention {
	conv := DefaultConvention
	if c.MountTag != "" {
		conv.MountTag = c.MountTag
	}
	if c.URIScheme != "" {
		conv.Scheme = c.URIScheme
	}
	if c.URIAuthority != "" {
		conv.Authority = c.URIAuthority
	}
	return conv
}

// NewLogger builds a structured logger honoring the configured level.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// validateConfig checks configuration validity
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if cfg.RemoteBackend == "" {
		return errors.New("remote backend is required")
	}
	if cfg.LocalBackend == "" {
		return errors.New("local backend is required")
	}
	if cfg.MountTag == "" {
		return errors.New("mount tag is required")
	}
	if strings.ContainsAny(cfg.MountTag, `/\`) {
		return fmt.Errorf("mount tag must be a single path component: %q", cfg.MountTag)
	}
	if cfg.RemoteBackend == "sftp" && cfg.SFTPHostPattern == "" {
		return errors.New("sftp host pattern is required for sftp backend")
	}
	return nil
}
