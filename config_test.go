package relayfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfig(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		want    Config
	}{
		{
			name:    "default values",
			envVars: map[string]string{},
			want: Config{
				MountTag:        "remote$",
				URIScheme:       "rexec",
				URIAuthority:    "systems",
				RemoteBackend:   "sftp",
				LocalBackend:    "local",
				LocalRoot:       "/",
				SFTPHostPattern: "%s",
				SFTPPort:        22,
				LogLevel:        "info",
			},
		},
		{
			name: "custom conventions",
			envVars: map[string]string{
				"RELAYFS_MOUNT_TAG":     "wsl$",
				"RELAYFS_URI_SCHEME":    "vm",
				"RELAYFS_URI_AUTHORITY": "machines",
				"RELAYFS_READ_ONLY":     "true",
			},
			want: Config{
				MountTag:        "wsl$",
				URIScheme:       "vm",
				URIAuthority:    "machines",
				RemoteBackend:   "sftp",
				LocalBackend:    "local",
				LocalRoot:       "/",
				ReadOnly:        true,
				SFTPHostPattern: "%s",
				SFTPPort:        22,
				LogLevel:        "info",
			},
		},
		{
			name: "sftp configuration",
			envVars: map[string]string{
				"RELAYFS_SFTP_HOST_PATTERN": "%s.internal",
				"RELAYFS_SFTP_PORT":         "2222",
				"RELAYFS_SFTP_USERNAME":     "relay",
				"RELAYFS_SFTP_PASSWORD":     "secret",
				"RELAYFS_SFTP_BASE_PATH":    "/srv",
				"RELAYFS_WATCH_ROOT":        "/mnt/systems",
				"RELAYFS_LOG_LEVEL":         "debug",
			},
			want: Config{
				MountTag:        "remote$",
				URIScheme:       "rexec",
				URIAuthority:    "systems",
				RemoteBackend:   "sftp",
				LocalBackend:    "local",
				LocalRoot:       "/",
				SFTPHostPattern: "%s.internal",
				SFTPPort:        2222,
				SFTPUsername:    "relay",
				SFTPPassword:    "secret",
				SFTPBasePath:    "/srv",
				WatchRoot:       "/mnt/systems",
				LogLevel:        "debug",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := GetConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.want, *cfg)
		})
	}
}

func TestGetConfigWithPrefix(t *testing.T) {
	t.Setenv("APP_RELAYFS_MOUNT_TAG", "dev$")
	t.Setenv("RELAYFS_MOUNT_TAG", "ignored$")

	cfg, err := GetConfigWithPrefix("APP_")
	require.NoError(t, err)
	assert.Equal(t, "dev$", cfg.MountTag)
}

func TestConfigConvention(t *testing.T) {
	cfg := &Config{MountTag: "wsl$", URIScheme: "vm", URIAuthority: "machines"}
	conv := cfg.Convention()
	assert.Equal(t, "wsl$", conv.MountTag)
	assert.Equal(t, "vm", conv.Scheme)
	assert.Equal(t, "machines", conv.Authority)

	// Empty fields keep the defaults.
	conv = (&Config{MountTag: "wsl$"}).Convention()
	assert.Equal(t, "wsl$", conv.MountTag)
	assert.Equal(t, DefaultConvention.Scheme, conv.Scheme)
	assert.Equal(t, DefaultConvention.Authority, conv.Authority)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"nil handled by caller", nil, true},
		{"missing remote backend", func(c *Config) { c.RemoteBackend = "" }, true},
		{"missing local backend", func(c *Config) { c.LocalBackend = "" }, true},
		{"missing mount tag", func(c *Config) { c.MountTag = "" }, true},
		{"mount tag with separator", func(c *Config) { c.MountTag = `a\b` }, true},
		{"sftp without host pattern", func(c *Config) {
			c.RemoteBackend = "sftp"
			c.SFTPHostPattern = ""
		}, true},
		{"non-sftp without host pattern", func(c *Config) {
			c.RemoteBackend = "memory"
			c.SFTPHostPattern = ""
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.mutate == nil {
				assert.Error(t, validateConfig(nil))
				return
			}
			cfg := &Config{
				MountTag:        "remote$",
				RemoteBackend:   "sftp",
				LocalBackend:    "local",
				SFTPHostPattern: "%s",
			}
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
