package sftp

import (
	"fmt"
	"os"
	"strings"

	"github.com/relayfs/relayfs"
)

func init() {
	relayfs.RegisterBackend("sftp", func(cfg *relayfs.Config, id relayfs.SystemID) (relayfs.FileSystem, error) {
		if cfg.SFTPHostPattern == "" {
			return nil, fmt.Errorf("SFTP host pattern is required")
		}

		host := cfg.SFTPHostPattern
		if strings.Contains(host, "%s") {
			host = fmt.Sprintf(cfg.SFTPHostPattern, string(id))
		}

		sftpConfig := Config{
			Host:     host,
			Port:     cfg.SFTPPort,
			Username: cfg.SFTPUsername,
			Password: cfg.SFTPPassword,
			BasePath: cfg.SFTPBasePath,
		}

		// Load private key if specified
		if cfg.SFTPPrivateKey != "" {
			keyData, err := os.ReadFile(cfg.SFTPPrivateKey)
			if err != nil {
				return nil, fmt.Errorf("failed to read private key: %w", err)
			}
			sftpConfig.PrivateKey = keyData
		}

		return New(sftpConfig)
	})
}
