package memory

import (
	"github.com/relayfs/relayfs"
)

func init() {
	relayfs.RegisterBackend("memory", func(cfg *relayfs.Config, id relayfs.SystemID) (relayfs.FileSystem, error) {
		return New(), nil
	})
}
