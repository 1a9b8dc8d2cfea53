package local

import "github.com/relayfs/relayfs"

func init() {
	relayfs.RegisterBackend("local", func(cfg *relayfs.Config, id relayfs.SystemID) (relayfs.FileSystem, error) {
		return New(cfg.LocalRoot)
	})
}
