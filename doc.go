// Package relayfs provides a routing filesystem provider that presents a
// single coherent view over two backends: a virtualized remote-execution
// filesystem (one instance per remote system) and the host's native
// filesystem, which exposes the same remote systems through a mount-like
// path prefix.
//
// # Path conventions
//
// Each remote system is addressed under two equivalent syntaxes:
//
//   - Remote form: rexec://systems/<system-id>/home/user
//   - Mount form:  \\remote$\<system-id>\home\user
//
// [Coordinate] holds one logical path in both forms, translated once at
// construction. System ids are matched case-insensitively against the mount
// root, so \\remote$\ubuntu-22.04\home resolves to the system registered as
// "Ubuntu-22.04".
//
// # Routing
//
// [Provider] implements the full filesystem capability set over mount-form
// paths. Most operations translate the path and delegate to the remote
// backend. Operations the remote backend lacks (hard links) degrade to
// local-backend delegation on the untranslated path; host-view concepts
// (hidden files) are answered by the local backend only. The dispatch
// policy lives in a single static table (see RouteFor).
//
// Copy and move classify each (source, target) pair: same-system pairs
// delegate natively to the remote backend, cross-backend pairs perform a
// generic recursive byte-stream transfer ([TransferTree]) with documented
// non-atomic partial-failure behavior.
//
// # Backends
//
// Backends implement [FileSystem] plus optional capability interfaces
// detected by type assertion. Three drivers ship with the module:
//
//   - Host filesystem (github.com/relayfs/relayfs/driver/local)
//   - SFTP remote systems (github.com/relayfs/relayfs/driver/sftp)
//   - In-memory (github.com/relayfs/relayfs/driver/memory)
//
// Drivers self-register; import them for side effect:
//
//	import (
//	    _ "github.com/relayfs/relayfs/driver/local"
//	    _ "github.com/relayfs/relayfs/driver/sftp"
//	)
//
// # Basic usage
//
//	cfg, err := relayfs.GetConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry := relayfs.NewStaticRegistry("Ubuntu-22.04")
//	provider, err := relayfs.NewProvider(cfg, registry)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	ctx := context.Background()
//
//	// Read through the mount form
//	data, err := provider.ReadAll(ctx, `\\remote$\Ubuntu-22.04\etc\hostname`)
//
//	// Cross-system copy (generic byte-stream transfer)
//	err = provider.Copy(ctx,
//	    `\\remote$\Ubuntu-22.04\home\u\file.txt`,
//	    `\\remote$\Debian-12\home\u\file.txt`,
//	    relayfs.WithCopyAttributes(true))
//
// To track systems appearing and disappearing on the host, use
// [MountWatchRegistry] instead of a static registry; removal events evict
// the per-system filesystem instance so the next access builds a fresh one.
package relayfs
