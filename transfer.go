package relayfs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gobwas/glob"
)

// Endpoint names one side of a tree transfer: a backend plus the path it
// addresses in that backend's own syntax.
type Endpoint struct {
	FS   FileSystem
	Path string
}

func (e Endpoint) child(name string) Endpoint {
	return Endpoint{FS: e.FS, Path: joinEntry(e.Path, name)}
}

// TransferSpec configures one backend-agnostic recursive tree transfer.
type TransferSpec struct {
	Source Endpoint
	Dest   Endpoint

	// RemoveSource deletes each source entry only after its destination
	// entry is fully and successfully written (move semantics).
	RemoveSource bool

	// CopyAttributes preserves source timestamps and metadata on the
	// destination, where the destination backend supports it.
	CopyAttributes bool

	// Filter restricts which file entries are copied. Nil copies all.
	Filter glob.Glob

	// Verify re-reads both sides after each file copy and compares
	// checksums. Empty disables verification.
	Verify ChecksumAlgorithm
}

// TransferTree performs a generic recursive tree transfer between two
// backends using ordinary byte-stream copies.
//
// The transfer is not atomic: a failure partway leaves the destination
// partially populated and, for move, the source partially deleted. No
// rollback is performed; the returned error reports the point of failure.
// I/O is sequential on the calling goroutine.
func TransferTree(ctx context.Context, log *slog.Logger, spec TransferSpec) error {
	if log == nil {
		log = slog.Default()
	}

	info, err := spec.Source.FS.Stat(ctx, spec.Source.Path)
	if err != nil {
		return fmt.Errorf("stat source %s: %w", spec.Source.Path, err)
	}
	if info.IsDir {
		return transferDir(ctx, log, spec)
	}
	return transferFile(ctx, log, spec, info)
}

func transferDir(ctx context.Context, log *slog.Logger, spec TransferSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := spec.Dest.FS.CreateDir(ctx, spec.Dest.Path); err != nil {
		return fmt.Errorf("create dir %s: %w", spec.Dest.Path, err)
	}

	entries, err := spec.Source.FS.ListContents(ctx, spec.Source.Path, false)
	if err != nil {
		return fmt.Errorf("list %s: %w", spec.Source.Path, err)
	}

	for _, entry := range entries {
		child := spec
		child.Source = spec.Source.child(entry.Name)
		child.Dest = spec.Dest.child(entry.Name)
		if entry.IsDir {
			if err := transferDir(ctx, log, child); err != nil {
				return err
			}
			continue
		}
		info := entry
		if err := transferFile(ctx, log, child, &info); err != nil {
			return err
		}
	}

	// Children are gone by now under move semantics, leaving the directory
	// empty. A filtered move keeps unmatched entries in place, so the
	// directory is only removed once nothing is left in it.
	if spec.RemoveSource {
		if spec.Filter != nil {
			left, err := spec.Source.FS.ListContents(ctx, spec.Source.Path, false)
			if err != nil {
				return fmt.Errorf("list %s: %w", spec.Source.Path, err)
			}
			if len(left) > 0 {
				return nil
			}
		}
		if err := spec.Source.FS.DeleteDir(ctx, spec.Source.Path); err != nil {
			return fmt.Errorf("delete source dir %s: %w", spec.Source.Path, err)
		}
	}
	return nil
}

func transferFile(ctx context.Context, log *slog.Logger, spec TransferSpec, info *FileInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if spec.Filter != nil && !spec.Filter.Match(info.Name) {
		log.Debug("transfer: entry filtered out", "path", spec.Source.Path)
		return nil
	}

	rc, err := spec.Source.FS.Read(ctx, spec.Source.Path)
	if err != nil {
		return fmt.Errorf("read source %s: %w", spec.Source.Path, err)
	}

	opts := []Option{WithOverwrite(true)}
	if spec.CopyAttributes {
		if info.ContentType != "" {
			opts = append(opts, WithContentType(info.ContentType))
		}
		if len(info.Metadata) > 0 {
			opts = append(opts, WithMetadata(info.Metadata))
		}
	}

	if err := spec.Dest.FS.Write(ctx, spec.Dest.Path, rc, opts...); err != nil {
		rc.Close()
		return fmt.Errorf("write destination %s: %w", spec.Dest.Path, err)
	}
	if err := rc.Close(); err != nil {
		return fmt.Errorf("close source %s: %w", spec.Source.Path, err)
	}

	if spec.CopyAttributes {
		if setter, ok := spec.Dest.FS.(CanSetTimes); ok {
			if err := setter.SetTimes(ctx, spec.Dest.Path, info.AccessTime, info.ModTime); err != nil {
				return fmt.Errorf("set times on %s: %w", spec.Dest.Path, err)
			}
		}
	}

	if spec.Verify != "" {
		if err := verifyTransfer(ctx, spec); err != nil {
			return err
		}
	}

	// Source deletion strictly follows a complete destination write.
	if spec.RemoveSource {
		if err := spec.Source.FS.Delete(ctx, spec.Source.Path); err != nil {
			return fmt.Errorf("delete source %s: %w", spec.Source.Path, err)
		}
	}
	return nil
}

// verifyTransfer compares source and destination checksums for one file.
func verifyTransfer(ctx context.Context, spec TransferSpec) error {
	srcSum, err := checksumOf(ctx, spec.Source, spec.Verify)
	if err != nil {
		return fmt.Errorf("checksum source %s: %w", spec.Source.Path, err)
	}
	dstSum, err := checksumOf(ctx, spec.Dest, spec.Verify)
	if err != nil {
		return fmt.Errorf("checksum destination %s: %w", spec.Dest.Path, err)
	}
	if srcSum != dstSum {
		return fmt.Errorf("transfer verification failed for %s: %s source=%s destination=%s",
			spec.Dest.Path, spec.Verify, srcSum, dstSum)
	}
	return nil
}

// checksumOf uses the backend's native checksum support when present and
// falls back to a streaming read otherwise.
func checksumOf(ctx context.Context, e Endpoint, algorithm ChecksumAlgorithm) (string, error) {
	if cs, ok := e.FS.(CanChecksum); ok {
		return cs.Checksum(ctx, e.Path, algorithm)
	}
	rc, err := e.FS.Read(ctx, e.Path)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return CalculateChecksum(rc, algorithm)
}

// joinEntry joins a base path and an entry name using the separator style of
// the base, so endpoints in mount form keep host separators while remote
// endpoints stay slash paths.
func joinEntry(base, name string) string {
	if strings.ContainsRune(base, '\\') {
		return strings.TrimSuffix(base, `\`) + `\` + name
	}
	return joinSlash(base, name)
}
