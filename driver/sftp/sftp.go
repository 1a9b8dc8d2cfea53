// Package sftp provides an SFTP-backed implementation of relayfs.FileSystem.
// It is the usual remote backend: each execution system is reached over SSH
// and its filesystem is exposed through the SFTP subsystem.
package sftp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/relayfs/relayfs"
)

// Adapter provides an SFTP implementation of relayfs.FileSystem
type Adapter struct {
	mu       sync.Mutex
	client   *sftp.Client
	sshConn  *ssh.Client
	basePath string
	config   Config
}

// Config holds SFTP connection configuration
type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	PrivateKey []byte // PEM encoded private key
	BasePath   string
}

// AdapterOption is a function that configures SFTP Adapter
type AdapterOption func(*Adapter)

// WithBasePath sets the base path for SFTP operations
func WithBasePath(basePath string) AdapterOption {
	return func(a *Adapter) {
		a.basePath = basePath
	}
}

// New creates a new SFTP filesystem adapter
func New(cfg Config, options ...AdapterOption) (*Adapter, error) {
	adapter := &Adapter{
		config:   cfg,
		basePath: cfg.BasePath,
	}

	for _, option := range options {
		option(adapter)
	}

	if err := adapter.connect(); err != nil {
		return nil, err
	}

	return adapter, nil
}

// connect establishes SSH and SFTP connections
func (a *Adapter) connect() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	sshConfig := &ssh.ClientConfig{
		User:            a.config.Username,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // TODO: Use known_hosts in production
	}

	if len(a.config.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey(a.config.PrivateKey)
		if err != nil {
			return fmt.Errorf("failed to parse private key: %w", err)
		}
		sshConfig.Auth = append(sshConfig.Auth, ssh.PublicKeys(signer))
	}

	if a.config.Password != "" {
		sshConfig.Auth = append(sshConfig.Auth, ssh.Password(a.config.Password))
	}

	if len(sshConfig.Auth) == 0 {
		return fmt.Errorf("no authentication method provided")
	}

	port := a.config.Port
	if port == 0 {
		port = 22
	}

	addr := fmt.Sprintf("%s:%d", a.config.Host, port)
	sshConn, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to SSH: %w", err)
	}

	sftpClient, err := sftp.NewClient(sshConn)
	if err != nil {
		sshConn.Close()
		return fmt.Errorf("failed to create SFTP client: %w", err)
	}

	a.sshConn = sshConn
	a.client = sftpClient

	return nil
}

// Close closes the SFTP and SSH connections
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error

	if a.client != nil {
		if err := a.client.Close(); err != nil {
			errs = append(errs, err)
		}
		a.client = nil
	}

	if a.sshConn != nil {
		if err := a.sshConn.Close(); err != nil {
			errs = append(errs, err)
		}
		a.sshConn = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing connections: %v", errs)
	}

	return nil
}

// ensureConnected ensures the SFTP connection is alive
func (a *Adapter) ensureConnected() error {
	a.mu.Lock()

	if a.client == nil {
		a.mu.Unlock()
		return a.connect()
	}

	// Test connection with a simple operation
	if _, err := a.client.Getwd(); err != nil {
		// Connection lost, reconnect
		a.client = nil
		a.sshConn = nil
		a.mu.Unlock()
		return a.connect()
	}

	a.mu.Unlock()
	return nil
}

// fullPath returns the full path combining base path and relative path
func (a *Adapter) fullPath(relativePath string) string {
	cleanPath := path.Clean("/" + strings.ReplaceAll(relativePath, `\`, "/"))
	if a.basePath == "" {
		return cleanPath
	}
	return path.Join(a.basePath, cleanPath)
}

// isPathSafe checks if the path is safe (doesn't escape base path)
func (a *Adapter) isPathSafe(relativePath string) bool {
	fullPath := a.fullPath(relativePath)
	if a.basePath == "" {
		return !strings.HasPrefix(fullPath, "..")
	}
	return strings.HasPrefix(fullPath, a.basePath)
}

// Write implements relayfs.FileWriter
func (a *Adapter) Write(ctx context.Context, filePath string, content io.Reader, options ...relayfs.Option) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !a.isPathSafe(filePath) {
		return &relayfs.PathError{Op: "write", Path: filePath, Err: relayfs.ErrNotAllowed}
	}

	if err := a.ensureConnected(); err != nil {
		return &relayfs.PathError{Op: "write", Path: filePath, Err: err}
	}

	opts := relayfs.ApplyOptions(options...)
	fullPath := a.fullPath(filePath)

	if !opts.Overwrite {
		_, err := a.client.Stat(fullPath)
		if err == nil {
			return &relayfs.PathError{Op: "write", Path: filePath, Err: relayfs.ErrExist}
		}
		if !os.IsNotExist(err) {
			return &relayfs.PathError{Op: "write", Path: filePath, Err: err}
		}
	}

	dir := path.Dir(fullPath)
	if err := a.client.MkdirAll(dir); err != nil {
		return &relayfs.PathError{Op: "write", Path: filePath, Err: err}
	}

	file, err := a.client.Create(fullPath)
	if err != nil {
		return mapSFTPError("write", filePath, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		return &relayfs.PathError{Op: "write", Path: filePath, Err: err}
	}

	return nil
}

// Read implements relayfs.FileReader
func (a *Adapter) Read(ctx context.Context, filePath string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if !a.isPathSafe(filePath) {
		return nil, &relayfs.PathError{Op: "read", Path: filePath, Err: relayfs.ErrNotAllowed}
	}

	if err := a.ensureConnected(); err != nil {
		return nil, &relayfs.PathError{Op: "read", Path: filePath, Err: err}
	}

	file, err := a.client.Open(a.fullPath(filePath))
	if err != nil {
		return nil, mapSFTPError("read", filePath, err)
	}

	return file, nil
}

// ReadAll implements relayfs.FileReader
func (a *Adapter) ReadAll(ctx context.Context, path string) ([]byte, error) {
	rc, err := a.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Delete implements relayfs.FileWriter
func (a *Adapter) Delete(ctx context.Context, filePath string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !a.isPathSafe(filePath) {
		return &relayfs.PathError{Op: "delete", Path: filePath, Err: relayfs.ErrNotAllowed}
	}

	if err := a.ensureConnected(); err != nil {
		return &relayfs.PathError{Op: "delete", Path: filePath, Err: err}
	}

	if err := a.client.Remove(a.fullPath(filePath)); err != nil {
		return mapSFTPError("delete", filePath, err)
	}

	return nil
}

// FileExists implements relayfs.FileReader
func (a *Adapter) FileExists(ctx context.Context, filePath string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	if !a.isPathSafe(filePath) {
		return false, &relayfs.PathError{Op: "fileexists", Path: filePath, Err: relayfs.ErrNotAllowed}
	}

	if err := a.ensureConnected(); err != nil {
		return false, &relayfs.PathError{Op: "fileexists", Path: filePath, Err: err}
	}

	info, err := a.client.Stat(a.fullPath(filePath))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, mapSFTPError("fileexists", filePath, err)
	}

	return !info.IsDir(), nil
}

// DirExists implements relayfs.FileReader
func (a *Adapter) DirExists(ctx context.Context, dirPath string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	if !a.isPathSafe(dirPath) {
		return false, &relayfs.PathError{Op: "direxists", Path: dirPath, Err: relayfs.ErrNotAllowed}
	}

	if err := a.ensureConnected(); err != nil {
		return false, &relayfs.PathError{Op: "direxists", Path: dirPath, Err: err}
	}

	info, err := a.client.Stat(a.fullPath(dirPath))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, mapSFTPError("direxists", dirPath, err)
	}

	return info.IsDir(), nil
}

// Stat implements relayfs.FileReader
func (a *Adapter) Stat(ctx context.Context, filePath string) (*relayfs.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if !a.isPathSafe(filePath) {
		return nil, &relayfs.PathError{Op: "stat", Path: filePath, Err: relayfs.ErrNotAllowed}
	}

	if err := a.ensureConnected(); err != nil {
		return nil, &relayfs.PathError{Op: "stat", Path: filePath, Err: err}
	}

	info, err := a.client.Stat(a.fullPath(filePath))
	if err != nil {
		return nil, mapSFTPError("stat", filePath, err)
	}

	return a.fileInfo(filePath, info), nil
}

func (a *Adapter) fileInfo(filePath string, info os.FileInfo) *relayfs.FileInfo {
	fi := &relayfs.FileInfo{
		Name:    path.Base(strings.ReplaceAll(filePath, `\`, "/")),
		Path:    filePath,
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}
	if stat, ok := info.Sys().(*sftp.FileStat); ok {
		fi.AccessTime = time.Unix(int64(stat.Atime), 0)
	}
	if !info.IsDir() {
		fi.ContentType = detectContentType(fi.Name)
	}
	return fi
}

// ListContents implements relayfs.FileReader
func (a *Adapter) ListContents(ctx context.Context, dirPath string, recursive bool) ([]relayfs.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if !a.isPathSafe(dirPath) {
		return nil, &relayfs.PathError{Op: "list", Path: dirPath, Err: relayfs.ErrNotAllowed}
	}

	if err := a.ensureConnected(); err != nil {
		return nil, &relayfs.PathError{Op: "list", Path: dirPath, Err: err}
	}

	fullPath := a.fullPath(dirPath)

	info, err := a.client.Stat(fullPath)
	if err != nil {
		return nil, mapSFTPError("list", dirPath, err)
	}
	if !info.IsDir() {
		return nil, &relayfs.PathError{Op: "list", Path: dirPath, Err: relayfs.ErrNotDir}
	}

	var files []relayfs.FileInfo
	if recursive {
		if err := a.listRecursive(fullPath, dirPath, &files); err != nil {
			return nil, mapSFTPError("list", dirPath, err)
		}
	} else {
		entries, err := a.client.ReadDir(fullPath)
		if err != nil {
			return nil, mapSFTPError("list", dirPath, err)
		}
		files = make([]relayfs.FileInfo, 0, len(entries))
		for _, entry := range entries {
			files = append(files, *a.fileInfo(path.Join(dirPath, entry.Name()), entry))
		}
	}

	return files, nil
}

// listRecursive recursively lists all files in a directory
func (a *Adapter) listRecursive(fullPath, relPath string, results *[]relayfs.FileInfo) error {
	entries, err := a.client.ReadDir(fullPath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		entryRelPath := path.Join(relPath, entry.Name())
		entryFullPath := path.Join(fullPath, entry.Name())

		*results = append(*results, *a.fileInfo(entryRelPath, entry))

		if entry.IsDir() {
			if err := a.listRecursive(entryFullPath, entryRelPath, results); err != nil {
				return err
			}
		}
	}

	return nil
}

// CreateDir implements relayfs.FileWriter
func (a *Adapter) CreateDir(ctx context.Context, dirPath string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !a.isPathSafe(dirPath) {
		return &relayfs.PathError{Op: "createdir", Path: dirPath, Err: relayfs.ErrNotAllowed}
	}

	if err := a.ensureConnected(); err != nil {
		return &relayfs.PathError{Op: "createdir", Path: dirPath, Err: err}
	}

	if err := a.client.MkdirAll(a.fullPath(dirPath)); err != nil {
		return mapSFTPError("createdir", dirPath, err)
	}

	return nil
}

// DeleteDir implements relayfs.FileWriter
func (a *Adapter) DeleteDir(ctx context.Context, dirPath string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !a.isPathSafe(dirPath) {
		return &relayfs.PathError{Op: "deletedir", Path: dirPath, Err: relayfs.ErrNotAllowed}
	}

	if err := a.ensureConnected(); err != nil {
		return &relayfs.PathError{Op: "deletedir", Path: dirPath, Err: err}
	}

	fullPath := a.fullPath(dirPath)

	info, err := a.client.Stat(fullPath)
	if err != nil {
		return mapSFTPError("deletedir", dirPath, err)
	}
	if !info.IsDir() {
		return &relayfs.PathError{Op: "deletedir", Path: dirPath, Err: relayfs.ErrNotDir}
	}

	if err := a.removeAll(fullPath); err != nil {
		return mapSFTPError("deletedir", dirPath, err)
	}

	return nil
}

// removeAll recursively removes a directory and its contents
func (a *Adapter) removeAll(dirPath string) error {
	entries, err := a.client.ReadDir(dirPath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		entryPath := path.Join(dirPath, entry.Name())
		if entry.IsDir() {
			if err := a.removeAll(entryPath); err != nil {
				return err
			}
		} else {
			if err := a.client.Remove(entryPath); err != nil {
				return err
			}
		}
	}

	return a.client.RemoveDirectory(dirPath)
}

// Copy implements relayfs.CanCopy by reading and writing via SFTP.
// Note: SFTP doesn't have a native copy command, so this streams server-side
// through the client connection.
func (a *Adapter) Copy(ctx context.Context, src, dst string, opts ...relayfs.Option) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !a.isPathSafe(src) || !a.isPathSafe(dst) {
		return &relayfs.PathError{Op: "copy", Path: src, Err: relayfs.ErrNotAllowed}
	}

	if err := a.ensureConnected(); err != nil {
		return &relayfs.PathError{Op: "copy", Path: src, Err: err}
	}

	srcPath := a.fullPath(src)
	dstPath := a.fullPath(dst)

	srcFile, err := a.client.Open(srcPath)
	if err != nil {
		return mapSFTPError("copy", src, err)
	}
	defer srcFile.Close()

	if err := a.client.MkdirAll(path.Dir(dstPath)); err != nil {
		return mapSFTPError("copy", dst, err)
	}

	dstFile, err := a.client.Create(dstPath)
	if err != nil {
		return mapSFTPError("copy", dst, err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return mapSFTPError("copy", dst, err)
	}

	return nil
}

// Move implements relayfs.CanMove using the server's rename. PosixRename is
// preferred when the server supports the extension since it overwrites an
// existing destination.
func (a *Adapter) Move(ctx context.Context, src, dst string, opts ...relayfs.Option) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !a.isPathSafe(src) || !a.isPathSafe(dst) {
		return &relayfs.PathError{Op: "move", Path: src, Err: relayfs.ErrNotAllowed}
	}

	if err := a.ensureConnected(); err != nil {
		return &relayfs.PathError{Op: "move", Path: src, Err: err}
	}

	srcPath := a.fullPath(src)
	dstPath := a.fullPath(dst)

	if err := a.client.MkdirAll(path.Dir(dstPath)); err != nil {
		return mapSFTPError("move", dst, err)
	}

	if err := a.client.PosixRename(srcPath, dstPath); err != nil {
		if err := a.client.Rename(srcPath, dstPath); err != nil {
			return mapSFTPError("move", src, err)
		}
	}

	return nil
}

// Symlink implements relayfs.CanSymlink
func (a *Adapter) Symlink(ctx context.Context, target, link string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !a.isPathSafe(link) {
		return &relayfs.PathError{Op: "symlink", Path: link, Err: relayfs.ErrNotAllowed}
	}

	if err := a.ensureConnected(); err != nil {
		return &relayfs.PathError{Op: "symlink", Path: link, Err: err}
	}

	linkPath := a.fullPath(link)
	if err := a.client.MkdirAll(path.Dir(linkPath)); err != nil {
		return mapSFTPError("symlink", link, err)
	}

	if err := a.client.Symlink(target, linkPath); err != nil {
		return mapSFTPError("symlink", link, err)
	}

	return nil
}

// Readlink implements relayfs.CanSymlink
func (a *Adapter) Readlink(ctx context.Context, filePath string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if !a.isPathSafe(filePath) {
		return "", &relayfs.PathError{Op: "readlink", Path: filePath, Err: relayfs.ErrNotAllowed}
	}

	if err := a.ensureConnected(); err != nil {
		return "", &relayfs.PathError{Op: "readlink", Path: filePath, Err: err}
	}

	target, err := a.client.ReadLink(a.fullPath(filePath))
	if err != nil {
		return "", mapSFTPError("readlink", filePath, err)
	}

	return target, nil
}

// SetTimes implements relayfs.CanSetTimes. Zero values preserve the
// existing timestamp.
func (a *Adapter) SetTimes(ctx context.Context, filePath string, atime, mtime time.Time) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !a.isPathSafe(filePath) {
		return &relayfs.PathError{Op: "settimes", Path: filePath, Err: relayfs.ErrNotAllowed}
	}

	if err := a.ensureConnected(); err != nil {
		return &relayfs.PathError{Op: "settimes", Path: filePath, Err: err}
	}

	fullPath := a.fullPath(filePath)

	if atime.IsZero() || mtime.IsZero() {
		info, err := a.client.Stat(fullPath)
		if err != nil {
			return mapSFTPError("settimes", filePath, err)
		}
		if mtime.IsZero() {
			mtime = info.ModTime()
		}
		if atime.IsZero() {
			atime = mtime
			if stat, ok := info.Sys().(*sftp.FileStat); ok {
				atime = time.Unix(int64(stat.Atime), 0)
			}
		}
	}

	if err := a.client.Chtimes(fullPath, atime, mtime); err != nil {
		return mapSFTPError("settimes", filePath, err)
	}

	return nil
}

// RealPath implements relayfs.CanRealPath using the server-side realpath.
func (a *Adapter) RealPath(ctx context.Context, filePath string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if !a.isPathSafe(filePath) {
		return "", &relayfs.PathError{Op: "realpath", Path: filePath, Err: relayfs.ErrNotAllowed}
	}

	if err := a.ensureConnected(); err != nil {
		return "", &relayfs.PathError{Op: "realpath", Path: filePath, Err: err}
	}

	resolved, err := a.client.RealPath(a.fullPath(filePath))
	if err != nil {
		return "", mapSFTPError("realpath", filePath, err)
	}

	if a.basePath != "" {
		if rel := strings.TrimPrefix(resolved, a.basePath); rel != resolved {
			if rel == "" {
				rel = "/"
			}
			return rel, nil
		}
	}
	return resolved, nil
}

// SameFile implements relayfs.CanSameFile by comparing canonical paths.
func (a *Adapter) SameFile(ctx context.Context, p1, p2 string) (bool, error) {
	r1, err := a.RealPath(ctx, p1)
	if err != nil {
		if relayfs.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	r2, err := a.RealPath(ctx, p2)
	if err != nil {
		if relayfs.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return r1 == r2, nil
}

// Access implements relayfs.CanAccess with a permission-bit probe against
// the stat result.
func (a *Adapter) Access(ctx context.Context, filePath string, mode relayfs.AccessMode) error {
	info, err := a.Stat(ctx, filePath)
	if err != nil {
		return err
	}

	perm := info.Mode.Perm()
	if mode&relayfs.AccessRead != 0 && perm&0444 == 0 {
		return &relayfs.PathError{Op: "access", Path: filePath, Err: relayfs.ErrPermission}
	}
	if mode&relayfs.AccessWrite != 0 && perm&0222 == 0 {
		return &relayfs.PathError{Op: "access", Path: filePath, Err: relayfs.ErrPermission}
	}
	if mode&relayfs.AccessExecute != 0 && perm&0111 == 0 {
		return &relayfs.PathError{Op: "access", Path: filePath, Err: relayfs.ErrPermission}
	}

	return nil
}

// Checksum implements relayfs.CanChecksum by reading and hashing the file.
func (a *Adapter) Checksum(ctx context.Context, filePath string, algorithm relayfs.ChecksumAlgorithm) (string, error) {
	reader, err := a.Read(ctx, filePath)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	checksum, err := relayfs.CalculateChecksum(reader, algorithm)
	if err != nil {
		return "", &relayfs.PathError{Op: "checksum", Path: filePath, Err: err}
	}

	return checksum, nil
}

// Checksums implements relayfs.CanChecksum for multi-hash calculation in a
// single pass over the file.
func (a *Adapter) Checksums(ctx context.Context, filePath string, algorithms []relayfs.ChecksumAlgorithm) (map[relayfs.ChecksumAlgorithm]string, error) {
	reader, err := a.Read(ctx, filePath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	checksums, err := relayfs.CalculateChecksums(reader, algorithms)
	if err != nil {
		return nil, &relayfs.PathError{Op: "checksums", Path: filePath, Err: err}
	}

	return checksums, nil
}

// detectContentType determines the content type from file extension
func detectContentType(filePath string) string {
	if ext := filepath.Ext(filePath); ext != "" {
		if contentType := mime.TypeByExtension(ext); contentType != "" {
			return contentType
		}
	}
	return ""
}

// mapSFTPError maps SFTP errors to relayfs errors
func mapSFTPError(op, path string, err error) error {
	if os.IsNotExist(err) {
		return &relayfs.PathError{Op: op, Path: path, Err: relayfs.ErrNotExist}
	}

	if os.IsPermission(err) {
		return &relayfs.PathError{Op: op, Path: path, Err: relayfs.ErrPermission}
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		if os.IsNotExist(pathErr.Err) {
			return &relayfs.PathError{Op: op, Path: path, Err: relayfs.ErrNotExist}
		}
	}

	return &relayfs.PathError{Op: op, Path: path, Err: err}
}

// Ensure Adapter implements required and optional interfaces. Hard links are
// deliberately absent: link creation is routed to the host view instead.
var (
	_ relayfs.FileSystem  = (*Adapter)(nil)
	_ relayfs.CanCopy     = (*Adapter)(nil)
	_ relayfs.CanMove     = (*Adapter)(nil)
	_ relayfs.CanSymlink  = (*Adapter)(nil)
	_ relayfs.CanSetTimes = (*Adapter)(nil)
	_ relayfs.CanSameFile = (*Adapter)(nil)
	_ relayfs.CanRealPath = (*Adapter)(nil)
	_ relayfs.CanAccess   = (*Adapter)(nil)
	_ relayfs.CanChecksum = (*Adapter)(nil)
)
