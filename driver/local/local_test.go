package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayfs/relayfs"
)

func newAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := New(t.TempDir())
	require.NoError(t, err)
	return a
}

func write(t *testing.T, a *Adapter, path, content string) {
	t.Helper()
	require.NoError(t, a.Write(context.Background(), path, strings.NewReader(content)))
}

func TestNewCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "root")
	a, err := New(root)
	require.NoError(t, err)

	info, err := os.Stat(a.Root())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWriteRead(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)
	write(t, a, "/data/f.txt", "hello")

	data, err := a.ReadAll(ctx, "/data/f.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = a.ReadAll(ctx, "/data/absent")
	assert.True(t, relayfs.IsNotExist(err))
}

func TestMountFormPaths(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)

	// Mount-form paths map under the root: the tag and system id become
	// ordinary directories of the host view.
	write(t, a, `\\remote$\debian\etc\hosts`, "127.0.0.1")

	data, err := a.ReadAll(ctx, `\\remote$\debian\etc\hosts`)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", string(data))

	// The slash spelling reaches the same entry.
	data, err = a.ReadAll(ctx, "//remote$/debian/etc/hosts")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", string(data))

	_, err = os.Stat(filepath.Join(a.Root(), "remote$", "debian", "etc", "hosts"))
	require.NoError(t, err)
}

func TestPathEscapeRejected(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)

	// Traversal collapses inside the root rather than escaping it.
	write(t, a, "/../../outside.txt", "x")
	_, err := os.Stat(filepath.Join(a.Root(), "outside.txt"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(a.Root()), "outside.txt"))
	assert.True(t, os.IsNotExist(err))

	data, err := a.ReadAll(ctx, "/outside.txt")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestWriteOverwrite(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)
	write(t, a, "/f.txt", "one")

	err := a.Write(ctx, "/f.txt", strings.NewReader("two"))
	assert.True(t, relayfs.IsExist(err))

	require.NoError(t, a.Write(ctx, "/f.txt", strings.NewReader("two"), relayfs.WithOverwrite(true)))
	data, err := a.ReadAll(ctx, "/f.txt")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestDeleteSemantics(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)
	write(t, a, "/data/f.txt", "x")

	assert.True(t, relayfs.IsNotExist(a.Delete(ctx, "/data/absent")))
	assert.ErrorIs(t, a.Delete(ctx, "/data"), relayfs.ErrIsDir)
	require.NoError(t, a.Delete(ctx, "/data/f.txt"))

	exists, err := a.FileExists(ctx, "/data/f.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDirOps(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)

	require.NoError(t, a.CreateDir(ctx, "/a/b/c"))
	ok, err := a.DirExists(ctx, "/a/b/c")
	require.NoError(t, err)
	assert.True(t, ok)

	write(t, a, "/a/b/c/f.txt", "x")
	assert.ErrorIs(t, a.DeleteDir(ctx, "/a/b/c/f.txt"), relayfs.ErrNotDir)
	require.NoError(t, a.DeleteDir(ctx, "/a/b"))

	ok, err = a.DirExists(ctx, "/a/b")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, relayfs.IsNotExist(a.DeleteDir(ctx, "/a/b")))
}

func TestStat(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)
	write(t, a, "/data/f.json", "{}")

	info, err := a.Stat(ctx, "/data/f.json")
	require.NoError(t, err)
	assert.Equal(t, "f.json", info.Name)
	assert.Equal(t, "/data/f.json", info.Path)
	assert.Equal(t, int64(2), info.Size)
	assert.False(t, info.IsDir)
	assert.Contains(t, info.ContentType, "application/json")

	info, err = a.Stat(ctx, "/data")
	require.NoError(t, err)
	assert.True(t, info.IsDir)

	_, err = a.Stat(ctx, "/absent")
	assert.True(t, relayfs.IsNotExist(err))
}

func TestListContents(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)
	write(t, a, "/data/a.txt", "1")
	write(t, a, "/data/sub/b.txt", "2")

	entries, err := a.ListContents(ctx, "/data", false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "/data/a.txt", entries[0].Path)
	assert.Equal(t, "/data/sub", entries[1].Path)
	assert.True(t, entries[1].IsDir)

	entries, err = a.ListContents(ctx, "/data", true)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "/data/sub/b.txt", entries[2].Path)

	// A backslash-style listed path yields backslash-style entry paths.
	entries, err = a.ListContents(ctx, `\\remote$\..\data`, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0].Path, `\a.txt`)

	_, err = a.ListContents(ctx, "/absent", false)
	assert.True(t, relayfs.IsNotExist(err))
}

func TestCopyMove(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)
	write(t, a, "/src/f.txt", "payload")

	require.NoError(t, a.Copy(ctx, "/src/f.txt", "/dst/f.txt"))
	data, err := a.ReadAll(ctx, "/dst/f.txt")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	exists, err := a.FileExists(ctx, "/src/f.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, a.Move(ctx, "/src/f.txt", "/moved/f.txt"))
	exists, err = a.FileExists(ctx, "/src/f.txt")
	require.NoError(t, err)
	assert.False(t, exists)
	data, err = a.ReadAll(ctx, "/moved/f.txt")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	assert.True(t, relayfs.IsNotExist(a.Move(ctx, "/absent", "/x")))
}

func TestSymlink(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)
	write(t, a, "/data/real.txt", "content")

	require.NoError(t, a.Symlink(ctx, "real.txt", "/data/link"))

	target, err := a.Readlink(ctx, "/data/link")
	require.NoError(t, err)
	assert.Equal(t, "real.txt", target)

	data, err := a.ReadAll(ctx, "/data/link")
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	err = a.Symlink(ctx, "other", "/data/link")
	assert.True(t, relayfs.IsExist(err))

	_, err = a.Readlink(ctx, "/data/absent")
	assert.True(t, relayfs.IsNotExist(err))
}

func TestLink(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)
	write(t, a, "/data/f.txt", "x")

	require.NoError(t, a.Link(ctx, "/data/f.txt", "/data/hard.txt"))

	same, err := a.SameFile(ctx, "/data/f.txt", "/data/hard.txt")
	require.NoError(t, err)
	assert.True(t, same)

	err = a.Link(ctx, "/data/absent", "/data/x")
	assert.True(t, relayfs.IsNotExist(err))
	err = a.Link(ctx, "/data/f.txt", "/data/hard.txt")
	assert.True(t, relayfs.IsExist(err))
}

func TestSetTimes(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)
	write(t, a, "/f.txt", "x")

	mtime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, a.SetTimes(ctx, "/f.txt", time.Time{}, mtime))

	info, err := a.Stat(ctx, "/f.txt")
	require.NoError(t, err)
	assert.True(t, info.ModTime.Equal(mtime))

	// Zero mtime leaves it untouched.
	require.NoError(t, a.SetTimes(ctx, "/f.txt", time.Now(), time.Time{}))
	info, err = a.Stat(ctx, "/f.txt")
	require.NoError(t, err)
	assert.True(t, info.ModTime.Equal(mtime))

	assert.True(t, relayfs.IsNotExist(a.SetTimes(ctx, "/absent", time.Time{}, mtime)))
}

func TestSameFile(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)
	write(t, a, "/data/f.txt", "x")
	write(t, a, "/data/g.txt", "x")
	require.NoError(t, a.Symlink(ctx, "f.txt", "/data/link"))

	same, err := a.SameFile(ctx, "/data/f.txt", "/data/f.txt")
	require.NoError(t, err)
	assert.True(t, same)

	// Stat follows the symlink to the shared identity.
	same, err = a.SameFile(ctx, "/data/f.txt", "/data/link")
	require.NoError(t, err)
	assert.True(t, same)

	same, err = a.SameFile(ctx, "/data/f.txt", "/data/g.txt")
	require.NoError(t, err)
	assert.False(t, same)

	same, err = a.SameFile(ctx, "/data/f.txt", "/data/absent")
	require.NoError(t, err)
	assert.False(t, same)
}

func TestRealPath(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)
	write(t, a, "/data/real.txt", "x")
	require.NoError(t, a.Symlink(ctx, "real.txt", "/data/link"))

	real, err := a.RealPath(ctx, "/data/link")
	require.NoError(t, err)
	assert.Equal(t, "/data/real.txt", real)

	real, err = a.RealPath(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, "/", real)

	_, err = a.RealPath(ctx, "/absent")
	assert.True(t, relayfs.IsNotExist(err))
}

func TestAccess(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)
	write(t, a, "/f.txt", "x")

	require.NoError(t, a.Access(ctx, "/f.txt", relayfs.AccessExists))
	require.NoError(t, a.Access(ctx, "/f.txt", relayfs.AccessRead))

	require.NoError(t, os.Chmod(filepath.Join(a.Root(), "f.txt"), 0o444))
	err := a.Access(ctx, "/f.txt", relayfs.AccessWrite)
	assert.ErrorIs(t, err, relayfs.ErrPermission)
	err = a.Access(ctx, "/f.txt", relayfs.AccessExecute)
	assert.ErrorIs(t, err, relayfs.ErrPermission)

	assert.True(t, relayfs.IsNotExist(a.Access(ctx, "/absent", relayfs.AccessExists)))
}

func TestIsHidden(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)

	hidden, err := a.IsHidden(ctx, `\\remote$\debian\home\.bashrc`)
	require.NoError(t, err)
	assert.True(t, hidden)

	hidden, err = a.IsHidden(ctx, "/home/visible")
	require.NoError(t, err)
	assert.False(t, hidden)
}

func TestContextCancelled(t *testing.T) {
	a := newAdapter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, a.Write(ctx, "/f", strings.NewReader("x")), context.Canceled)
	_, err := a.Read(ctx, "/f")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, a.Delete(ctx, "/f"), context.Canceled)
}
