package relayfs

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemRegistryMemoizes(t *testing.T) {
	var builds atomic.Int32
	reg := NewFilesystemRegistry(func(id SystemID) (*Filesystem, error) {
		builds.Add(1)
		return &Filesystem{id: id, conv: DefaultConvention, remote: newMockBackend()}, nil
	})

	first, err := reg.GetOrCreate("debian")
	require.NoError(t, err)
	second, err := reg.GetOrCreate("debian")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), builds.Load())
	assert.Equal(t, 1, reg.Len())
}

func TestFilesystemRegistryConcurrentSingleWinner(t *testing.T) {
	var builds atomic.Int32
	reg := NewFilesystemRegistry(func(id SystemID) (*Filesystem, error) {
		builds.Add(1)
		return &Filesystem{id: id, conv: DefaultConvention, remote: newMockBackend()}, nil
	})

	const goroutines = 32
	results := make([]*Filesystem, goroutines)
	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fs, err := reg.GetOrCreate("debian")
			require.NoError(t, err)
			results[i] = fs
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load(), "exactly one construction must win")
	for _, fs := range results {
		assert.Same(t, results[0], fs)
	}
}

func TestFilesystemRegistryFailedBuildRetries(t *testing.T) {
	var builds atomic.Int32
	boom := errors.New("dial failed")
	reg := NewFilesystemRegistry(func(id SystemID) (*Filesystem, error) {
		if builds.Add(1) == 1 {
			return nil, boom
		}
		return &Filesystem{id: id, conv: DefaultConvention, remote: newMockBackend()}, nil
	})

	_, err := reg.GetOrCreate("debian")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, reg.Len(), "failed build must not be memoized")

	fs, err := reg.GetOrCreate("debian")
	require.NoError(t, err)
	assert.Equal(t, SystemID("debian"), fs.ID())
	assert.Equal(t, int32(2), builds.Load())
}

func TestFilesystemRegistryRemoveEvicts(t *testing.T) {
	reg := NewFilesystemRegistry(func(id SystemID) (*Filesystem, error) {
		return &Filesystem{id: id, conv: DefaultConvention, remote: newMockBackend()}, nil
	})

	first, err := reg.GetOrCreate("debian")
	require.NoError(t, err)

	reg.Remove("debian")
	assert.Equal(t, 0, reg.Len())

	second, err := reg.GetOrCreate("debian")
	require.NoError(t, err)
	assert.NotSame(t, first, second, "eviction must yield a fresh instance")
}

func TestFilesystemCoordinate(t *testing.T) {
	fs := &Filesystem{id: "debian", conv: DefaultConvention, remote: newMockBackend()}
	coord := fs.Coordinate("/etc/hosts")
	assert.Equal(t, SystemID("debian"), coord.System())
	assert.Equal(t, `\\remote$\debian\etc\hosts`, coord.LocalPath())
}
