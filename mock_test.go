package relayfs

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"
)

// mockBackend is a minimal in-memory FileSystem for testing. It implements
// only the required interface; fullMock below adds the optional capabilities.
// Paths are stored normalized to forward slashes, so the same mock can serve
// as a remote backend (slash paths) or a local backend (mount-form paths).
type mockBackend struct {
	mu       sync.Mutex
	files    map[string][]byte
	dirs     map[string]bool
	modTimes map[string]time.Time
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		files:    make(map[string][]byte),
		dirs:     make(map[string]bool),
		modTimes: make(map[string]time.Time),
	}
}

func mockNorm(p string) string {
	s := strings.ReplaceAll(p, `\`, "/")
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	if len(s) > 1 {
		s = strings.TrimSuffix(s, "/")
	}
	return s
}

func mockBase(p string) string {
	idx := strings.LastIndex(p, "/")
	return p[idx+1:]
}

// put seeds a file and its parent directories, for test fixtures.
func (m *mockBackend) put(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := mockNorm(path)
	m.files[p] = data
	m.modTimes[p] = time.Now()
	m.addParents(p)
}

func (m *mockBackend) addParents(p string) {
	dir := p
	for {
		idx := strings.LastIndex(dir, "/")
		if idx <= 0 {
			break
		}
		dir = dir[:idx]
		m.dirs[dir] = true
	}
}

func (m *mockBackend) Write(ctx context.Context, path string, content io.Reader, options ...Option) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	opts := ApplyOptions(options...)

	m.mu.Lock()
	defer m.mu.Unlock()
	p := mockNorm(path)
	if _, exists := m.files[p]; exists && !opts.Overwrite {
		return &PathError{Op: "write", Path: path, Err: ErrExist}
	}
	m.files[p] = data
	m.modTimes[p] = time.Now()
	m.addParents(p)
	return nil
}

func (m *mockBackend) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[mockNorm(path)]
	if !ok {
		return nil, &PathError{Op: "read", Path: path, Err: ErrNotExist}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockBackend) ReadAll(ctx context.Context, path string) ([]byte, error) {
	rc, err := m.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (m *mockBackend) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := mockNorm(path)
	if _, ok := m.files[p]; !ok {
		return &PathError{Op: "delete", Path: path, Err: ErrNotExist}
	}
	delete(m.files, p)
	delete(m.modTimes, p)
	return nil
}

func (m *mockBackend) CreateDir(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := mockNorm(path)
	m.dirs[p] = true
	m.addParents(p)
	return nil
}

func (m *mockBackend) DeleteDir(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := mockNorm(path)
	if !m.dirs[p] {
		return &PathError{Op: "deletedir", Path: path, Err: ErrNotExist}
	}
	prefix := p + "/"
	for key := range m.files {
		if strings.HasPrefix(key, prefix) {
			delete(m.files, key)
		}
	}
	for key := range m.dirs {
		if strings.HasPrefix(key, prefix) {
			delete(m.dirs, key)
		}
	}
	delete(m.dirs, p)
	return nil
}

func (m *mockBackend) FileExists(ctx context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[mockNorm(path)]
	return ok, nil
}

func (m *mockBackend) DirExists(ctx context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirs[mockNorm(path)], nil
}

func (m *mockBackend) Stat(ctx context.Context, path string) (*FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := mockNorm(path)
	if data, ok := m.files[p]; ok {
		return &FileInfo{
			Name:    mockBase(p),
			Path:    p,
			Size:    int64(len(data)),
			Mode:    0o644,
			ModTime: m.modTimes[p],
		}, nil
	}
	if m.dirs[p] || p == "/" {
		return &FileInfo{
			Name:  mockBase(p),
			Path:  p,
			Mode:  fs.ModeDir | 0o755,
			IsDir: true,
		}, nil
	}
	return nil, &PathError{Op: "stat", Path: path, Err: ErrNotExist}
}

func (m *mockBackend) ListContents(ctx context.Context, path string, recursive bool) ([]FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := mockNorm(path)
	prefix := p + "/"
	if p == "/" {
		prefix = "/"
	}

	var infos []FileInfo
	if recursive {
		for key, data := range m.files {
			if strings.HasPrefix(key, prefix) {
				infos = append(infos, FileInfo{
					Name: mockBase(key), Path: key,
					Size: int64(len(data)), Mode: 0o644, ModTime: m.modTimes[key],
				})
			}
		}
		for key := range m.dirs {
			if strings.HasPrefix(key, prefix) {
				infos = append(infos, FileInfo{
					Name: mockBase(key), Path: key,
					Mode: fs.ModeDir | 0o755, IsDir: true,
				})
			}
		}
		sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
		return infos, nil
	}

	children := make(map[string]bool) // name -> isDir
	note := func(key string, isDir bool) {
		if !strings.HasPrefix(key, prefix) {
			return
		}
		rest := strings.TrimPrefix(key, prefix)
		if rest == "" {
			return
		}
		seg, deeper, _ := strings.Cut(rest, "/")
		if deeper != "" {
			children[seg] = true
			return
		}
		if !children[seg] {
			children[seg] = isDir
		}
	}
	for key := range m.files {
		note(key, false)
	}
	for key := range m.dirs {
		note(key, true)
	}

	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		child := prefix + name
		if children[name] {
			infos = append(infos, FileInfo{
				Name: name, Path: child,
				Mode: fs.ModeDir | 0o755, IsDir: true,
			})
			continue
		}
		infos = append(infos, FileInfo{
			Name: name, Path: child,
			Size: int64(len(m.files[child])), Mode: 0o644, ModTime: m.modTimes[child],
		})
	}
	return infos, nil
}

// fullMock adds the complete optional capability surface on top of
// mockBackend, with call counters so tests can assert routing decisions.
type fullMock struct {
	*mockBackend
	copyCalled     int
	moveCalled     int
	linkCalled     int
	accessCalled   int
	setTimesCalled int
	hiddenCalled   int

	symlinks  map[string]string
	realPaths map[string]string
}

func newFullMock() *fullMock {
	return &fullMock{
		mockBackend: newMockBackend(),
		symlinks:    make(map[string]string),
		realPaths:   make(map[string]string),
	}
}

func (m *fullMock) Copy(ctx context.Context, src, dst string, opts ...Option) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copyCalled++
	data, ok := m.files[mockNorm(src)]
	if !ok {
		return &PathError{Op: "copy", Path: src, Err: ErrNotExist}
	}
	d := mockNorm(dst)
	m.files[d] = append([]byte(nil), data...)
	m.modTimes[d] = time.Now()
	m.addParents(d)
	return nil
}

func (m *fullMock) Move(ctx context.Context, src, dst string, opts ...Option) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moveCalled++
	s, d := mockNorm(src), mockNorm(dst)
	if data, ok := m.files[s]; ok {
		m.files[d] = data
		m.modTimes[d] = m.modTimes[s]
		delete(m.files, s)
		delete(m.modTimes, s)
		m.addParents(d)
		return nil
	}
	if !m.dirs[s] {
		return &PathError{Op: "move", Path: src, Err: ErrNotExist}
	}
	for key, data := range m.files {
		if strings.HasPrefix(key, s+"/") {
			next := d + strings.TrimPrefix(key, s)
			m.files[next] = data
			m.modTimes[next] = m.modTimes[key]
			delete(m.files, key)
			delete(m.modTimes, key)
		}
	}
	for key := range m.dirs {
		if strings.HasPrefix(key, s+"/") {
			m.dirs[d+strings.TrimPrefix(key, s)] = true
			delete(m.dirs, key)
		}
	}
	delete(m.dirs, s)
	m.dirs[d] = true
	m.addParents(d)
	return nil
}

func (m *fullMock) Symlink(ctx context.Context, target, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symlinks[mockNorm(link)] = target
	return nil
}

func (m *fullMock) Readlink(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.symlinks[mockNorm(path)]
	if !ok {
		return "", &PathError{Op: "readlink", Path: path, Err: ErrInvalidPath}
	}
	return target, nil
}

func (m *fullMock) Link(ctx context.Context, existing, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.linkCalled++
	data, ok := m.files[mockNorm(existing)]
	if !ok {
		return &PathError{Op: "link", Path: existing, Err: ErrNotExist}
	}
	l := mockNorm(link)
	m.files[l] = data
	m.modTimes[l] = time.Now()
	m.addParents(l)
	return nil
}

func (m *fullMock) Access(ctx context.Context, path string, mode AccessMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accessCalled++
	p := mockNorm(path)
	if _, ok := m.files[p]; ok {
		return nil
	}
	if m.dirs[p] {
		return nil
	}
	return &PathError{Op: "access", Path: path, Err: ErrNotExist}
}

func (m *fullMock) SetTimes(ctx context.Context, path string, atime, mtime time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setTimesCalled++
	p := mockNorm(path)
	if _, ok := m.files[p]; !ok && !m.dirs[p] {
		return &PathError{Op: "settimes", Path: path, Err: ErrNotExist}
	}
	if !mtime.IsZero() {
		m.modTimes[p] = mtime
	}
	return nil
}

func (m *fullMock) SameFile(ctx context.Context, p1, p2 string) (bool, error) {
	return EqualLocal(p1, p2), nil
}

func (m *fullMock) RealPath(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := mockNorm(path)
	if resolved, ok := m.realPaths[p]; ok {
		return resolved, nil
	}
	return p, nil
}

func (m *fullMock) IsHidden(ctx context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hiddenCalled++
	return strings.HasPrefix(mockBase(mockNorm(path)), "."), nil
}

var (
	_ FileSystem  = (*mockBackend)(nil)
	_ FileSystem  = (*fullMock)(nil)
	_ CanCopy     = (*fullMock)(nil)
	_ CanMove     = (*fullMock)(nil)
	_ CanSymlink  = (*fullMock)(nil)
	_ CanLink     = (*fullMock)(nil)
	_ CanAccess   = (*fullMock)(nil)
	_ CanSetTimes = (*fullMock)(nil)
	_ CanSameFile = (*fullMock)(nil)
	_ CanRealPath = (*fullMock)(nil)
	_ CanHide     = (*fullMock)(nil)
)
