package filesystem

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryEntry struct {
	content []byte
	info    *memoryFileInfo
}

// MemoryFileSystem implements FileSystemProvider for in-memory testing.
// Paths are normalized to forward slashes; parent directories are created
// implicitly when files are added.
type MemoryFileSystem struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

// NewMemoryFileSystem creates an empty in-memory filesystem.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{
		entries: make(map[string]*memoryEntry),
	}
}

func normalize(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

// AddFile adds a file, creating its parent directories.
func (m *MemoryFileSystem) AddFile(filePath, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := normalize(filePath)
	m.entries[p] = &memoryEntry{
		content: []byte(content),
		info: &memoryFileInfo{
			name:    path.Base(p),
			size:    int64(len(content)),
			mode:    0644,
			modTime: time.Now(),
		},
	}
	m.addDirLocked(path.Dir(p))
}

// AddDir adds an empty directory.
func (m *MemoryFileSystem) AddDir(dirPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addDirLocked(normalize(dirPath))
}

func (m *MemoryFileSystem) addDirLocked(p string) {
	for {
		if _, ok := m.entries[p]; ok {
			return
		}
		m.entries[p] = &memoryEntry{
			info: &memoryFileInfo{
				name:    path.Base(p),
				mode:    0755 | fs.ModeDir,
				modTime: time.Now(),
				isDir:   true,
			},
		}
		parent := path.Dir(p)
		if parent == p {
			return
		}
		p = parent
	}
}

func (m *MemoryFileSystem) ReadDir(dirPath string) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dir := normalize(dirPath)
	entry, ok := m.entries[dir]
	if !ok {
		return nil, fmt.Errorf("failed to read directory: %s: %w", dirPath, fs.ErrNotExist)
	}
	if !entry.info.isDir {
		return nil, fmt.Errorf("failed to read directory: %s is not a directory", dirPath)
	}

	prefix := dir + "/"
	if dir == "/" {
		prefix = "/"
	}

	var result []FileInfo
	for p, e := range m.entries {
		if p == dir || !strings.HasPrefix(p, prefix) {
			continue
		}
		if strings.Contains(strings.TrimPrefix(p, prefix), "/") {
			continue
		}
		result = append(result, e.info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result, nil
}

func (m *MemoryFileSystem) Open(filePath string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[normalize(filePath)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrNotExist}
	}
	if entry.info.isDir {
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: fmt.Errorf("is a directory")}
	}
	return io.NopCloser(bytes.NewReader(entry.content)), nil
}

func (m *MemoryFileSystem) Stat(filePath string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[normalize(filePath)]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: filePath, Err: fs.ErrNotExist}
	}
	return entry.info, nil
}

var _ FileSystemProvider = (*MemoryFileSystem)(nil)
