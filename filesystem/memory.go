package filesystem

import (
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/erraggy/oasresolve/oaserrors"
)

// Memory is a FileSystem that serves documents from memory.
// Paths use forward slashes; URL keys are matched verbatim.
type Memory struct {
	mu    sync.RWMutex
	files map[string]string
}

// NewMemory returns a Memory file system seeded with files.
func NewMemory(files map[string]string) *Memory {
	m := &Memory{files: make(map[string]string, len(files))}
	for p, text := range files {
		m.files[cleanKey(p)] = text
	}
	return m
}

var _ FileSystem = (*Memory)(nil)

// Add stores text at p, replacing any existing document.
func (m *Memory) Add(p, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[cleanKey(p)] = text
}

// ReadAllText implements FileSystem.
func (m *Memory) ReadAllText(p string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.files[cleanKey(p)]
	if !ok {
		return "", &oaserrors.FileError{Path: p, NotFound: true, Cause: fs.ErrNotExist}
	}
	return text, nil
}

// IsCompletePath implements FileSystem.
func (m *Memory) IsCompletePath(p string) bool {
	return IsURL(p) || strings.HasPrefix(p, "/")
}

// GetParentDir implements FileSystem.
func (m *Memory) GetParentDir(p string) string {
	if IsURL(p) {
		return urlParentDir(p)
	}
	return path.Dir(p)
}

// MakePathRooted implements FileSystem.
func (m *Memory) MakePathRooted(baseDir, relativePath string) string {
	if IsURL(baseDir) {
		return urlJoin(baseDir, relativePath)
	}
	return path.Join(baseDir, relativePath)
}

func cleanKey(p string) string {
	if IsURL(p) {
		return p
	}
	return path.Clean(p)
}
