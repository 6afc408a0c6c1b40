package dts

import (
	"os"
	"sort"
	"sync"
)

// VFS is the file set a declaration batch reads sources from and writes
// declarations to. Paths are absolute.
type VFS interface {
	Read(path string) (string, bool)
	Write(path, text string)
	Exists(path string) bool
}

// MapVFS is an in-memory VFS. With disk fallback enabled, reads of paths
// not held in memory go to the filesystem.
type MapVFS struct {
	mu    sync.RWMutex
	files map[string]string
	disk  bool
}

// NewMapVFS creates a VFS holding a copy of files.
func NewMapVFS(files map[string]string, diskFallback bool) *MapVFS {
	m := make(map[string]string, len(files))
	for k, v := range files {
		m[k] = v
	}
	return &MapVFS{files: m, disk: diskFallback}
}

func (v *MapVFS) Read(path string) (string, bool) {
	v.mu.RLock()
	text, ok := v.files[path]
	v.mu.RUnlock()
	if ok || !v.disk {
		return text, ok
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (v *MapVFS) Write(path, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.files[path] = text
}

func (v *MapVFS) Exists(path string) bool {
	v.mu.RLock()
	_, ok := v.files[path]
	v.mu.RUnlock()
	if ok || !v.disk {
		return ok
	}
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// Paths returns the in-memory paths, sorted.
func (v *MapVFS) Paths() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	paths := make([]string, 0, len(v.files))
	for p := range v.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
