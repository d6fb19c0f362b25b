package shell

import (
	"path/filepath"
	"sync"
)

// Workdir is a mutable working-directory path.  Each session normally
// owns one; in shared-cwd mode every session points at the same
// instance (the legacy single-filesystem-cursor behaviour), so access
// is mutex-guarded.
type Workdir struct {
	mu   sync.RWMutex
	path string
}

// NewWorkdir returns a Workdir rooted at path.
func NewWorkdir(path string) *Workdir {
	return &Workdir{path: path}
}

// Path returns the current directory path.
func (w *Workdir) Path() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.path
}

// Set replaces the current directory path.
func (w *Workdir) Set(path string) {
	w.mu.Lock()
	w.path = path
	w.mu.Unlock()
}

// Resolve joins rel against the current directory unless rel is
// already absolute.
func (w *Workdir) Resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	w.mu.RLock()
	base := w.path
	w.mu.RUnlock()
	return filepath.Join(base, rel)
}
