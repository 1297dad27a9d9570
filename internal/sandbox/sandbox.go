// Package sandbox confines every filesystem effect to a single root
// directory. Operations never touch the filesystem with a path that has
// not passed Resolve.
package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrEscape marks any path or description that references a location
// outside the sandbox root.
var ErrEscape = errors.New("access denied: operations restricted to sandbox root")

type Root struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a sandbox rooted at dir. dir must be absolute; it is
// created if missing so symlink resolution has a real anchor.
func New(dir string) (*Root, error) {
	if !filepath.IsAbs(dir) {
		return nil, fmt.Errorf("sandbox root %q must be absolute", dir)
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create sandbox root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve sandbox root: %w", err)
	}
	return &Root{dir: resolved, locks: make(map[string]*sync.Mutex)}, nil
}

// Dir returns the resolved absolute root directory.
func (r *Root) Dir() string {
	return r.dir
}

// Resolve validates candidate and returns its absolute form inside the
// root. Relative candidates are joined to the root; absolute candidates
// must already lie under it. Symlinks in every existing ancestor are
// resolved before the containment check, so a link pointing outside the
// root cannot smuggle a path through.
func (r *Root) Resolve(candidate string) (string, error) {
	if strings.TrimSpace(candidate) == "" {
		return "", fmt.Errorf("%w: empty path", ErrEscape)
	}

	abs := candidate
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.dir, abs)
	}
	abs = filepath.Clean(abs)

	if !r.contains(abs) {
		return "", fmt.Errorf("%w: %s", ErrEscape, candidate)
	}

	resolved, err := resolveExisting(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", candidate, err)
	}
	if !r.contains(resolved) {
		return "", fmt.Errorf("%w: %s resolves outside root", ErrEscape, candidate)
	}
	return abs, nil
}

// resolveExisting runs EvalSymlinks on the deepest existing ancestor of
// abs and reattaches the missing suffix, so not-yet-created output
// paths still get their parent directories link-checked.
func resolveExisting(abs string) (string, error) {
	remainder := ""
	current := abs
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			return filepath.Join(resolved, remainder), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", err
		}
		remainder = filepath.Join(filepath.Base(current), remainder)
		current = parent
	}
}

func (r *Root) contains(abs string) bool {
	if abs == r.dir {
		return true
	}
	return strings.HasPrefix(abs, r.dir+string(filepath.Separator))
}

// Rel reports abs relative to the root, for result summaries.
func (r *Root) Rel(abs string) string {
	rel, err := filepath.Rel(r.dir, abs)
	if err != nil {
		return abs
	}
	return rel
}

// ReadFile reads a file after path validation.
func (r *Root) ReadFile(candidate string) ([]byte, error) {
	abs, err := r.Resolve(candidate)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

// WriteFile writes a file after path validation, creating parent
// directories as needed. The write is not atomic: a failure partway
// through leaves partial output.
func (r *Root) WriteFile(candidate string, data []byte) error {
	abs, err := r.Resolve(candidate)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	unlock := r.LockPath(abs)
	defer unlock()
	return os.WriteFile(abs, data, 0644)
}

// Glob expands pattern (relative to the root) and returns only matches
// that pass containment.
func (r *Root) Glob(pattern string) ([]string, error) {
	if filepath.IsAbs(pattern) {
		if !r.contains(filepath.Clean(pattern)) {
			return nil, fmt.Errorf("%w: %s", ErrEscape, pattern)
		}
	} else {
		pattern = filepath.Join(r.dir, pattern)
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if abs, err := r.Resolve(m); err == nil {
			out = append(out, abs)
		}
	}
	return out, nil
}

// LockPath takes an advisory per-path lock so concurrent requests
// writing the same output file serialize. Callers must invoke the
// returned func to release.
func (r *Root) LockPath(abs string) func() {
	r.mu.Lock()
	m, ok := r.locks[abs]
	if !ok {
		m = &sync.Mutex{}
		r.locks[abs] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}
