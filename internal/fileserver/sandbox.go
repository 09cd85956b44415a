package fileserver

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// errAccessDenied marks a path that escapes the sandbox. Tools translate it
// into their access-denied text; it never leaves this package as an error.
var errAccessDenied = errors.New("access denied")

// Sandbox confines all tool file access to a single base directory.
type Sandbox struct {
	base string
}

// NewSandbox resolves dir to an absolute path and returns a sandbox rooted
// there. Symlinks in the base itself are resolved once here so later
// containment checks compare like with like.
func NewSandbox(dir string) (*Sandbox, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory: %w", err)
	}

	return &Sandbox{base: resolved}, nil
}

// Base returns the absolute base directory.
func (s *Sandbox) Base() string {
	return s.base
}

// Resolve maps a tool-supplied path to an absolute path and rejects anything
// outside the base directory. Relative paths are joined to the base; absolute
// paths are allowed only when already inside it.
func (s *Sandbox) Resolve(path string) (string, error) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(s.base, path)
	}
	full = filepath.Clean(full)

	rel, err := filepath.Rel(s.base, full)
	if err != nil {
		return "", errAccessDenied
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errAccessDenied
	}

	return full, nil
}
