package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agmd-labs/agmd/internal/branding"
)

// vcsMarker is the entry whose presence marks a project root. Git worktrees
// use a .git file rather than a directory; both count.
const vcsMarker = ".git"

// RootKey is the path key denoting the project root itself.
const RootKey = "."

// ErrOutOfBounds is returned when a path resolves outside the project root.
var ErrOutOfBounds = errors.New("path escapes project root")

// Root is the discovered project root. It is computed once per invocation and
// passed explicitly to everything that needs it.
type Root struct {
	dir string
}

// New returns a Root for dir. The directory is made absolute and symlinks in
// its existing prefix are resolved so containment checks compare like with like.
func New(dir string) (Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Root{}, fmt.Errorf("resolving %s: %w", dir, err)
	}
	return Root{dir: evalExisting(abs)}, nil
}

// FindRoot walks start and its parents looking for a .git entry. If none is
// found, start itself is the root.
func FindRoot(start string) (Root, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return Root{}, fmt.Errorf("resolving %s: %w", start, err)
	}

	for dir := abs; ; {
		if _, err := os.Lstat(filepath.Join(dir, vcsMarker)); err == nil {
			return New(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return New(abs)
}

// Dir returns the absolute root directory.
func (r Root) Dir() string {
	return r.dir
}

// ConfigPath returns the path of the mapping file at the root.
func (r Root) ConfigPath() string {
	return filepath.Join(r.dir, branding.ConfigFile())
}

// Resolve returns the absolute directory for raw, which may be relative to
// the root or absolute. The result must be the root or one of its descendants.
func (r Root) Resolve(raw string) (string, error) {
	candidate := raw
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(r.dir, filepath.FromSlash(candidate))
	}
	resolved := evalExisting(filepath.Clean(candidate))

	if _, ok := r.relative(resolved); !ok {
		return "", fmt.Errorf("%w: path %q must be within the project root %q", ErrOutOfBounds, raw, r.dir)
	}
	return resolved, nil
}

// Normalize converts raw into a POSIX-style key relative to the root, using
// "." for the root itself.
func (r Root) Normalize(raw string) (string, error) {
	resolved, err := r.Resolve(raw)
	if err != nil {
		return "", err
	}
	rel, _ := r.relative(resolved)
	return filepath.ToSlash(rel), nil
}

// IsRoot reports whether dir is the root directory.
func (r Root) IsRoot(dir string) bool {
	return filepath.Clean(dir) == r.dir
}

func (r Root) relative(target string) (string, bool) {
	rel, err := filepath.Rel(r.dir, target)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// evalExisting resolves symlinks in the longest existing prefix of p and
// re-appends the remaining, not yet created, components.
func evalExisting(p string) string {
	var rest []string
	cur := p
	for {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p
		}
		rest = append([]string{filepath.Base(cur)}, rest...)
		cur = parent
	}
}
