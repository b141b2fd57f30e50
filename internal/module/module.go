package module

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agmd-labs/agmd/internal/branding"
	"github.com/agmd-labs/agmd/internal/github"
	"go.uber.org/zap"
)

// ErrEmptyModule is returned when a module source contains no files.
var ErrEmptyModule = errors.New("no files found")

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Source lists remote directories and downloads their files.
type Source interface {
	github.DirLister
	Download(ctx context.Context, url string) ([]byte, error)
}

// Materializer downloads module trees to disk.
type Materializer struct {
	source Source
	logger *zap.Logger
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Materializer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a Materializer reading from source.
func New(source Source, opts ...Option) *Materializer {
	m := &Materializer{source: source, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SafeName derives the mirror directory name for a slug: every run of
// characters outside [A-Za-z0-9._-] becomes a single underscore.
func SafeName(slug string) (string, error) {
	cleaned := strings.Trim(strings.TrimSpace(slug), "/")
	if cleaned == "" {
		return "", fmt.Errorf("%w: GitHub path cannot be empty", github.ErrInvalidSlug)
	}
	return unsafeChars.ReplaceAllString(cleaned, "_"), nil
}

// Dir returns the module directory under pathRoot.
func Dir(pathRoot string) string {
	return filepath.Join(pathRoot, branding.ModuleDir())
}

// Download mirrors every file under slug into <destRoot>/.agmd/<safe-name>/
// and returns the number of files written.
func (m *Materializer) Download(ctx context.Context, slug, destRoot string) (int, error) {
	return m.mirror(ctx, slug, Dir(destRoot))
}

// Rebuild replaces <pathRoot>/.agmd with fresh mirrors of slugs and returns
// the total number of files written. Mirrors are assembled in a staging
// directory first; the previous .agmd is only removed once every slug has
// been downloaded, so a failed rebuild leaves it as it was. With no slugs the
// module directory is removed.
func (m *Materializer) Rebuild(ctx context.Context, pathRoot string, slugs []string) (int, error) {
	modulesRoot := Dir(pathRoot)

	if len(slugs) == 0 {
		if err := os.RemoveAll(modulesRoot); err != nil {
			return 0, fmt.Errorf("removing %s: %w", modulesRoot, err)
		}
		return 0, nil
	}

	if err := os.MkdirAll(pathRoot, 0o755); err != nil {
		return 0, fmt.Errorf("creating %s: %w", pathRoot, err)
	}
	staging, err := os.MkdirTemp(pathRoot, branding.ModuleDir()+"-staging-")
	if err != nil {
		return 0, fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	total := 0
	for _, slug := range slugs {
		n, err := m.mirror(ctx, slug, staging)
		if err != nil {
			return 0, err
		}
		total += n
	}

	// Remove whatever occupies the name, directory or stray file.
	if err := os.RemoveAll(modulesRoot); err != nil {
		return 0, fmt.Errorf("removing %s: %w", modulesRoot, err)
	}
	if err := os.Rename(staging, modulesRoot); err != nil {
		return 0, fmt.Errorf("moving modules into %s: %w", modulesRoot, err)
	}
	if err := os.Chmod(modulesRoot, 0o755); err != nil {
		return 0, fmt.Errorf("setting permissions on %s: %w", modulesRoot, err)
	}

	m.logger.Debug("rebuilt modules", zap.String("dir", modulesRoot), zap.Int("files", total))
	return total, nil
}

func (m *Materializer) mirror(ctx context.Context, slugName, modulesRoot string) (int, error) {
	slug, err := github.ParseSlug(slugName)
	if err != nil {
		return 0, err
	}
	name, err := SafeName(slugName)
	if err != nil {
		return 0, err
	}
	dest := filepath.Join(modulesRoot, name)
	prefix := slug.SubPath()

	count := 0
	err = github.Walk(ctx, m.source, slug, func(e github.Entry) error {
		rel := relativePath(prefix, e.Path)
		if !filepath.IsLocal(filepath.FromSlash(rel)) {
			return fmt.Errorf("refusing to write %q outside module directory %s", e.Path, dest)
		}
		target := filepath.Join(dest, filepath.FromSlash(rel))

		data, err := m.source.Download(ctx, e.DownloadURL)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}

		m.logger.Debug("wrote module file", zap.String("module", slugName), zap.String("path", target))
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}

	if count == 0 {
		return 0, fmt.Errorf("%w at GitHub path '%s'", ErrEmptyModule, slugName)
	}
	return count, nil
}

// relativePath maps a remote file path to its location inside the mirror.
// Paths that do not start with the module prefix fall back to their base name.
func relativePath(prefix, remote string) string {
	if prefix == "" {
		return remote
	}
	if strings.HasPrefix(remote, prefix) {
		if rel := strings.TrimLeft(strings.TrimPrefix(remote, prefix), "/"); rel != "" {
			return rel
		}
	}
	return path.Base(remote)
}
