// Package syncer regenerates every configured AGENTS.md and rebuilds the
// module mirrors next to them.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/agmd-labs/agmd/internal/compose"
	"github.com/agmd-labs/agmd/internal/mapping"
	"github.com/agmd-labs/agmd/internal/module"
	"github.com/agmd-labs/agmd/internal/project"
	"go.uber.org/zap"
)

// ModuleReport describes one rebuilt module directory.
type ModuleReport struct {
	Dir   string
	Files int
}

// Report lists what a sync wrote, in configuration order.
type Report struct {
	Written []string
	Modules []ModuleReport
}

// Syncer runs a full sync for a project.
type Syncer struct {
	root         project.Root
	composer     *compose.Composer
	materializer *module.Materializer
	logger       *zap.Logger
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Syncer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Syncer for root.
func New(root project.Root, composer *compose.Composer, materializer *module.Materializer, opts ...Option) *Syncer {
	s := &Syncer{
		root:         root,
		composer:     composer,
		materializer: materializer,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run writes AGENTS.md for every mapping in set, then rebuilds module
// directories. Paths are handled in order and the first error stops the run.
func (s *Syncer) Run(ctx context.Context, set *mapping.Set) (*Report, error) {
	mappings := set.Mappings()
	report := &Report{}

	dirs := make([]string, len(mappings))
	for i, m := range mappings {
		dir, err := s.root.Resolve(m.Path)
		if err != nil {
			return nil, err
		}
		dirs[i] = dir

		written, err := s.writeAgents(ctx, dir, m.Sources)
		if err != nil {
			return nil, err
		}
		report.Written = append(report.Written, written)
	}

	for i, m := range mappings {
		slugs := m.ModuleNames()
		modulesDir := module.Dir(dirs[i])

		if len(slugs) == 0 {
			exists, err := pathExists(modulesDir)
			if err != nil {
				return nil, err
			}
			if !exists {
				continue
			}
		}

		n, err := s.materializer.Rebuild(ctx, dirs[i], slugs)
		if err != nil {
			return nil, err
		}
		s.logger.Info("rebuilt modules", zap.String("path", m.Path), zap.Int("files", n))
		report.Modules = append(report.Modules, ModuleReport{Dir: modulesDir, Files: n})
	}

	return report, nil
}

func (s *Syncer) writeAgents(ctx context.Context, dir string, sources []mapping.SourceEntry) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	doc, err := s.composer.Compose(ctx, sources, filepath.Join(dir, compose.LocalFile))
	if err != nil {
		return "", err
	}
	if s.root.IsRoot(dir) {
		doc = compose.WithPreamble(doc)
	}

	target := filepath.Join(dir, compose.AgentsFile)
	if err := os.WriteFile(target, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", target, err)
	}
	s.logger.Info("wrote AGENTS.md", zap.String("path", target), zap.Int("sources", len(sources)))
	return target, nil
}

func pathExists(p string) (bool, error) {
	_, err := os.Lstat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking %s: %w", p, err)
}
