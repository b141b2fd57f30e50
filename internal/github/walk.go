package github

import "context"

// DirLister lists one directory of a repository.
type DirLister interface {
	ListDir(ctx context.Context, slug Slug, dir string) ([]Entry, error)
}

// Walk visits every file reachable from the slug's subpath. Directories are
// expanded through an explicit work-list rather than recursion; sibling order
// is unspecified but each file is passed to fn exactly once. Files without a
// download URL and entries that are neither files nor directories (symlinks,
// submodules) are skipped.
func Walk(ctx context.Context, lister DirLister, slug Slug, fn func(Entry) error) error {
	pending := []string{slug.SubPath()}
	listed := make(map[string]bool)
	visited := make(map[string]bool)

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if listed[dir] {
			continue
		}
		listed[dir] = true

		entries, err := lister.ListDir(ctx, slug, dir)
		if err != nil {
			return err
		}

		for _, e := range entries {
			switch e.Type {
			case TypeDir:
				if e.Path != "" {
					pending = append(pending, e.Path)
				}
			case TypeFile:
				if e.DownloadURL == "" || visited[e.Path] {
					continue
				}
				visited[e.Path] = true
				if err := fn(e); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
