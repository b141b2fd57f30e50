package scaffold

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agmd-labs/agmd/internal/github"
	"github.com/agmd-labs/agmd/internal/mapping"
	"github.com/agmd-labs/agmd/internal/project"
)

// ErrInvalidMapping is returned for a malformed PATH=SLUG argument.
var ErrInvalidMapping = errors.New("invalid mapping")

// ParseMapping splits a PATH=SLUG argument. Both sides are trimmed and must
// be non-empty; the slug may itself contain '='.
func ParseMapping(raw string) (path, slug string, err error) {
	path, slug, ok := strings.Cut(raw, "=")
	if !ok {
		return "", "", fmt.Errorf("%w '%s': expected format <path>=<github-slug>", ErrInvalidMapping, raw)
	}
	path, slug = strings.TrimSpace(path), strings.TrimSpace(slug)
	if path == "" {
		return "", "", fmt.Errorf("%w '%s': path cannot be empty", ErrInvalidMapping, raw)
	}
	if slug == "" {
		return "", "", fmt.Errorf("%w '%s': GitHub slug cannot be empty", ErrInvalidMapping, raw)
	}
	return path, slug, nil
}

// InitialSet builds the mapping set written by init from PATH=SLUG
// arguments. Paths are normalized against root and slugs must parse; a slug
// repeated for the same path is kept once.
func InitialSet(root project.Root, args []string) (*mapping.Set, error) {
	set := mapping.NewSet()
	for _, raw := range args {
		path, slug, err := ParseMapping(raw)
		if err != nil {
			return nil, err
		}
		key, err := root.Normalize(path)
		if err != nil {
			return nil, err
		}
		if _, err := github.ParseSlug(slug); err != nil {
			return nil, err
		}
		set.Add(key, mapping.SourceEntry{Name: slug})
	}
	return set, nil
}
