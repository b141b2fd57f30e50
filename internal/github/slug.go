package github

import (
	"fmt"
	"strings"
)

// Slug identifies a location on GitHub: owner/repo plus an optional path
// within the repository.
type Slug struct {
	Owner string
	Repo  string
	Path  []string
}

// ParseSlug splits raw ("owner/repo[/path...]") into its parts. Surrounding
// whitespace and slashes are ignored, as are empty segments.
func ParseSlug(raw string) (Slug, error) {
	cleaned := strings.Trim(strings.TrimSpace(raw), "/")

	var parts []string
	for _, part := range strings.Split(cleaned, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) < 2 {
		return Slug{}, fmt.Errorf("%w %q: expected at least <owner>/<repo>", ErrInvalidSlug, raw)
	}

	return Slug{Owner: parts[0], Repo: parts[1], Path: parts[2:]}, nil
}

// SubPath returns the path within the repository, or "" for the repo root.
func (s Slug) SubPath() string {
	return strings.Join(s.Path, "/")
}

// String returns the canonical owner/repo[/path] form.
func (s Slug) String() string {
	if len(s.Path) == 0 {
		return s.Owner + "/" + s.Repo
	}
	return s.Owner + "/" + s.Repo + "/" + s.SubPath()
}
