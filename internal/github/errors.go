package github

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSlug is returned for slugs without at least <owner>/<repo>.
	ErrInvalidSlug = errors.New("invalid GitHub path")

	// ErrNotFound is returned when no AGENTS.md exists at the resolved location.
	ErrNotFound = errors.New("AGENTS.md not found")
)

// FetchError reports a failed request: a network error, a timeout or a
// non-success response. It is never retried.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
