package updater

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agmd-labs/agmd/internal/branding"
	gh "github.com/google/go-github/v66/github"
)

// ReleaseService is the part of the GitHub repositories API the updater uses.
type ReleaseService interface {
	GetLatestRelease(ctx context.Context, owner, repo string) (*gh.RepositoryRelease, *gh.Response, error)
}

// Release is a published version of the tool.
type Release struct {
	Version   string    `json:"version"`
	HTMLURL   string    `json:"html_url"`
	Published time.Time `json:"published_at"`
}

// Updater checks for new releases.
type Updater struct {
	currentVersion string
	releases       ReleaseService
	repo           string
	cacheDir       string
	maxAge         time.Duration
	now            func() time.Time
}

// Option configures an Updater.
type Option func(*Updater)

// WithRepo overrides the "owner/repo" whose releases are checked.
func WithRepo(repo string) Option {
	return func(u *Updater) {
		if repo != "" {
			u.repo = repo
		}
	}
}

// WithCacheDir enables the on-disk result cache in dir.
func WithCacheDir(dir string) Option {
	return func(u *Updater) {
		u.cacheDir = dir
	}
}

// WithMaxAge sets how long a cached result stays fresh.
func WithMaxAge(d time.Duration) Option {
	return func(u *Updater) {
		u.maxAge = d
	}
}

// New creates an Updater for currentVersion reading releases from releases.
func New(currentVersion string, releases ReleaseService, opts ...Option) *Updater {
	u := &Updater{
		currentVersion: currentVersion,
		releases:       releases,
		repo:           branding.GitHubRepo(),
		maxAge:         DefaultCacheMaxAge,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CurrentVersion returns the version this updater was created with.
func (u *Updater) CurrentVersion() string {
	return u.currentVersion
}

// Latest fetches the latest published release.
func (u *Updater) Latest(ctx context.Context) (*Release, error) {
	owner, name, ok := strings.Cut(u.repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid release repository %q", u.repo)
	}

	rel, _, err := u.releases.GetLatestRelease(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("fetching latest release of %s: %w", u.repo, err)
	}
	if rel.GetTagName() == "" {
		return nil, fmt.Errorf("latest release of %s has no tag", u.repo)
	}

	return &Release{
		Version:   rel.GetTagName(),
		HTMLURL:   rel.GetHTMLURL(),
		Published: rel.GetPublishedAt().Time,
	}, nil
}
