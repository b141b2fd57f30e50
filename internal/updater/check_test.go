package updater

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agmd-labs/agmd/internal/github"
	"github.com/agmd-labs/agmd/internal/github/githubtest"
	gh "github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReleases struct {
	tag   string
	err   error
	calls int
}

func (f *fakeReleases) GetLatestRelease(_ context.Context, owner, repo string) (*gh.RepositoryRelease, *gh.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	return &gh.RepositoryRelease{TagName: gh.String(f.tag)}, nil, nil
}

func TestCheck_Live(t *testing.T) {
	srv := githubtest.NewServer(t)
	srv.SetLatestRelease("agmd-labs", "agmd", "v1.4.0")

	c, err := github.NewClient(github.WithHTTPClient(srv.Client()), github.WithAPIURL(srv.APIURL()))
	require.NoError(t, err)

	st, err := New("1.3.2", c.API().Repositories).Check(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, st.UpdateAvailable)
	assert.Equal(t, "v1.4.0", st.Latest.Version)
	assert.Equal(t, "https://github.com/agmd-labs/agmd/releases/tag/v1.4.0", st.Latest.HTMLURL)
	assert.Equal(t, 2026, st.Latest.Published.Year())

	st, err = New("v1.4.0", c.API().Repositories).Check(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, st.UpdateAvailable)
}

func TestCheck_NoReleases(t *testing.T) {
	srv := githubtest.NewServer(t)
	srv.AddRepo("agmd-labs", "agmd", "main")

	c, err := github.NewClient(github.WithHTTPClient(srv.Client()), github.WithAPIURL(srv.APIURL()))
	require.NoError(t, err)

	_, err = New("1.0.0", c.API().Repositories).Check(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agmd-labs/agmd")
}

func TestCheck_UsesFreshCache(t *testing.T) {
	dir := t.TempDir()
	rel := &fakeReleases{tag: "v2.0.0"}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	u := New("1.0.0", rel, WithCacheDir(dir))
	u.now = func() time.Time { return now }

	_, err := u.Check(context.Background(), false)
	require.NoError(t, err)
	_, err = u.Check(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, rel.calls)

	// Forced refresh bypasses the cache.
	_, err = u.Check(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, rel.calls)

	// Stale after max age.
	now = now.Add(DefaultCacheMaxAge + time.Minute)
	_, err = u.Check(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, rel.calls)

	// A different running version does not reuse the result.
	other := New("1.5.0", rel, WithCacheDir(dir))
	other.now = func() time.Time { return now }
	st, err := other.Check(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 4, rel.calls)
	assert.Equal(t, "1.5.0", st.CurrentVersion)
}

func TestCheck_Errors(t *testing.T) {
	boom := errors.New("boom")
	_, err := New("1.0.0", &fakeReleases{err: boom}).Check(context.Background(), false)
	require.ErrorIs(t, err, boom)

	_, err = New("1.0.0", &fakeReleases{tag: "v1.0.1"}, WithRepo("no-slash")).Check(context.Background(), false)
	require.Error(t, err)

	_, err = New("1.0.0", &fakeReleases{tag: ""}).Check(context.Background(), false)
	require.Error(t, err)
}
