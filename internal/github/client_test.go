package github_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/agmd-labs/agmd/internal/github"
	"github.com/agmd-labs/agmd/internal/github/githubtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, srv *githubtest.Server) *github.Client {
	t.Helper()
	c, err := github.NewClient(
		github.WithHTTPClient(srv.Client()),
		github.WithAPIURL(srv.APIURL()),
		github.WithRawURL(srv.RawURL()),
	)
	require.NoError(t, err)
	return c
}

func TestFetchAgents_RepoRoot(t *testing.T) {
	srv := githubtest.NewServer(t)
	srv.AddRepo("octo", "docs", "trunk")
	srv.AddFile("octo", "docs", "AGENTS.md", "Rule 1\n")
	srv.AddFile("octo", "docs", "README.md", "ignored")

	text, err := newClient(t, srv).FetchAgents(context.Background(), "octo/docs")
	require.NoError(t, err)
	assert.Equal(t, "Rule 1\n", text)

	// The raw URL is built from the default branch, not a hard-coded one.
	assert.Equal(t, 1, srv.CountRequests("/raw/octo/docs/refs/heads/trunk/AGENTS.md"))
}

func TestFetchAgents_SubpathCaseInsensitive(t *testing.T) {
	srv := githubtest.NewServer(t)
	srv.AddFile("acme", "rules", "go/agents.MD", "go rules")
	srv.AddFile("acme", "rules", "AGENTS.md", "root rules")

	text, err := newClient(t, srv).FetchAgents(context.Background(), " /acme/rules/go/ ")
	require.NoError(t, err)
	assert.Equal(t, "go rules", text)
}

func TestFetchAgents_DirectoryNamedAgentsIsIgnored(t *testing.T) {
	srv := githubtest.NewServer(t)
	srv.AddFile("acme", "rules", "AGENTS.md/inner.txt", "not a file match")

	_, err := newClient(t, srv).FetchAgents(context.Background(), "acme/rules")
	require.ErrorIs(t, err, github.ErrNotFound)
}

func TestFetchAgents_NotFound(t *testing.T) {
	srv := githubtest.NewServer(t)
	srv.AddFile("acme", "rules", "docs/README.md", "nothing here")

	_, err := newClient(t, srv).FetchAgents(context.Background(), "acme/rules/docs")
	require.ErrorIs(t, err, github.ErrNotFound)
	assert.Contains(t, err.Error(), "acme/rules/docs")
}

func TestFetchAgents_UnknownRepoIsFetchError(t *testing.T) {
	srv := githubtest.NewServer(t)

	_, err := newClient(t, srv).FetchAgents(context.Background(), "ghost/repo")

	var fe *github.FetchError
	require.True(t, errors.As(err, &fe), "expected FetchError, got %v", err)
	assert.Contains(t, fe.URL, "repos/ghost/repo")
	assert.Contains(t, err.Error(), "404")
}

func TestFetchAgents_RawFailureIsFetchError(t *testing.T) {
	srv := githubtest.NewServer(t)
	srv.AddFile("octo", "docs", "AGENTS.md", "Rule 1")
	srv.Fail("/raw/octo/docs/refs/heads/main/AGENTS.md", http.StatusInternalServerError)

	_, err := newClient(t, srv).FetchAgents(context.Background(), "octo/docs")

	var fe *github.FetchError
	require.True(t, errors.As(err, &fe), "expected FetchError, got %v", err)
	assert.Equal(t, srv.RawURL()+"/octo/docs/refs/heads/main/AGENTS.md", fe.URL)
	assert.Contains(t, err.Error(), "500")
}

func TestFetchAgents_InvalidSlugMakesNoRequest(t *testing.T) {
	srv := githubtest.NewServer(t)

	for _, slug := range []string{"", "owner", "/owner/", "  "} {
		_, err := newClient(t, srv).FetchAgents(context.Background(), slug)
		require.ErrorIs(t, err, github.ErrInvalidSlug)
	}
	assert.Empty(t, srv.Requests())
}

func TestDefaultBranch_MemoizedPerClient(t *testing.T) {
	srv := githubtest.NewServer(t)
	srv.AddFile("octo", "docs", "AGENTS.md", "root")
	srv.AddFile("octo", "docs", "sub/AGENTS.md", "sub")

	c := newClient(t, srv)
	for _, slug := range []string{"octo/docs", "octo/docs/sub", "octo/docs"} {
		_, err := c.FetchAgents(context.Background(), slug)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, srv.CountRequests("/api/repos/octo/docs"))

	// A fresh client does not share the memo.
	_, err := newClient(t, srv).DefaultBranch(context.Background(), "octo", "docs")
	require.NoError(t, err)
	assert.Equal(t, 2, srv.CountRequests("/api/repos/octo/docs"))
}

func TestListDir(t *testing.T) {
	srv := githubtest.NewServer(t)
	srv.AddFile("acme", "mods", "skills/a.md", "a")
	srv.AddFile("acme", "mods", "skills/nested/b.md", "b")

	slug, err := github.ParseSlug("acme/mods/skills")
	require.NoError(t, err)

	entries, err := newClient(t, srv).ListDir(context.Background(), slug, "skills")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, github.Entry{
		Type:        github.TypeFile,
		Name:        "a.md",
		Path:        "skills/a.md",
		DownloadURL: srv.URL + "/raw/acme/mods/refs/heads/main/skills/a.md",
	}, entries[0])
	assert.Equal(t, github.TypeDir, entries[1].Type)
	assert.Equal(t, "skills/nested", entries[1].Path)
}

func TestListDir_FilePathYieldsSingleEntry(t *testing.T) {
	srv := githubtest.NewServer(t)
	srv.AddFile("acme", "mods", "one.txt", "1")

	slug, _ := github.ParseSlug("acme/mods/one.txt")
	entries, err := newClient(t, srv).ListDir(context.Background(), slug, "one.txt")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "one.txt", entries[0].Path)
}

func TestDownload_Binary(t *testing.T) {
	srv := githubtest.NewServer(t)
	payload := []byte{0x00, 0xff, 0x10, '\r', '\n', 0x80}
	srv.AddBytes("acme", "mods", "bin/blob", payload)

	c := newClient(t, srv)
	got, err := c.Download(context.Background(), c.RawURL("acme", "mods", "main", "bin/blob"))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRawURL_EscapesSegments(t *testing.T) {
	c, err := github.NewClient()
	require.NoError(t, err)
	assert.Equal(t,
		"https://raw.githubusercontent.com/o/r/refs/heads/feature/x/docs/my%20file.md",
		c.RawURL("o", "r", "feature/x", "docs/my file.md"))
}
