package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const (
	// DefaultAPIURL is the GitHub REST API base.
	DefaultAPIURL = "https://api.github.com/"

	// DefaultRawURL is the host serving raw file content by branch and path.
	DefaultRawURL = "https://raw.githubusercontent.com"

	// RequestTimeout bounds every request.
	RequestTimeout = 20 * time.Second

	// AgentsFile is the document looked up (case-insensitively) in a source.
	AgentsFile = "AGENTS.md"

	defaultUserAgent = "agmd-cli"
	branchCacheSize  = 128
)

// Entry types returned by directory listings.
const (
	TypeFile = "file"
	TypeDir  = "dir"
)

// Entry is one item of a directory listing.
type Entry struct {
	Type        string
	Name        string
	Path        string
	DownloadURL string
}

// Client talks to a GitHub-compatible host anonymously.
type Client struct {
	api        *gh.Client
	httpClient *http.Client
	apiURL     string
	rawURL     string
	userAgent  string
	logger     *zap.Logger

	// Default branches are memoized for the lifetime of the client only.
	branches *lru.Cache[string, string]
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for API and raw requests. Its
// timeout is overridden with RequestTimeout.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIURL points the client at a different REST API base URL.
func WithAPIURL(apiURL string) Option {
	return func(cl *Client) {
		if apiURL != "" {
			cl.apiURL = apiURL
		}
	}
}

// WithRawURL points the client at a different raw content host.
func WithRawURL(rawURL string) Option {
	return func(cl *Client) {
		if rawURL != "" {
			cl.rawURL = rawURL
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// NewClient creates a Client with the given options.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: http.DefaultClient,
		apiURL:     DefaultAPIURL,
		rawURL:     DefaultRawURL,
		userAgent:  defaultUserAgent,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.httpClient
	hc.Timeout = RequestTimeout
	c.httpClient = &hc

	if !strings.HasSuffix(c.apiURL, "/") {
		c.apiURL += "/"
	}
	base, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("parsing API URL %q: %w", c.apiURL, err)
	}
	c.rawURL = strings.TrimRight(c.rawURL, "/")

	c.api = gh.NewClient(c.httpClient)
	c.api.BaseURL = base
	c.api.UserAgent = c.userAgent

	c.branches, err = lru.New[string, string](branchCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating branch cache: %w", err)
	}
	return c, nil
}

// API returns the underlying go-github client.
func (c *Client) API() *gh.Client {
	return c.api
}

// DefaultBranch returns the default branch of owner/repo.
func (c *Client) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	key := owner + "/" + repo
	if branch, ok := c.branches.Get(key); ok {
		return branch, nil
	}

	endpoint := c.apiURL + fmt.Sprintf("repos/%s/%s", owner, repo)
	c.logger.Debug("fetching repository metadata", zap.String("url", endpoint))

	r, _, err := c.api.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return "", &FetchError{URL: endpoint, Err: apiCause(err)}
	}
	branch := r.GetDefaultBranch()
	if branch == "" {
		return "", &FetchError{URL: endpoint, Err: fmt.Errorf("could not determine default branch for '%s'", key)}
	}

	c.branches.Add(key, branch)
	return branch, nil
}

// ListDir lists dir within the slug's repository on its default branch. When
// dir names a file, the listing holds just that file.
func (c *Client) ListDir(ctx context.Context, slug Slug, dir string) ([]Entry, error) {
	branch, err := c.DefaultBranch(ctx, slug.Owner, slug.Repo)
	if err != nil {
		return nil, err
	}

	endpoint := c.contentsURL(slug, dir, branch)
	c.logger.Debug("listing directory", zap.String("url", endpoint))

	file, dirContents, _, err := c.api.Repositories.GetContents(ctx, slug.Owner, slug.Repo, dir,
		&gh.RepositoryContentGetOptions{Ref: branch})
	if err != nil {
		return nil, &FetchError{URL: endpoint, Err: apiCause(err)}
	}

	if file != nil {
		return []Entry{toEntry(file)}, nil
	}
	entries := make([]Entry, 0, len(dirContents))
	for _, item := range dirContents {
		if item == nil {
			continue
		}
		entries = append(entries, toEntry(item))
	}
	return entries, nil
}

// FetchAgents resolves the AGENTS.md file at name (a slug) and returns its text.
func (c *Client) FetchAgents(ctx context.Context, name string) (string, error) {
	slug, err := ParseSlug(name)
	if err != nil {
		return "", err
	}

	entries, err := c.ListDir(ctx, slug, slug.SubPath())
	if err != nil {
		return "", err
	}

	var agentsPath string
	for _, e := range entries {
		if e.Type == TypeFile && strings.EqualFold(e.Name, AgentsFile) && e.Path != "" {
			agentsPath = e.Path
			break
		}
	}
	if agentsPath == "" {
		target := slug.SubPath()
		if target == "" {
			target = "."
		}
		return "", fmt.Errorf("%w in '%s/%s/%s' (case-insensitive filename match)",
			ErrNotFound, slug.Owner, slug.Repo, target)
	}

	// Cached by the listing above.
	branch, err := c.DefaultBranch(ctx, slug.Owner, slug.Repo)
	if err != nil {
		return "", err
	}

	data, err := c.Download(ctx, c.RawURL(slug.Owner, slug.Repo, branch, agentsPath))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RawURL builds the raw content URL for a file on a branch.
func (c *Client) RawURL(owner, repo, branch, filePath string) string {
	return fmt.Sprintf("%s/%s/%s/refs/heads/%s/%s",
		c.rawURL, url.PathEscape(owner), url.PathEscape(repo), escapeSegments(branch), escapeSegments(filePath))
}

// Download fetches rawURL and returns the body verbatim.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("downloading", zap.String("url", rawURL))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("reading response body: %w", err)}
	}
	return body, nil
}

func (c *Client) contentsURL(slug Slug, dir, branch string) string {
	u := c.apiURL + fmt.Sprintf("repos/%s/%s/contents", slug.Owner, slug.Repo)
	if dir != "" {
		u += "/" + escapeSegments(dir)
	}
	return u + "?ref=" + url.QueryEscape(branch)
}

func toEntry(rc *gh.RepositoryContent) Entry {
	return Entry{
		Type:        rc.GetType(),
		Name:        rc.GetName(),
		Path:        rc.GetPath(),
		DownloadURL: rc.GetDownloadURL(),
	}
}

// apiCause condenses go-github errors, which repeat the request URL, into the
// status and message.
func apiCause(err error) error {
	var rle *gh.RateLimitError
	if errors.As(err, &rle) {
		return errors.New("GitHub API rate limit exceeded for anonymous access")
	}
	var er *gh.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		if er.Message != "" {
			return fmt.Errorf("%s: %s", er.Response.Status, er.Message)
		}
		return errors.New(er.Response.Status)
	}
	return err
}

func escapeSegments(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
