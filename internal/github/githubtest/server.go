// Package githubtest provides an in-memory GitHub-compatible host for tests.
// It serves the repository metadata, contents and latest release endpoints of
// the REST API under /api/ and raw file content under /raw/.
package githubtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

type repo struct {
	branch string
	files  map[string][]byte
	latest string
}

// Server is a fake GitHub host backed by httptest.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	repos    map[string]*repo
	requests []string
	delays   map[string]time.Duration
	failures map[string]int
}

// NewServer starts a Server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		repos:    make(map[string]*repo),
		delays:   make(map[string]time.Duration),
		failures: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// APIURL is the REST API base URL of the server.
func (s *Server) APIURL() string { return s.URL + "/api/" }

// RawURL is the raw content base URL of the server.
func (s *Server) RawURL() string { return s.URL + "/raw" }

// AddRepo registers owner/repo with the given default branch.
func (s *Server) AddRepo(owner, name, branch string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := owner + "/" + name
	if r, ok := s.repos[key]; ok {
		r.branch = branch
		return
	}
	s.repos[key] = &repo{branch: branch, files: make(map[string][]byte)}
}

// AddFile stores content at filePath in owner/repo, registering the repo
// with default branch "main" if needed.
func (s *Server) AddFile(owner, name, filePath, content string) {
	s.AddBytes(owner, name, filePath, []byte(content))
}

// AddBytes is AddFile for binary content.
func (s *Server) AddBytes(owner, name, filePath string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := owner + "/" + name
	r, ok := s.repos[key]
	if !ok {
		r = &repo{branch: "main", files: make(map[string][]byte)}
		s.repos[key] = r
	}
	r.files[strings.Trim(filePath, "/")] = content
}

// RemoveFile deletes filePath from owner/repo.
func (s *Server) RemoveFile(owner, name, filePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.repos[owner+"/"+name]; ok {
		delete(r.files, strings.Trim(filePath, "/"))
	}
}

// SetLatestRelease publishes tag as the latest release of owner/repo.
func (s *Server) SetLatestRelease(owner, name, tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := owner + "/" + name
	r, ok := s.repos[key]
	if !ok {
		r = &repo{branch: "main", files: make(map[string][]byte)}
		s.repos[key] = r
	}
	r.latest = tag
}

// SetDelay delays responses for the exact request path p.
func (s *Server) SetDelay(p string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[p] = d
}

// Fail makes requests for the exact path p answer with status.
func (s *Server) Fail(p string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[p] = status
}

// Requests returns the paths requested so far, in arrival order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// CountRequests returns how many requests were made for the exact path p.
func (s *Server) CountRequests(p string) int {
	n := 0
	for _, r := range s.Requests() {
		if r == p {
			n++
		}
	}
	return n
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Path

	s.mu.Lock()
	s.requests = append(s.requests, p)
	delay := s.delays[p]
	status := s.failures[p]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
		return
	}

	switch {
	case strings.HasPrefix(p, "/api/repos/"):
		s.handleAPI(w, r, strings.TrimPrefix(p, "/api/repos/"))
	case strings.HasPrefix(p, "/raw/"):
		s.handleRaw(w, strings.TrimPrefix(p, "/raw/"))
	default:
		notFound(w)
	}
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request, rest string) {
	parts := strings.SplitN(rest, "/", 4)
	if len(parts) < 2 {
		notFound(w)
		return
	}
	owner, name := parts[0], parts[1]

	s.mu.Lock()
	defer s.mu.Unlock()
	rp, ok := s.repos[owner+"/"+name]
	if !ok {
		notFound(w)
		return
	}

	if len(parts) == 2 || (len(parts) == 3 && parts[2] == "") {
		writeJSON(w, http.StatusOK, map[string]any{
			"name":           name,
			"full_name":      owner + "/" + name,
			"default_branch": rp.branch,
		})
		return
	}
	if parts[2] == "releases" && len(parts) == 4 && parts[3] == "latest" {
		if rp.latest == "" {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"tag_name":     rp.latest,
			"html_url":     "https://github.com/" + owner + "/" + name + "/releases/tag/" + rp.latest,
			"published_at": "2026-01-02T03:04:05Z",
		})
		return
	}
	if parts[2] != "contents" {
		notFound(w)
		return
	}
	if ref := r.URL.Query().Get("ref"); ref != "" && ref != rp.branch {
		notFound(w)
		return
	}

	dir := ""
	if len(parts) == 4 {
		dir = strings.Trim(parts[3], "/")
	}

	if _, ok := rp.files[dir]; ok && dir != "" {
		writeJSON(w, http.StatusOK, s.fileEntry(owner, name, rp.branch, dir))
		return
	}

	var listing []map[string]any
	dirs := make(map[string]bool)
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}
	for filePath := range rp.files {
		if !strings.HasPrefix(filePath, prefix) {
			continue
		}
		rel := strings.TrimPrefix(filePath, prefix)
		if i := strings.Index(rel, "/"); i >= 0 {
			dirs[prefix+rel[:i]] = true
			continue
		}
		listing = append(listing, s.fileEntry(owner, name, rp.branch, filePath))
	}
	for d := range dirs {
		listing = append(listing, map[string]any{
			"type":         "dir",
			"name":         path.Base(d),
			"path":         d,
			"download_url": nil,
		})
	}
	if len(listing) == 0 {
		notFound(w)
		return
	}
	sort.Slice(listing, func(i, j int) bool {
		return listing[i]["path"].(string) < listing[j]["path"].(string)
	})
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleRaw(w http.ResponseWriter, rest string) {
	// owner/repo/refs/heads/<branch>/<path>
	parts := strings.SplitN(rest, "/", 6)
	if len(parts) < 6 || parts[2] != "refs" || parts[3] != "heads" {
		notFound(w)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rp, ok := s.repos[parts[0]+"/"+parts[1]]
	if !ok || rp.branch != parts[4] {
		notFound(w)
		return
	}
	content, ok := rp.files[parts[5]]
	if !ok {
		notFound(w)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(content)
}

func (s *Server) fileEntry(owner, name, branch, filePath string) map[string]any {
	return map[string]any{
		"type":         "file",
		"name":         path.Base(filePath),
		"path":         filePath,
		"download_url": s.URL + "/raw/" + owner + "/" + name + "/refs/heads/" + branch + "/" + filePath,
	}
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
