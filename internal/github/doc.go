// Package github fetches AGENTS.md documents and directory trees from
// GitHub-compatible hosts. Repository metadata and directory listings go
// through the REST API via go-github; file content is downloaded from the raw
// content host. Access is anonymous and every request has a fixed timeout.
package github
