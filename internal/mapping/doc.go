// Package mapping loads and saves the project mapping file (agmd.yml), an
// ordered list of project paths each paired with the ordered GitHub sources
// composed into that path's AGENTS.md. The file is validated against an
// embedded JSON schema before it is decoded.
package mapping
