// Package scaffold prepares a project for agmd: it writes the initial
// mapping file, adds the ignore rules for generated files and moves
// hand-written AGENTS.md files aside so they become local overrides.
package scaffold
