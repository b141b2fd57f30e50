// Package cli defines the Cobra command tree for the agmd CLI. Each file in
// this package registers one top-level command (init, add, sync, etc.) with
// the root command. Commands delegate to internal packages for the work and
// only handle flag parsing and output formatting.
package cli
