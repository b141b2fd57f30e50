// Package module mirrors remote GitHub directory trees into a path's module
// directory (<path>/.agmd/<safe-name>/). Mirrors are rebuilt from scratch on
// every sync so files removed upstream, or sources removed from the config,
// never linger.
package module
