// Package updater reports whether a newer release of agmd is published on
// GitHub. Results are cached for a day under the user settings directory.
package updater
