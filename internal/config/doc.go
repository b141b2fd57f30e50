// Package config manages user-level settings stored at ~/.agmd-cli/config.yaml.
// Every key can be overridden from the environment with an AGMD_ prefix and
// dots replaced by underscores (AGMD_GITHUB_API_URL for github.api_url).
package config
