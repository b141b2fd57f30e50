// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed. Forks rename the tool by editing that file only;
// the delimiter headers written into AGENTS.md and the module directory name
// are derived from it as well.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
	GoModule    string `yaml:"go_module"`
	GitHubRepo  string `yaml:"github_repo"`
	ConfigFile  string `yaml:"config_file"`
	ModuleDir   string `yaml:"module_dir"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:     "agmd",
			DisplayName: "agmd",
			Description: "Compose AGENTS.md files from GitHub sources and local overrides",
			HomeDir:     ".agmd-cli",
			EnvPrefix:   "AGMD",
			GoModule:    "github.com/agmd-labs/agmd",
			GitHubRepo:  "agmd-labs/agmd",
			ConfigFile:  "agmd.yml",
			ModuleDir:   ".agmd",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "agmd"). It doubles as the
// marker word in AGENTS.md delimiter headers.
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME holding user settings.
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "AGMD").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// GitHubRepo returns the "owner/repo" of the tool itself, used by version checks.
func GitHubRepo() string { load(); return defaults.GitHubRepo }

// ConfigFile returns the project-level mapping file name (e.g., "agmd.yml").
func ConfigFile() string { load(); return defaults.ConfigFile }

// ModuleDir returns the per-path module mirror directory name (e.g., ".agmd").
func ModuleDir() string { load(); return defaults.ModuleDir }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("github_api_url") → "AGMD_GITHUB_API_URL".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
