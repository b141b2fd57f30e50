package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/agmd-labs/agmd/internal/branding"
	"github.com/agmd-labs/agmd/internal/compose"
)

// GitignoreRules returns the rules init adds: the generated AGENTS.md and
// every module directory.
func GitignoreRules() []string {
	return []string{compose.AgentsFile, "**/" + branding.ModuleDir() + "/"}
}

// EnsureGitignoreRule appends rule to the .gitignore in dir unless a line
// already matches it. It reports whether the file changed.
func EnsureGitignoreRule(dir, rule string) (bool, error) {
	gitignorePath := filepath.Join(dir, ".gitignore")

	content, err := os.ReadFile(gitignorePath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("reading .gitignore: %w", err)
	}

	for _, l := range strings.Split(string(content), "\n") {
		if strings.TrimRight(l, "\r") == rule {
			return false, nil
		}
	}

	// Ensure there's a newline before our addition.
	suffix := rule + "\n"
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		suffix = "\n" + suffix
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("opening .gitignore for append: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(suffix); err != nil {
		return false, fmt.Errorf("writing to .gitignore: %w", err)
	}
	return true, nil
}
