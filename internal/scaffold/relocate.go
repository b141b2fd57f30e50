package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/agmd-labs/agmd/internal/branding"
	"github.com/agmd-labs/agmd/internal/compose"
)

// Relocation lists the AGENTS.md files found under a project.
type Relocation struct {
	// Moved holds the new AGENTS.local.md paths.
	Moved []string

	// Skipped holds AGENTS.md files left alone because an AGENTS.local.md
	// already exists beside them.
	Skipped []string
}

// MoveAgentsFiles renames every regular AGENTS.md file under root to
// AGENTS.local.md. VCS metadata and module directories are not descended.
func MoveAgentsFiles(root string) (*Relocation, error) {
	res := &Relocation{}

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && (d.Name() == ".git" || d.Name() == branding.ModuleDir()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != compose.AgentsFile || !d.Type().IsRegular() {
			return nil
		}

		dest := filepath.Join(filepath.Dir(p), compose.LocalFile)
		if _, err := os.Lstat(dest); err == nil {
			res.Skipped = append(res.Skipped, p)
			return nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", dest, err)
		}

		if err := os.Rename(p, dest); err != nil {
			return fmt.Errorf("renaming %s: %w", p, err)
		}
		res.Moved = append(res.Moved, dest)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("relocating %s files: %w", compose.AgentsFile, err)
	}
	return res, nil
}
