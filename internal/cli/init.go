package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/agmd-labs/agmd/internal/branding"
	"github.com/agmd-labs/agmd/internal/compose"
	"github.com/agmd-labs/agmd/internal/mapping"
	"github.com/agmd-labs/agmd/internal/scaffold"
	"github.com/spf13/cobra"
)

var initMappings []string

func init() {
	initCmd.Flags().StringArrayVarP(&initMappings, "map", "m", nil, "Initial mapping as PATH=GITHUB_SLUG (repeatable)")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create " + branding.ConfigFile() + " in the project root",
	Long: `Create ` + branding.ConfigFile() + ` at the project root (the nearest directory containing .git),
add .gitignore rules for generated AGENTS.md files and module directories, and
rename existing AGENTS.md files to AGENTS.local.md so they are kept as local
overrides.

  ` + branding.CLIName() + ` init
  ` + branding.CLIName() + ` init -m .=octo/docs -m services/api=acme/rules/go`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		root, err := projectRoot()
		if err != nil {
			return err
		}

		configPath := root.ConfigPath()
		_, err = os.Stat(configPath)
		switch {
		case err == nil:
			fmt.Fprintf(out, "Skipped creating existing file: %s\n", configPath)
		case errors.Is(err, fs.ErrNotExist):
			set, err := scaffold.InitialSet(root, initMappings)
			if err != nil {
				return err
			}
			if err := mapping.Save(configPath, set); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %s\n", configPath)
		default:
			return fmt.Errorf("checking %s: %w", configPath, err)
		}

		for _, rule := range scaffold.GitignoreRules() {
			if _, err := scaffold.EnsureGitignoreRule(root.Dir(), rule); err != nil {
				return err
			}
		}

		moved, err := scaffold.MoveAgentsFiles(root.Dir())
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Updated %s to ignore %s and recursively ignore '%s' dirs\n",
			filepath.Join(root.Dir(), ".gitignore"), compose.AgentsFile, branding.ModuleDir())
		fmt.Fprintf(out, "Renamed %d %s file(s) to %s\n", len(moved.Moved), compose.AgentsFile, compose.LocalFile)
		for _, p := range moved.Skipped {
			fmt.Fprintf(out, "Skipped %s: %s already exists\n", p, compose.LocalFile)
		}
		return nil
	},
}
