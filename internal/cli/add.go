package cli

import (
	"fmt"
	"strings"

	"github.com/agmd-labs/agmd/internal/branding"
	"github.com/agmd-labs/agmd/internal/github"
	"github.com/agmd-labs/agmd/internal/mapping"
	"github.com/agmd-labs/agmd/internal/module"
	"github.com/spf13/cobra"
)

var (
	addPath   string
	addModule bool
)

func init() {
	addCmd.Flags().StringVar(&addPath, "path", ".", "Project path where AGENTS.md should be materialized")
	addCmd.Flags().BoolVar(&addModule, "module", false,
		"Also download every file under the GitHub path into <path>/"+branding.ModuleDir()+"/<slug>/")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <owner/repo[/path]>",
	Short: "Add a GitHub source and refresh AGENTS.md files",
	Long: `Add a GitHub source to a project path and regenerate every AGENTS.md.

The mapping is saved to ` + branding.ConfigFile() + ` only after the sync succeeds.

  ` + branding.CLIName() + ` add octo/docs
  ` + branding.CLIName() + ` add acme/rules/go --path services/api
  ` + branding.CLIName() + ` add acme/skills/lint --module`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		slug := strings.TrimSpace(args[0])
		if _, err := github.ParseSlug(slug); err != nil {
			return err
		}

		root, err := projectRoot()
		if err != nil {
			return err
		}
		configPath := root.ConfigPath()

		set, err := mapping.Load(configPath)
		if err != nil {
			return err
		}
		key, err := root.Normalize(addPath)
		if err != nil {
			return err
		}
		set.Add(key, mapping.SourceEntry{Name: slug, Module: addModule})

		s, err := newSyncer(root)
		if err != nil {
			return err
		}
		report, err := s.Run(cmd.Context(), set)
		if err != nil {
			return err
		}
		if err := mapping.Save(configPath, set); err != nil {
			return err
		}

		fmt.Fprintf(out, "Added %s to %s at path '%s'\n", slug, configPath, key)
		if addModule {
			dir, _ := root.Resolve(key)
			for _, m := range report.Modules {
				if m.Dir == module.Dir(dir) {
					fmt.Fprintf(out, "Downloaded %d module file(s) to %s\n", m.Files, m.Dir)
				}
			}
		}
		for _, p := range report.Written {
			fmt.Fprintf(out, "Refreshed %s\n", p)
		}
		return nil
	},
}
