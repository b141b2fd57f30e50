package cli

import (
	"encoding/json"
	"fmt"

	"github.com/agmd-labs/agmd/internal/branding"
	"github.com/agmd-labs/agmd/internal/config"
	"github.com/agmd-labs/agmd/internal/updater"
	"github.com/spf13/cobra"
)

var (
	versionShort bool
	versionJSON  bool
	versionCheck bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print version number only")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print version info as JSON")
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "Check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		var status *updater.Status
		if versionCheck {
			client, err := newGitHubClient()
			if err != nil {
				return err
			}
			u := updater.New(buildVersion, client.API().Repositories, updater.WithCacheDir(config.Dir()))
			status, err = u.Check(cmd.Context(), false)
			if err != nil {
				return fmt.Errorf("checking for updates: %w", err)
			}
		}

		if versionJSON {
			info := map[string]any{
				"version": buildVersion,
				"commit":  buildCommit,
				"date":    buildDate,
			}
			if status != nil {
				info["latest"] = status.Latest.Version
				info["update_available"] = status.UpdateAvailable
			}
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling version info: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if versionShort {
			fmt.Fprintln(out, buildVersion)
		} else {
			fmt.Fprintf(out, "%s version %s (commit: %s, built: %s)\n", branding.CLIName(), buildVersion, buildCommit, buildDate)
		}

		if status != nil {
			if status.UpdateAvailable {
				fmt.Fprintf(out, "Update available: %s -> %s\n", buildVersion, status.Latest.Version)
				if status.Latest.HTMLURL != "" {
					fmt.Fprintf(out, "    %s\n", status.Latest.HTMLURL)
				}
			} else {
				fmt.Fprintf(out, "%s is up to date\n", branding.CLIName())
			}
		}
		return nil
	},
}
