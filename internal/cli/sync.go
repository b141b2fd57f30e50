package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/agmd-labs/agmd/internal/branding"
	"github.com/agmd-labs/agmd/internal/compose"
	"github.com/agmd-labs/agmd/internal/mapping"
	"github.com/agmd-labs/agmd/internal/project"
	"github.com/agmd-labs/agmd/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncWatch bool

func init() {
	syncCmd.Flags().BoolVarP(&syncWatch, "watch", "w", false, "Keep running and resync when "+branding.ConfigFile()+" or an AGENTS.local.md changes")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh AGENTS.md files from " + branding.ConfigFile(),
	Long: `Regenerate every AGENTS.md configured in ` + branding.ConfigFile() + ` and rebuild module
directories. Nothing in the configuration is changed.

With --watch the sync reruns whenever ` + branding.ConfigFile() + ` or an AGENTS.local.md in a
configured path changes. Errors are reported and watching continues.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		root, err := projectRoot()
		if err != nil {
			return err
		}

		if !syncWatch {
			return runSync(cmd.Context(), out, root)
		}
		return watchSync(cmd.Context(), out, root)
	},
}

func runSync(ctx context.Context, out io.Writer, root project.Root) error {
	set, err := mapping.Load(root.ConfigPath())
	if err != nil {
		return err
	}

	s, err := newSyncer(root)
	if err != nil {
		return err
	}
	report, err := s.Run(ctx, set)
	if err != nil {
		return err
	}

	if len(report.Written) == 0 {
		fmt.Fprintf(out, "No configured paths found in %s.\n", branding.ConfigFile())
		return nil
	}
	for _, p := range report.Written {
		fmt.Fprintf(out, "Refreshed %s\n", p)
	}
	for _, m := range report.Modules {
		fmt.Fprintf(out, "Rebuilt %s (%d file(s))\n", m.Dir, m.Files)
	}
	return nil
}

func watchSync(ctx context.Context, out io.Writer, root project.Root) error {
	w, err := watch.New([]string{branding.ConfigFile(), compose.LocalFile}, watch.WithLogger(logger))
	if err != nil {
		return err
	}
	defer w.Close()

	resync := func(ctx context.Context) {
		if err := runSync(ctx, out, root); err != nil {
			fmt.Fprintln(out, err)
		}
		w.SetDirs(watchDirs(root))
	}

	resync(ctx)
	fmt.Fprintln(out, "Watching for changes (Ctrl-C to stop)")
	return w.Run(ctx, resync)
}

// watchDirs returns the root plus every configured path that resolves.
func watchDirs(root project.Root) []string {
	dirs := []string{root.Dir()}
	set, err := mapping.Load(root.ConfigPath())
	if err != nil {
		return dirs
	}
	for _, m := range set.Mappings() {
		dir, err := root.Resolve(m.Path)
		if err != nil {
			logger.Debug("not watching path", zap.String("path", m.Path), zap.Error(err))
			continue
		}
		dirs = append(dirs, dir)
	}
	return dirs
}
