package cli

import (
	"fmt"
	"os"

	"github.com/agmd-labs/agmd/internal/compose"
	"github.com/agmd-labs/agmd/internal/config"
	"github.com/agmd-labs/agmd/internal/github"
	"github.com/agmd-labs/agmd/internal/module"
	"github.com/agmd-labs/agmd/internal/project"
	"github.com/agmd-labs/agmd/internal/syncer"
)

// projectRoot locates the project containing the working directory.
func projectRoot() (project.Root, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return project.Root{}, fmt.Errorf("getting current directory: %w", err)
	}
	return project.FindRoot(cwd)
}

// newGitHubClient builds a client from the user settings. Every sync run
// gets its own client so nothing fetched is reused across runs.
func newGitHubClient() (*github.Client, error) {
	s := config.Current()
	return github.NewClient(
		github.WithAPIURL(s.APIURL),
		github.WithRawURL(s.RawURL),
		github.WithLogger(logger),
	)
}

func newSyncer(root project.Root) (*syncer.Syncer, error) {
	client, err := newGitHubClient()
	if err != nil {
		return nil, err
	}
	composer := compose.New(client,
		compose.WithConcurrency(config.Current().Concurrency),
		compose.WithLogger(logger),
	)
	materializer := module.New(client, module.WithLogger(logger))
	return syncer.New(root, composer, materializer, syncer.WithLogger(logger)), nil
}
