// Package compose assembles a generated AGENTS.md document from remote
// AGENTS.md files and a local override file.
package compose

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/agmd-labs/agmd/internal/branding"
	"github.com/agmd-labs/agmd/internal/mapping"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// AgentsFile is the generated document name.
	AgentsFile = "AGENTS.md"

	// LocalFile is the locally authored override, sibling of AgentsFile.
	LocalFile = "AGENTS.local.md"

	// DefaultConcurrency bounds parallel remote fetches for one path.
	DefaultConcurrency = 4
)

// Fetcher retrieves the AGENTS.md text for a source name.
type Fetcher interface {
	FetchAgents(ctx context.Context, name string) (string, error)
}

// Section is one remote AGENTS.md, identified by its source name.
type Section struct {
	Name    string
	Content string
}

// Document holds the pieces of a composed AGENTS.md in output order.
type Document struct {
	// Sections are the remote documents in configuration order.
	Sections []Section

	// Local is the content of the local override file, if any.
	Local string
}

// Composer fetches and renders documents.
type Composer struct {
	fetcher     Fetcher
	concurrency int
	logger      *zap.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithConcurrency sets the maximum number of concurrent fetches. Values
// below one are ignored.
func WithConcurrency(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Composer that reads remote documents through fetcher.
func New(fetcher Fetcher, opts ...Option) *Composer {
	c := &Composer{
		fetcher:     fetcher,
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose fetches every entry's AGENTS.md and reads the override at
// localPath, then renders them. Fetches run in parallel but sections keep
// the order of entries. The first error aborts the composition.
func (c *Composer) Compose(ctx context.Context, entries []mapping.SourceEntry, localPath string) (string, error) {
	doc, err := c.Collect(ctx, entries, localPath)
	if err != nil {
		return "", err
	}
	return Render(doc), nil
}

// Collect gathers the unrendered document.
func (c *Composer) Collect(ctx context.Context, entries []mapping.SourceEntry, localPath string) (*Document, error) {
	sections := make([]Section, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, entry := range entries {
		g.Go(func() error {
			text, err := c.fetcher.FetchAgents(gctx, entry.Name)
			if err != nil {
				return err
			}
			c.logger.Debug("fetched AGENTS.md", zap.String("source", entry.Name), zap.Int("bytes", len(text)))
			sections[i] = Section{Name: entry.Name, Content: text}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	local, err := readLocal(localPath)
	if err != nil {
		return nil, err
	}

	return &Document{Sections: sections, Local: local}, nil
}

// Render formats a Document. Blank sections are dropped, the rest are
// separated by a blank line and the result ends with a single newline. A
// document with nothing to show renders as the empty string.
func Render(doc *Document) string {
	var parts []string
	for _, s := range doc.Sections {
		if text := strings.TrimSpace(s.Content); text != "" {
			parts = append(parts, StartHeader(s.Name)+"\n\n"+text)
		}
	}
	if text := strings.TrimSpace(doc.Local); text != "" {
		parts = append(parts, LocalHeader()+"\n\n"+text)
	}

	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// StartHeader is the delimiter line that opens a remote section.
func StartHeader(name string) string {
	return fmt.Sprintf("# %s start %s.", branding.CLIName(), name)
}

// LocalHeader is the delimiter line that opens the local override section.
func LocalHeader() string {
	return fmt.Sprintf("# %s local", branding.CLIName())
}

// Preamble is the fixed block that opens the project root's AGENTS.md.
func Preamble() string {
	name := branding.CLIName()
	return fmt.Sprintf("This project's %[2]s files are managed by %[1]s, which may pull in %[2]s files from other sources.\n"+
		"These external %[2]s files will be delimited by:\n"+
		"%[3]s\n"+
		"Any files referenced by these modules will be located relative to the %[2]s file at %[4]s/<module_name>.\n",
		name, AgentsFile, StartHeader("<module_name>"), branding.ModuleDir())
}

// WithPreamble prepends the root preamble to a rendered document. An empty
// document yields the preamble alone.
func WithPreamble(doc string) string {
	if doc == "" {
		return Preamble()
	}
	return Preamble() + "\n" + doc
}

func readLocal(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", p, err)
	}
	return string(data), nil
}
