package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	build "github.com/thoreinstein/mcpkit/cmd"
	"github.com/thoreinstein/mcpkit/internal/agent"
	"github.com/thoreinstein/mcpkit/internal/backup"
	"github.com/thoreinstein/mcpkit/internal/catalog"
	"github.com/thoreinstein/mcpkit/internal/cli"
	"github.com/thoreinstein/mcpkit/internal/cli/prompt"
	"github.com/thoreinstein/mcpkit/internal/config"
	"github.com/thoreinstein/mcpkit/internal/errors"
	"github.com/thoreinstein/mcpkit/internal/logging"
	"github.com/thoreinstein/mcpkit/internal/paths"
	"github.com/thoreinstein/mcpkit/internal/selector"
)

// chooser runs one selection list. The default runs the bubbletea program;
// tests script the outcome.
type chooser func(ctx context.Context, items []selector.Item, opts selector.Options) (selector.Result, error)

// app holds the collaborators of one command invocation.
type app struct {
	fs       afero.Fs
	out      io.Writer
	json     bool
	workDir  string
	cfg      *config.Config
	resolver *agent.Resolver
	printer  *cli.Printer
	prompt   *prompt.Prompter
	choose   chooser
	store    *backup.Manager
	backups  *backup.Session
	cacheDir string

	// fetch loads the catalog; see newFetcher.
	fetch func(ctx context.Context) (*catalog.Catalog, error)
}

// newApp builds the production app for cmd.
func newApp(cmd *cobra.Command) (*app, error) {
	resolver, err := agent.NewResolver()
	if err != nil {
		return nil, errors.NewSystemError(err, "Set $HOME to your home directory")
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "resolving working directory")
	}

	fsys := afero.NewOsFs()
	cfg := config.Current()
	in, out := cmd.InOrStdin(), cmd.OutOrStdout()

	a := &app{
		fs:       fsys,
		out:      out,
		json:     jsonOutput,
		workDir:  wd,
		cfg:      cfg,
		resolver: resolver,
		printer:  newPrinter(humanWriter(out, jsonOutput)),
		prompt:   prompt.NewWithIO(in, out),
		choose: func(ctx context.Context, items []selector.Item, opts selector.Options) (selector.Result, error) {
			return selector.Run(ctx, items, opts, selector.IO{In: in, Out: out})
		},
	}
	a.cacheDir = paths.CatalogCacheDir()
	a.store = newBackupManager(fsys, cfg)
	a.backups = newBackupSession(a.store, cfg)
	a.fetch = func(ctx context.Context) (*catalog.Catalog, error) {
		return newFetcher(ctx, fsys, cfg, a.cacheDir).Fetch(ctx)
	}
	return a, nil
}

// newFetcher builds the catalog fetcher from config and global flags.
func newFetcher(ctx context.Context, fsys afero.Fs, cfg *config.Config, cacheDir string) *catalog.Fetcher {
	version := cfg.Catalog.Version
	if catalogVersion != "" {
		version = catalogVersion
	}
	return catalog.NewFetcher(ctx, fsys,
		catalog.WithRepo(cfg.Catalog.Repo),
		catalog.WithVersion(version),
		catalog.WithToken(catalog.Token(githubToken)),
		catalog.WithCacheDir(cacheDir),
		catalog.WithLocalFile(paths.ExpandHome(cfg.Catalog.File, paths.Home())),
		catalog.WithLogger(logging.FromContext(ctx)),
	)
}

// newBackupSession returns nil when backups are disabled.
func newBackupSession(mgr *backup.Manager, cfg *config.Config) *backup.Session {
	if cfg.Backup.Disabled {
		return nil
	}
	return backup.NewSession(mgr)
}

func newBackupManager(fsys afero.Fs, cfg *config.Config) *backup.Manager {
	return backup.NewManager(fsys, paths.BackupDir(),
		backup.WithRetentionCount(cfg.Backup.Retention),
		backup.WithToolVersion(build.Version),
	)
}

func newPrinter(w io.Writer) *cli.Printer {
	cli.InitColorProfile(w)
	return cli.NewPrinter(w)
}

func bannerFor(w io.Writer) string {
	cli.InitColorProfile(w)
	return cli.Banner()
}

// humanWriter drops human-oriented output in --json mode.
func humanWriter(w io.Writer, jsonMode bool) io.Writer {
	if jsonMode {
		return io.Discard
	}
	return w
}

// emit writes v as one JSON line.
func (a *app) emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

// interactionRequired is returned in --json mode wherever a prompt or
// picker would be shown.
func interactionRequired(what, suggestion string) error {
	return errors.NewUserError(errors.Wrap(errors.ErrInteractionRequired, what), suggestion)
}

// projectRoot resolves a --project value: "" is global, "." the working
// directory, relative paths are taken from the working directory.
func (a *app) projectRoot(dir string) string {
	switch {
	case dir == "":
		return ""
	case dir == ".":
		return a.workDir
	case filepath.IsAbs(dir):
		return filepath.Clean(dir)
	default:
		return filepath.Join(a.workDir, dir)
	}
}

// pageSize returns the configured selector page size.
func (a *app) pageSize() int {
	if a.cfg != nil && a.cfg.Selector.PageSize > 0 {
		return a.cfg.Selector.PageSize
	}
	return selector.DefaultPageSize
}

// loadCatalog fetches the catalog and reports where it came from.
func (a *app) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	cat, err := a.fetch(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading catalog")
	}
	logging.FromContext(ctx).Debug("catalog loaded", "source", cat.Source, "tag", cat.Tag, "entries", cat.Len())
	return cat, nil
}
