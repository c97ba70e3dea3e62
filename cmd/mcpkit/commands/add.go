package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpkit/internal/catalog"
	"github.com/thoreinstein/mcpkit/internal/cli"
	"github.com/thoreinstein/mcpkit/internal/cli/prompt"
	"github.com/thoreinstein/mcpkit/internal/docstore"
	"github.com/thoreinstein/mcpkit/internal/errors"
)

// addOptions holds the flags of "mcpkit add".
type addOptions struct {
	names   []string
	agent   string
	project string
	force   bool
}

var addOpts addOptions

func init() {
	addCmd.Flags().StringVarP(&addOpts.agent, "agent", "a", "", "agent to configure (default: config default_agent)")
	addCmd.Flags().StringVarP(&addOpts.project, "project", "p", "", `project directory ("." for the current one); omit for global`)
	addCmd.Flags().BoolVarP(&addOpts.force, "force", "f", false, "replace an unreadable agent config without asking")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add [name...]",
	Short: "Add MCP servers to an agent configuration",
	Long: `Add servers from the catalog to an agent's MCP configuration.

Names match a catalog entry's display name or one of its server
identifiers, case-insensitively. Without names an interactive picker is
shown. Existing servers with the same identifier are replaced; everything
else in the file is kept.`,
	Example: `  # Pick interactively
  mcpkit add --agent cursor

  # Add by name to the project in the current directory
  mcpkit add fetch git --agent claude --project .

  # Scripted
  mcpkit add fetch --agent gemini --json

  See Also: mcpkit list --available, mcpkit search, mcpkit remove`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		opts := addOpts
		opts.names = args
		return runAdd(cmd.Context(), a, opts)
	},
}

// addResult is the --json output of add.
type addResult struct {
	Agent string   `json:"agent"`
	Path  string   `json:"path"`
	Added []string `json:"added"`
}

func runAdd(ctx context.Context, a *app, opts addOptions) error {
	root := a.projectRoot(opts.project)

	profile, err := a.resolveAgent(ctx, opts.agent, root)
	if errors.Is(err, errNothingChosen) {
		a.printer.Warn("No agent selected.")
		return nil
	}
	if err != nil {
		return err
	}
	path, err := a.resolver.ConfigPath(profile.ID, root)
	if err != nil {
		return err
	}

	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return err
	}

	var entries []catalog.Entry
	if len(opts.names) > 0 {
		entries, err = a.entriesByName(cat, opts.names)
	} else {
		var configured []string
		if doc, derr := docstore.Load(a.fs, path); derr == nil {
			configured, _ = doc.ServerIDs(profile.Shape)
		}
		entries, err = a.pickServers(ctx, cat, profile, configured)
	}
	if errors.Is(err, errNothingChosen) {
		a.printer.Warn("No servers selected.")
		return nil
	}
	if err != nil {
		return err
	}

	added, err := a.mergeEntries(ctx, profile, path, entries, opts.force)
	if err != nil {
		return err
	}
	if a.json {
		return a.emit(addResult{Agent: profile.ID, Path: path, Added: added})
	}
	return nil
}

// entriesByName resolves each name to one catalog entry. Several entries
// sharing a display name are disambiguated with a numbered prompt.
func (a *app) entriesByName(cat *catalog.Catalog, names []string) ([]catalog.Entry, error) {
	var (
		entries []catalog.Entry
		unknown []string
	)
	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		matches := cat.Find(name)
		if len(matches) == 0 {
			unknown = append(unknown, name)
			continue
		}

		idx := 0
		if len(matches) > 1 {
			if a.json {
				return nil, interactionRequired("choosing between servers named "+name,
					"Use a server identifier instead of the display name")
			}
			options := make([]prompt.Option, len(matches))
			for i, m := range matches {
				options[i] = prompt.Option{Label: m.Name, Detail: strings.Join(m.IDs(), ", ")}
			}
			var err error
			if idx, err = a.prompt.Select(name, options); err != nil {
				return nil, errors.NewUserError(err, "")
			}
		}

		e := matches[idx]
		key := e.Name + "\x00" + strings.Join(e.IDs(), ",")
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, e)
	}

	if len(unknown) > 0 {
		err := errors.Wrapf(errors.ErrUnknownServer, "%s", strings.Join(unknown, ", "))
		suggestion := cli.DidYouMean(unknown[0], cat.Names())
		if suggestion == "" {
			suggestion = "Run: mcpkit list --available"
		}
		return nil, errors.NewUserError(err, suggestion)
	}
	if len(entries) == 0 {
		return nil, errNothingChosen
	}
	return entries, nil
}
