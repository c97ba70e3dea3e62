package commands

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpkit/internal/agent"
	"github.com/thoreinstein/mcpkit/internal/cli"
	"github.com/thoreinstein/mcpkit/internal/docstore"
	"github.com/thoreinstein/mcpkit/internal/errors"
	"github.com/thoreinstein/mcpkit/internal/removal"
	"github.com/thoreinstein/mcpkit/internal/selector"
)

// removeOptions holds the flags of "mcpkit remove".
type removeOptions struct {
	names   []string
	agent   string
	project string
	all     bool
	force   bool
}

var removeOpts removeOptions

func init() {
	removeCmd.Flags().StringVarP(&removeOpts.agent, "agent", "a", "", "agent to modify (default: config default_agent)")
	removeCmd.Flags().StringVarP(&removeOpts.project, "project", "p", "", `project directory ("." for the current one); omit for global`)
	removeCmd.Flags().BoolVar(&removeOpts.all, "all", false, "remove every configured server")
	removeCmd.Flags().BoolVar(&removeOpts.force, "force", false, "skip the confirmation prompt")
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:   "remove [name...]",
	Short: "Remove MCP servers from an agent configuration",
	Long: `Remove servers from an agent's MCP configuration.

A name matches a configured identifier exactly, or as its last segment
after a "/" or "-" ("fetch" matches "modelcontextprotocol/fetch"). A name
matching several identifiers is reported with its candidates and nothing is
removed for it. Without names an interactive picker over the configured
servers is shown.

A confirmation prompt is shown before removal unless --force or --json is
given.`,
	Example: `  # Pick interactively
  mcpkit remove --agent cursor

  # Remove by name without confirmation
  mcpkit remove fetch git --agent claude --force

  # Remove everything
  mcpkit remove --all --agent gemini --project .

  See Also: mcpkit list, mcpkit backup restore`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		opts := removeOpts
		opts.names = args
		return runRemove(cmd.Context(), a, opts)
	},
}

// removeResult is the --json output of remove.
type removeResult struct {
	Agent     string              `json:"agent"`
	Path      string              `json:"path"`
	Removed   []string            `json:"removed"`
	Ambiguous map[string][]string `json:"ambiguous,omitempty"`
	NotFound  []string            `json:"not_found,omitempty"`
}

func runRemove(ctx context.Context, a *app, opts removeOptions) error {
	if opts.all && len(opts.names) > 0 {
		return errors.NewUserError(errors.New("--all cannot be combined with names"), "Drop the names or --all")
	}

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

	doc, err := docstore.Load(a.fs, path)
	if err != nil {
		return errors.NewUserError(err, "Fix the file before removing servers from it")
	}
	configured, err := doc.ServerIDs(profile.Shape)
	if err != nil {
		return errors.NewUserError(err, "")
	}
	if len(configured) == 0 {
		a.printer.Warn("No MCP servers configured in %s", path)
		if a.json {
			return a.emit(removeResult{Agent: profile.ID, Path: path, Removed: []string{}})
		}
		return nil
	}

	var res removal.Result
	if opts.all || len(opts.names) > 0 {
		res = removal.Resolve(configured, opts.names, opts.all)
	} else {
		chosen, err := a.pickConfigured(ctx, profile, configured)
		if errors.Is(err, errNothingChosen) {
			a.printer.Warn("No servers selected.")
			return nil
		}
		if err != nil {
			return err
		}
		res = removal.Resolve(configured, chosen, false)
	}

	a.reportUnresolved(res, configured)
	if res.Empty() {
		return unresolvedError(res)
	}

	if !opts.force && !a.json {
		question := fmt.Sprintf("Remove %s from %s?", strings.Join(res.ToRemove, ", "), path)
		ok, err := a.prompt.Confirm(question, false)
		if err != nil {
			return errors.NewUserError(errors.Wrap(err, "confirming removal"), "Pass --force to skip the prompt")
		}
		if !ok {
			a.printer.Println("removal cancelled")
			return nil
		}
	}

	removed, err := docstore.Remove(doc, profile.Shape, res.ToRemove)
	if err != nil {
		return errors.NewUserError(err, "")
	}
	if err := a.writeDocument(ctx, profile, path, doc); err != nil {
		return err
	}
	for _, id := range removed {
		a.printer.Success("Removed %s", id)
	}

	if a.json {
		out := removeResult{Agent: profile.ID, Path: path, Removed: removed, NotFound: res.NotFound}
		if len(res.Ambiguous) > 0 {
			out.Ambiguous = res.Ambiguous
		}
		return a.emit(out)
	}
	return nil
}

// pickConfigured shows the configured identifiers as a multi-select list.
func (a *app) pickConfigured(ctx context.Context, profile agent.Profile, configured []string) ([]string, error) {
	if a.json {
		return nil, interactionRequired("choosing servers to remove", "Pass server names as arguments, or --all")
	}
	items := make([]selector.Item, len(configured))
	for i, id := range configured {
		items[i] = selector.Item{Name: id}
	}
	res, err := a.choose(ctx, items, selector.Options{
		Title:      fmt.Sprintf("Select MCP servers to remove from %s", profile.Name),
		PageSize:   a.pageSize(),
		Multi:      true,
		Searchable: true,
		Noun:       "server",
	})
	if err != nil {
		return nil, err
	}
	switch {
	case res.Status == selector.Aborted:
		return nil, errors.NewUserError(
			errors.Wrap(errors.ErrSelectionAborted, "server selection cancelled"), "")
	case res.Status != selector.Confirmed || len(res.Indices) == 0:
		return nil, errNothingChosen
	}
	ids := make([]string, len(res.Indices))
	for i, idx := range res.Indices {
		ids[i] = configured[idx]
	}
	return ids, nil
}

// reportUnresolved warns about ambiguous and unknown names.
func (a *app) reportUnresolved(res removal.Result, configured []string) {
	for _, name := range slices.Sorted(maps.Keys(res.Ambiguous)) {
		a.printer.Warn("%q matches several servers, skipped: %s", name, strings.Join(res.Ambiguous[name], ", "))
	}
	for _, name := range res.NotFound {
		msg := fmt.Sprintf("%q is not configured", name)
		if hint := cli.DidYouMean(name, configured); hint != "" {
			msg += ". " + hint
		}
		a.printer.Warn("%s", msg)
	}
}

// unresolvedError explains why nothing was removed.
func unresolvedError(res removal.Result) error {
	if len(res.Ambiguous) > 0 {
		return errors.NewUserError(&errors.AmbiguousError{Candidates: res.Ambiguous},
			"Use the full server identifier")
	}
	if len(res.NotFound) > 0 {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrUnknownServer, "%s", strings.Join(res.NotFound, ", ")),
			"Run: mcpkit list")
	}
	return errors.NewUserError(errors.New("nothing to remove"), "")
}
