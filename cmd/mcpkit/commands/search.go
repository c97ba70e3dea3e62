package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpkit/internal/agent"
	"github.com/thoreinstein/mcpkit/internal/catalog"
	"github.com/thoreinstein/mcpkit/internal/cli"
	"github.com/thoreinstein/mcpkit/internal/errors"
	"github.com/thoreinstein/mcpkit/internal/selector"
	"github.com/thoreinstein/mcpkit/internal/translate"
	"github.com/thoreinstein/mcpkit/pkg/fileutil"
)

// searchOptions holds the flags of "mcpkit search".
type searchOptions struct {
	query string
	agent string
}

var searchOpts searchOptions

func init() {
	searchCmd.Flags().StringVarP(&searchOpts.agent, "agent", "a", "", "preview fragments as written for this agent")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the MCP server catalog",
	Long: `Search the catalog by name, publisher and description.

Without a query an interactive fuzzy finder is opened; the preview shows the
configuration fragment that "mcpkit add" would write. With a query, or with
--json, the ranked matches are printed instead.`,
	Example: `  # Browse interactively
  mcpkit search

  # Preview fragments in the Copilot layout
  mcpkit search --agent copilot

  # Ranked matches
  mcpkit search git --json

  See Also: mcpkit add, mcpkit list --available`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		opts := searchOpts
		if len(args) == 1 {
			opts.query = args[0]
		}
		return runSearch(cmd.Context(), a, opts)
	},
}

// findEntry opens the interactive finder and returns the chosen index.
// Tests replace it.
var findEntry = func(entries []catalog.Entry, preview func(i int) string) (int, error) {
	return fuzzyfinder.Find(
		entries,
		func(i int) string {
			return entrySearchText(entries[i])
		},
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return preview(i)
		}),
	)
}

// searchMatch is one ranked result in search output.
type searchMatch struct {
	Name        string   `json:"name"`
	Publisher   string   `json:"by,omitempty"`
	Description string   `json:"description,omitempty"`
	IDs         []string `json:"ids"`
	Score       int      `json:"score"`
}

func runSearch(ctx context.Context, a *app, opts searchOptions) error {
	shape := agent.Shape{Kind: agent.KindMCPServers, StripMetadata: true}
	if opts.agent != "" {
		profile, err := lookupAgent(opts.agent)
		if err != nil {
			return err
		}
		shape = profile.Shape
	}

	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return err
	}
	if cat.Len() == 0 {
		a.printer.Warn("The catalog is empty.")
		if a.json {
			return a.emit([]searchMatch{})
		}
		return nil
	}

	if opts.query != "" || a.json {
		return a.printMatches(cat, opts.query)
	}

	idx, err := findEntry(cat.Entries, func(i int) string {
		return previewEntry(cat.Entries[i], shape)
	})
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		return errors.Wrap(err, "interactive search failed")
	}

	e := cat.Entries[idx]
	p := a.printer
	p.Header("%s", e.Name)
	if e.Publisher != "" {
		p.Printf("By:          %s\n", e.Publisher)
	}
	p.Printf("Stars:       %s\n", selector.FormatStars(e.Popularity))
	p.Printf("Servers:     %s\n", strings.Join(e.IDs(), ", "))
	if e.Description != "" {
		p.Printf("Description: %s\n", e.Description)
	}
	p.Println()
	p.Dim("Add it with: mcpkit add %q", e.Name)
	return nil
}

// printMatches prints the entries matching query, best first. An empty query
// matches everything in catalog order.
func (a *app) printMatches(cat *catalog.Catalog, query string) error {
	var matches []searchMatch
	add := func(e catalog.Entry, score int) {
		matches = append(matches, searchMatch{
			Name:        e.Name,
			Publisher:   e.Publisher,
			Description: e.Description,
			IDs:         e.IDs(),
			Score:       score,
		})
	}
	if query == "" {
		for _, e := range cat.Entries {
			add(e, 0)
		}
	} else {
		for _, m := range fuzzy.FindFrom(strings.ToLower(query), entrySource(cat.Entries)) {
			add(cat.Entries[m.Index], m.Score)
		}
	}

	if a.json {
		if matches == nil {
			matches = []searchMatch{}
		}
		return a.emit(matches)
	}
	if len(matches) == 0 {
		a.printer.Warn("No servers match %q.", query)
		return nil
	}
	rows := make([][]string, len(matches))
	for i, m := range matches {
		rows[i] = []string{m.Name, m.Publisher, truncate(m.Description, 50)}
	}
	a.printer.Println(cli.Table([]string{"NAME", "BY", "DESCRIPTION"}, rows))
	return nil
}

// entrySource implements fuzzy.Source over catalog entries.
type entrySource []catalog.Entry

func (s entrySource) String(i int) string {
	return strings.ToLower(entrySearchText(s[i]))
}

func (s entrySource) Len() int {
	return len(s)
}

func entrySearchText(e catalog.Entry) string {
	parts := []string{e.Name}
	if e.Publisher != "" {
		parts = append(parts, "("+e.Publisher+")")
	}
	if e.Description != "" {
		parts = append(parts, e.Description)
	}
	return strings.Join(parts, " ")
}

// previewEntry renders the fragment e would contribute to a document of
// the given shape.
func previewEntry(e catalog.Entry, shape agent.Shape) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", e.Name)
	if e.Publisher != "" {
		fmt.Fprintf(&b, "by %s  %s\n", e.Publisher, selector.FormatStars(e.Popularity))
	}
	if e.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", e.Description)
	}
	data, err := fileutil.MarshalJSON(translate.Fragment([]catalog.Entry{e}, shape))
	if err != nil {
		fmt.Fprintf(&b, "\n(preview unavailable: %v)\n", err)
		return b.String()
	}
	fmt.Fprintf(&b, "\n%s", data)
	return b.String()
}
