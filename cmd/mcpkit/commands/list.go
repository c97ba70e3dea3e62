package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpkit/internal/catalog"
	"github.com/thoreinstein/mcpkit/internal/cli"
	"github.com/thoreinstein/mcpkit/internal/docstore"
	"github.com/thoreinstein/mcpkit/internal/errors"
	"github.com/thoreinstein/mcpkit/internal/redact"
	"github.com/thoreinstein/mcpkit/internal/selector"
)

// listOptions holds the flags of "mcpkit list".
type listOptions struct {
	agent       string
	project     string
	available   bool
	showSecrets bool
}

var listOpts listOptions

func init() {
	listCmd.Flags().StringVarP(&listOpts.agent, "agent", "a", "", "agent whose configuration to list")
	listCmd.Flags().StringVarP(&listOpts.project, "project", "p", "", `project directory ("." for the current one); omit for global`)
	listCmd.Flags().BoolVar(&listOpts.available, "available", false, "list the catalog instead of configured servers")
	listCmd.Flags().BoolVar(&listOpts.showSecrets, "show-secrets", false, "reveal masked secrets in env and header values")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured or available MCP servers",
	Long: `List the MCP servers configured for an agent, or with --available the
servers in the catalog.

Values of environment variables and headers whose names look secret (TOKEN,
KEY, SECRET, PASSWORD, AUTH, CREDENTIAL) are masked unless --show-secrets is
given.`,
	Example: `  # Servers configured for Claude Code globally
  mcpkit list --agent claude

  # Project configuration
  mcpkit list --agent cursor --project .

  # The catalog as JSON
  mcpkit list --available --json

  See Also: mcpkit add, mcpkit remove`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return runList(cmd.Context(), a, listOpts)
	},
}

// serverInfo is one configured server in list output.
type serverInfo struct {
	ID        string         `json:"id"`
	Transport string         `json:"transport"`
	Endpoint  string         `json:"endpoint,omitempty"`
	Config    map[string]any `json:"config"`
}

// listResult is the --json output of list.
type listResult struct {
	Agent   string       `json:"agent"`
	Path    string       `json:"path"`
	Servers []serverInfo `json:"servers"`
}

// catalogInfo is one catalog entry in list --available output.
type catalogInfo struct {
	Name        string   `json:"name"`
	Publisher   string   `json:"by,omitempty"`
	Description string   `json:"description,omitempty"`
	Stars       int      `json:"stargazer_count"`
	IDs         []string `json:"ids"`
}

func runList(ctx context.Context, a *app, opts listOptions) error {
	if opts.available {
		cat, err := a.loadCatalog(ctx)
		if err != nil {
			return err
		}
		return a.listCatalog(cat)
	}

	root := a.projectRoot(opts.project)
	profile, err := a.resolveAgent(ctx, opts.agent, root)
	if errors.Is(err, errNothingChosen) {
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
		return errors.NewUserError(err, "Fix or remove "+path)
	}
	servers, err := doc.Servers(profile.Shape)
	if err != nil {
		return errors.NewUserError(err, "")
	}

	infos := make([]serverInfo, 0, servers.Len())
	for pair := servers.Oldest(); pair != nil; pair = pair.Next() {
		infos = append(infos, describeServer(pair.Key, pair.Value, opts.showSecrets))
	}

	if a.json {
		return a.emit(listResult{Agent: profile.ID, Path: path, Servers: infos})
	}

	p := a.printer
	p.Header("%s: %s", profile.Name, path)
	if len(infos) == 0 {
		p.Dim("  (no MCP servers configured)")
		return nil
	}
	rows := make([][]string, len(infos))
	for i, s := range infos {
		rows[i] = []string{s.ID, s.Transport, truncate(s.Endpoint, 50), envSummary(s.Config)}
	}
	p.Println(cli.Table([]string{"NAME", "TRANSPORT", "COMMAND/URL", "ENV"}, rows))
	return nil
}

func (a *app) listCatalog(cat *catalog.Catalog) error {
	infos := make([]catalogInfo, len(cat.Entries))
	for i, e := range cat.Entries {
		infos[i] = catalogInfo{
			Name:        e.Name,
			Publisher:   e.Publisher,
			Description: e.Description,
			Stars:       e.Popularity,
			IDs:         e.IDs(),
		}
	}
	if a.json {
		return a.emit(infos)
	}

	rows := make([][]string, len(infos))
	for i, c := range infos {
		rows[i] = []string{c.Name, c.Publisher, selector.FormatStars(c.Stars), strings.Join(c.IDs, ", ")}
	}
	a.printer.Header("Catalog (%s, %d servers)", cat.Source, len(infos))
	a.printer.Println(cli.Table([]string{"NAME", "BY", "STARS", "IDS"}, rows))
	return nil
}

// describeServer summarizes one raw server definition. Secrets are masked
// unless reveal is set.
func describeServer(id string, raw json.RawMessage, reveal bool) serverInfo {
	var cfg map[string]any
	if err := json.Unmarshal(raw, &cfg); err != nil || cfg == nil {
		cfg = map[string]any{}
	}
	if !reveal {
		if masked, ok := redact.Tree(cfg).(map[string]any); ok {
			cfg = masked
		}
	}

	info := serverInfo{ID: id, Config: cfg}
	command, _ := cfg["command"].(string)
	url, _ := cfg["url"].(string)
	info.Transport, _ = cfg["type"].(string)
	if info.Transport == "" {
		if command != "" {
			info.Transport = "stdio"
		} else if url != "" {
			info.Transport = "http"
		}
	}

	switch {
	case command != "":
		parts := []string{command}
		if args, ok := cfg["args"].([]any); ok {
			for _, arg := range args {
				parts = append(parts, fmt.Sprint(arg))
			}
		}
		info.Endpoint = strings.Join(parts, " ")
	case url != "":
		info.Endpoint = url
	}
	return info
}

// envSummary lists env and header names with their (possibly masked)
// values, sorted by name.
func envSummary(cfg map[string]any) string {
	var parts []string
	for _, key := range []string{"env", "headers"} {
		m, ok := cfg[key].(map[string]any)
		if !ok {
			continue
		}
		for k, v := range m {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
