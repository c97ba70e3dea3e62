package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpkit/internal/agent"
	"github.com/thoreinstein/mcpkit/internal/catalog"
	"github.com/thoreinstein/mcpkit/internal/cli"
	"github.com/thoreinstein/mcpkit/internal/errors"
)

// initOptions holds the flags of "mcpkit init".
type initOptions struct {
	project string
	agent   string
	servers []string
	force   bool
}

var initOpts initOptions

func init() {
	initCmd.Flags().StringVarP(&initOpts.agent, "agent", "a", "", "agent to configure (see: mcpkit agents)")
	initCmd.Flags().StringSliceVarP(&initOpts.servers, "server", "s", nil, "server to add without the picker (repeatable)")
	initCmd.Flags().BoolVarP(&initOpts.force, "force", "f", false, "replace an unreadable agent config without asking")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [project | .]",
	Short: "Configure MCP servers for an agent, globally or in a project",
	Long: `Download the server catalog, choose an agent and a set of servers, and
merge them into the agent's MCP configuration.

Without an argument the agent's global configuration is written. With a
project name the project directory is created if needed and the agent's
project-level file is written there; "." uses the current directory.
Agents without project-level configuration always use their global file.`,
	Example: `  # Global configuration, choose everything interactively
  mcpkit init

  # Configure the current directory for Claude Code
  mcpkit init . --agent claude

  # Non-interactive
  mcpkit init my-app --agent cursor --server fetch --server git --json

  See Also: mcpkit add, mcpkit agents`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		opts := initOpts
		if len(args) == 1 {
			opts.project = args[0]
		}
		return runInit(cmd.Context(), a, opts)
	},
}

// initResult is the --json output of init.
type initResult struct {
	Agent   string   `json:"agent"`
	Path    string   `json:"path"`
	Global  bool     `json:"global"`
	Added   []string `json:"added"`
	Catalog string   `json:"catalog_source"`
}

func runInit(ctx context.Context, a *app, opts initOptions) error {
	p := a.printer
	root := a.projectRoot(opts.project)
	global := root == ""

	p.Println(cli.Banner())
	if global {
		p.Println(cli.Panel("Setup Mode", cli.Field{Label: "Mode", Value: "Global MCP Configuration"}))
	} else {
		p.Println(cli.Panel("Project Setup",
			cli.Field{Label: "Project", Value: opts.project},
			cli.Field{Label: "Working Path", Value: a.workDir},
			cli.Field{Label: "Target Path", Value: root},
		))
		exists, err := dirExists(a, root)
		if err != nil {
			return err
		}
		if !exists {
			if err := a.fs.MkdirAll(root, 0o755); err != nil {
				return errors.NewSystemError(errors.Wrap(err, "creating project directory"), "")
			}
			p.Success("Created project directory: %s", root)
		}
	}

	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return err
	}
	p.Success("Downloaded %d MCP servers", cat.Len())
	if cat.Source != catalog.SourceRelease {
		p.Dim("Using %s catalog", cat.Source)
	}

	profile, err := a.resolveAgent(ctx, opts.agent, root)
	if errors.Is(err, errNothingChosen) {
		p.Warn("No agent selected. Exiting.")
		return nil
	}
	if err != nil {
		return err
	}
	p.Header("\nSelected Agent: %s", profile.Name)
	printAgentNotes(p, profile, global)

	path, err := a.resolver.ConfigPath(profile.ID, root)
	if err != nil {
		return err
	}

	var entries []catalog.Entry
	if len(opts.servers) > 0 {
		entries, err = a.entriesByName(cat, opts.servers)
	} else {
		entries, err = a.pickServers(ctx, cat, profile, nil)
	}
	if errors.Is(err, errNothingChosen) {
		p.Warn("No servers selected. Exiting.")
		return nil
	}
	if err != nil {
		return err
	}
	p.Header("\nSelected %d MCP servers", len(entries))

	added, err := a.mergeEntries(ctx, profile, path, entries, opts.force)
	if err != nil {
		return err
	}

	if a.json {
		return a.emit(initResult{
			Agent:   profile.ID,
			Path:    path,
			Global:  global || !profile.SupportsProject(),
			Added:   added,
			Catalog: string(cat.Source),
		})
	}
	printNextSteps(p, profile, path, root)
	return nil
}

// printAgentNotes explains where the configuration of profile ends up.
func printAgentNotes(p *cli.Printer, profile agent.Profile, global bool) {
	switch {
	case !global && !profile.SupportsProject():
		p.Warn("Note: %s does not use project-level MCP configuration.", profile.Name)
		p.Warn("   Configuration will be saved to global %s settings instead.", profile.Name)
	case profile.ID == agent.Claude && global:
		p.Printf("ℹ Claude global configuration will be saved to ~/.claude.json\n")
	case profile.ID == agent.Claude:
		p.Printf("ℹ Claude project configuration will be saved to .mcp.json\n")
	case profile.ID == agent.Gemini && global:
		p.Printf("ℹ Gemini global configuration will be saved to ~/.gemini/settings.json\n")
	case profile.ID == agent.Gemini:
		p.Printf("ℹ Gemini project configuration will be saved to .gemini/settings.json\n")
	default:
		return
	}
	p.Println()
}

// printNextSteps prints the closing instructions for profile.
func printNextSteps(p *cli.Printer, profile agent.Profile, path, root string) {
	projectMode := root != "" && profile.SupportsProject()

	if projectMode {
		p.Success("MCP project initialization completed successfully!")
		p.Dim("Project configuration saved to: %s", path)
	} else {
		p.Success("MCP global configuration completed successfully!")
		p.Dim("Global configuration saved to: %s", path)
	}

	steps := nextSteps(profile, path, root, projectMode)
	p.Header("\nNext steps:")
	for i, s := range steps {
		p.Printf("%d. %s\n", i+1, s)
	}
}

func nextSteps(profile agent.Profile, path, root string, projectMode bool) []string {
	if !projectMode {
		steps := []string{
			"Open " + profile.Name,
			"The MCP servers will be loaded from global settings",
		}
		switch profile.ID {
		case agent.Copilot:
			steps = append(steps, "Make sure you have the GitHub Copilot extension installed in VS Code")
		case agent.Continue:
			steps = append(steps, "Make sure you have the Continue extension installed in your IDE")
		case agent.Claude, agent.Gemini, agent.CopilotCLI:
			steps = append(steps, fmt.Sprintf("Use '%s' command to start a new conversation", profile.Binary))
		default:
			steps = append(steps, fmt.Sprintf("The configuration is available across all %s projects", profile.Name))
		}
		return steps
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	steps := []string{
		"Open your project in " + profile.Name,
		"The MCP servers will be automatically loaded from: " + rel,
	}
	switch profile.ID {
	case agent.Copilot:
		steps = append(steps, "Make sure you have the GitHub Copilot extension installed in VS Code")
	case agent.Continue:
		steps = append(steps, "Make sure you have the Continue extension installed in your IDE")
	case agent.Claude, agent.Gemini:
		steps = append(steps, fmt.Sprintf("Use '%s' command in this project directory", profile.Binary))
	default:
		steps = append(steps, fmt.Sprintf("Open the project in %s", profile.Name))
	}
	return steps
}

func dirExists(a *app, path string) (bool, error) {
	info, err := a.fs.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return true, nil
	case err == nil:
		return false, errors.NewUserError(errors.Newf("%s exists and is not a directory", path), "")
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, errors.Wrapf(err, "stat %s", path)
	}
}
