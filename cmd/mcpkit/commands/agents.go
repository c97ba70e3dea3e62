package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpkit/internal/agent"
	"github.com/thoreinstein/mcpkit/internal/cli"
)

var agentsProject string

func init() {
	agentsCmd.Flags().StringVarP(&agentsProject, "project", "p", "", "show project-level paths for this directory")
	rootCmd.AddCommand(agentsCmd)
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List supported agents and their configuration files",
	Example: `  mcpkit agents
  mcpkit agents --project . --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return runAgents(a, agentsProject)
	},
}

// agentInfo is one row of agents output.
type agentInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Installed  bool   `json:"installed"`
	Project    bool   `json:"project_support"`
	ConfigPath string `json:"config_path"`
	InstallURL string `json:"install_url,omitempty"`
}

func runAgents(a *app, project string) error {
	root := a.projectRoot(project)
	profiles := agent.All()
	infos := make([]agentInfo, 0, len(profiles))
	for _, p := range profiles {
		path, err := a.resolver.ConfigPath(p.ID, root)
		if err != nil {
			return err
		}
		infos = append(infos, agentInfo{
			ID:         p.ID,
			Name:       p.Name,
			Installed:  p.Installed(),
			Project:    p.SupportsProject(),
			ConfigPath: path,
			InstallURL: p.InstallURL,
		})
	}

	if a.json {
		return a.emit(infos)
	}

	rows := make([][]string, len(infos))
	for i, info := range infos {
		rows[i] = []string{info.ID, info.Name, yesNo(info.Installed), yesNo(info.Project), info.ConfigPath}
	}
	a.printer.Println(cli.Table([]string{"ID", "NAME", "INSTALLED", "PROJECT", "CONFIG PATH"}, rows))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
