package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpkit/internal/agent"
	"github.com/thoreinstein/mcpkit/internal/backup"
	"github.com/thoreinstein/mcpkit/internal/cli"
	"github.com/thoreinstein/mcpkit/internal/errors"
)

var (
	backupAgent  string
	restoreForce bool
	pruneKeep    int
)

func init() {
	backupCmd.PersistentFlags().StringVarP(&backupAgent, "agent", "a", "", "agent whose backups to use")
	backupRestoreCmd.Flags().BoolVarP(&restoreForce, "force", "f", false, "skip the confirmation prompt")
	backupPruneCmd.Flags().IntVar(&pruneKeep, "keep", backup.DefaultRetentionCount, "number of backups to keep per agent")

	backupCmd.AddCommand(backupListCmd, backupRestoreCmd, backupPruneCmd)
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage backups of agent configuration files",
	Long: `Manage backups of agent configuration files.

Before mcpkit rewrites an agent's MCP configuration it copies the current
file into a timestamped backup with a SHA-256 manifest. Only the newest
backups are kept (backup.retention, default 5).`,
	Example: `  # All backups
  mcpkit backup list

  # Undo the last change to Cursor's configuration
  mcpkit backup restore --agent cursor

  See Also: mcpkit config set backup.retention 10`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return runBackupList(a, backupAgent)
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [backup-id]",
	Short: "Restore an agent configuration from a backup",
	Long: `Restore an agent's configuration files from a backup.

Without a backup ID the most recent backup is used. The files being
replaced are backed up first, so a restore can itself be undone.`,
	Example: `  mcpkit backup restore --agent claude
  mcpkit backup restore 20260123T100712 --agent claude --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		var id string
		if len(args) == 1 {
			id = args[0]
		}
		return runBackupRestore(a, backupAgent, id, restoreForce)
	},
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old backups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return runBackupPrune(a, backupAgent, pruneKeep)
	},
}

// backupInfo is one backup in --json output.
type backupInfo struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Files       []string  `json:"files"`
	ToolVersion string    `json:"tool_version,omitempty"`
}

// agentBackups groups the backups of one agent in --json output.
type agentBackups struct {
	Agent   string       `json:"agent"`
	Backups []backupInfo `json:"backups"`
}

// backupAgents returns the agents addressed by --agent, or all of them.
func backupAgents(id string) ([]agent.Profile, error) {
	if id == "" {
		return agent.All(), nil
	}
	p, err := lookupAgent(id)
	if err != nil {
		return nil, err
	}
	return []agent.Profile{p}, nil
}

func runBackupList(a *app, agentID string) error {
	profiles, err := backupAgents(agentID)
	if err != nil {
		return err
	}

	var groups []agentBackups
	for _, p := range profiles {
		manifests, err := a.store.List(p.ID)
		if err != nil && !errors.Is(err, backup.ErrNoBackupsFound) {
			return errors.Wrapf(err, "listing backups for %s", p.ID)
		}
		if len(manifests) == 0 && agentID == "" {
			continue
		}
		group := agentBackups{Agent: p.ID, Backups: make([]backupInfo, len(manifests))}
		for i, m := range manifests {
			files := make([]string, len(m.Files))
			for j, f := range m.Files {
				files[j] = f.OriginalPath
			}
			group.Backups[i] = backupInfo{ID: m.ID, CreatedAt: m.CreatedAt, Files: files, ToolVersion: m.ToolVersion}
		}
		groups = append(groups, group)
	}

	if a.json {
		if groups == nil {
			groups = []agentBackups{}
		}
		return a.emit(groups)
	}

	p := a.printer
	var total int
	for i, g := range groups {
		if i > 0 {
			p.Println()
		}
		profile, _ := agent.Lookup(g.Agent)
		p.Header("%s", profile.Name)
		if len(g.Backups) == 0 {
			p.Dim("  (no backups available)")
			continue
		}
		rows := make([][]string, len(g.Backups))
		for j, b := range g.Backups {
			rows[j] = []string{b.ID, b.CreatedAt.Local().Format("2006-01-02 15:04:05"), fmt.Sprint(len(b.Files)), b.ToolVersion}
		}
		total += len(g.Backups)
		p.Println(cli.Table([]string{"ID", "CREATED", "FILES", "VERSION"}, rows))
	}
	if total == 0 && agentID == "" {
		p.Println("No backups available.")
		p.Dim("Backups are created automatically before mcpkit changes an agent configuration.")
	}
	return nil
}

func runBackupRestore(a *app, agentID, backupID string, force bool) error {
	if agentID == "" {
		return errors.NewUserError(errors.New("--agent is required for restore"), "Run: mcpkit backup list")
	}
	profile, err := lookupAgent(agentID)
	if err != nil {
		return err
	}

	var manifest *backup.Manifest
	if backupID == "" {
		manifest, err = a.store.Latest(profile.ID)
	} else {
		manifest, err = a.store.Get(profile.ID, backupID)
	}
	if errors.Is(err, backup.ErrNoBackupsFound) {
		return errors.NewUserError(errors.Wrapf(err, "%s", profile.Name), "Run: mcpkit backup list")
	}
	if err != nil {
		return err
	}
	if backupID == "" {
		a.printer.Dim("Using most recent backup: %s", manifest.ID)
	}

	if !force && !a.json {
		question := fmt.Sprintf("Restore %d file(s) of %s from backup %s?", len(manifest.Files), profile.Name, manifest.ID)
		ok, err := a.prompt.Confirm(question, false)
		if err != nil {
			return errors.NewUserError(errors.Wrap(err, "confirming restore"), "Pass --force to skip the prompt")
		}
		if !ok {
			a.printer.Println("restore cancelled")
			return nil
		}
	}

	restored, err := a.store.Restore(profile.ID, manifest.ID)
	if err != nil {
		return errors.NewSystemError(errors.Wrap(err, "restoring backup"), "")
	}
	for _, f := range restored.Files {
		a.printer.Bullet("%s", f.OriginalPath)
	}
	a.printer.Success("Restored %s configuration from backup %s", profile.Name, restored.ID)

	if a.json {
		files := make([]string, len(restored.Files))
		for i, f := range restored.Files {
			files[i] = f.OriginalPath
		}
		return a.emit(backupInfo{ID: restored.ID, CreatedAt: restored.CreatedAt, Files: files, ToolVersion: restored.ToolVersion})
	}
	return nil
}

func runBackupPrune(a *app, agentID string, keep int) error {
	if keep < 0 {
		return errors.NewUserError(errors.New("--keep must be non-negative"), "")
	}
	profiles, err := backupAgents(agentID)
	if err != nil {
		return err
	}
	for _, p := range profiles {
		if err := a.store.Prune(p.ID, keep); err != nil {
			return errors.Wrapf(err, "pruning backups for %s", p.ID)
		}
	}
	a.printer.Success("Kept the %d most recent backups per agent", keep)
	return nil
}
