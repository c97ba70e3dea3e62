package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpkit/internal/agent"
	"github.com/thoreinstein/mcpkit/internal/backup"
	"github.com/thoreinstein/mcpkit/internal/catalog"
	"github.com/thoreinstein/mcpkit/internal/config"
	"github.com/thoreinstein/mcpkit/internal/docstore"
	"github.com/thoreinstein/mcpkit/pkg/fileutil"
)

// Check categories.
const (
	CategoryConfig  = "config"
	CategoryAgent   = "agent"
	CategoryBackup  = "backup"
	CategoryCatalog = "catalog"
)

// ConfigCheck validates the mcpkit config file independently of the
// settings already loaded, so a broken file is reported instead of
// aborting the run.
type ConfigCheck struct {
	FS   afero.Fs
	Path string
}

func (c *ConfigCheck) Name() string     { return "config-file" }
func (c *ConfigCheck) Category() string { return CategoryConfig }

func (c *ConfigCheck) Run(context.Context) *CheckResult {
	details := map[string]any{"path": c.Path}

	exists, err := afero.Exists(c.FS, c.Path)
	if err != nil {
		return &CheckResult{Status: SeverityError, Message: fmt.Sprintf("cannot stat config: %v", err), Details: details}
	}
	if !exists {
		return &CheckResult{Status: SeverityInfo, Message: "no config file, using defaults", Details: details}
	}

	data, err := fileutil.ReadFileWithLimit(c.FS, c.Path)
	if err != nil {
		return &CheckResult{Status: SeverityError, Message: fmt.Sprintf("cannot read config: %v", err), Details: details}
	}

	cfg := config.Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: fmt.Sprintf("invalid YAML: %v", err),
			Details: details,
			FixHint: "Run 'mcpkit config edit' to fix the file",
		}
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		details["errors"] = msgs
		return &CheckResult{
			Status:  SeverityError,
			Message: fmt.Sprintf("%d invalid setting(s): %s", len(errs), strings.Join(msgs, "; ")),
			Details: details,
			FixHint: "Use 'mcpkit config set <key> <value>' to correct them",
		}
	}

	return &CheckResult{Status: SeverityPass, Message: "config is valid", Details: details}
}

// AgentCheck inspects one agent's MCP document: it must parse, its server
// mapping must be an object, and it should not be writable by others.
type AgentCheck struct {
	FS      afero.Fs
	Profile agent.Profile
	Path    string
}

func (c *AgentCheck) Name() string     { return "agent-" + c.Profile.ID }
func (c *AgentCheck) Category() string { return CategoryAgent }

func (c *AgentCheck) Run(context.Context) *CheckResult {
	details := map[string]any{"path": c.Path}

	info, err := c.FS.Stat(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return &CheckResult{
				Status:  SeverityInfo,
				Message: fmt.Sprintf("%s has no MCP config yet", c.Profile.Name),
				Details: details,
			}
		}
		return &CheckResult{Status: SeverityError, Message: fmt.Sprintf("cannot stat %s: %v", c.Path, err), Details: details}
	}
	if info.IsDir() {
		return &CheckResult{Status: SeverityError, Message: fmt.Sprintf("%s is a directory", c.Path), Details: details}
	}

	restoreHint := fmt.Sprintf("Fix the file by hand or run 'mcpkit backup restore --agent %s'", c.Profile.ID)

	doc, err := docstore.Load(c.FS, c.Path)
	if err != nil {
		return &CheckResult{Status: SeverityError, Message: err.Error(), Details: details, FixHint: restoreHint}
	}
	ids, err := doc.ServerIDs(c.Profile.Shape)
	if err != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: err.Error(),
			Details: details,
			FixHint: restoreHint,
		}
	}
	details["servers"] = len(ids)

	if info.Mode().Perm()&0o002 != 0 {
		return &CheckResult{
			Status:  SeverityWarning,
			Message: fmt.Sprintf("%s is world-writable (%04o)", c.Path, info.Mode().Perm()),
			Details: details,
			FixHint: fmt.Sprintf("chmod o-w %s", c.Path),
		}
	}

	return &CheckResult{
		Status:  SeverityPass,
		Message: fmt.Sprintf("%d server(s) configured", len(ids)),
		Details: details,
	}
}

// BackupCheck reports where backups live and how many exist.
type BackupCheck struct {
	FS    afero.Fs
	Store *backup.Manager
}

func (c *BackupCheck) Name() string     { return "backups" }
func (c *BackupCheck) Category() string { return CategoryBackup }

func (c *BackupCheck) Run(context.Context) *CheckResult {
	root := c.Store.Root()
	details := map[string]any{"path": root}

	info, err := c.FS.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return &CheckResult{Status: SeverityInfo, Message: "no backups taken yet", Details: details}
		}
		return &CheckResult{Status: SeverityError, Message: fmt.Sprintf("cannot stat backup directory: %v", err), Details: details}
	}
	if !info.IsDir() {
		return &CheckResult{
			Status:  SeverityError,
			Message: fmt.Sprintf("%s is not a directory", root),
			Details: details,
			FixHint: "Move the file out of the way so backups can be written",
		}
	}

	total := 0
	for _, id := range agent.IDs() {
		manifests, err := c.Store.List(id)
		if err != nil {
			continue
		}
		total += len(manifests)
	}
	details["count"] = total
	return &CheckResult{Status: SeverityPass, Message: fmt.Sprintf("%d backup(s) stored", total), Details: details}
}

// CatalogCacheCheck decodes every cached catalog download. An unreadable
// cache is only a warning: the next fetch replaces it.
type CatalogCacheCheck struct {
	FS  afero.Fs
	Dir string
}

func (c *CatalogCacheCheck) Name() string     { return "catalog-cache" }
func (c *CatalogCacheCheck) Category() string { return CategoryCatalog }

func (c *CatalogCacheCheck) Run(context.Context) *CheckResult {
	details := map[string]any{"path": c.Dir}

	files, err := afero.Glob(c.FS, filepath.Join(c.Dir, "catalog-*.json"))
	if err != nil || len(files) == 0 {
		return &CheckResult{Status: SeverityInfo, Message: "no cached catalog, the next run downloads one", Details: details}
	}

	var broken []string
	entries := 0
	for _, f := range files {
		data, err := fileutil.ReadFileWithLimit(c.FS, f)
		if err != nil {
			broken = append(broken, filepath.Base(f))
			continue
		}
		decoded, err := catalog.Decode(data, catalog.FormatJSON)
		if err != nil {
			broken = append(broken, filepath.Base(f))
			continue
		}
		kept, _ := catalog.Sanitize(decoded)
		entries += len(kept)
	}
	details["files"] = len(files)
	details["entries"] = entries

	if len(broken) > 0 {
		details["broken"] = broken
		return &CheckResult{
			Status:  SeverityWarning,
			Message: fmt.Sprintf("unreadable cached catalog(s): %s", strings.Join(broken, ", ")),
			Details: details,
			FixHint: fmt.Sprintf("Delete them from %s; they are refetched on demand", c.Dir),
		}
	}
	return &CheckResult{
		Status:  SeverityPass,
		Message: fmt.Sprintf("%d cached catalog(s), %d entries", len(files), entries),
		Details: details,
	}
}

// Paths resolves agent document locations for AgentChecks.
type Paths interface {
	ConfigPath(agentID, projectRoot string) (string, error)
}

// AgentChecks returns one AgentCheck per known agent. With a project root,
// agents that support project documents are checked there instead.
func AgentChecks(fsys afero.Fs, resolver Paths, projectRoot string) []Check {
	var checks []Check
	for _, p := range agent.All() {
		path, err := resolver.ConfigPath(p.ID, projectRoot)
		if err != nil {
			continue
		}
		checks = append(checks, &AgentCheck{FS: fsys, Profile: p, Path: path})
	}
	return checks
}
