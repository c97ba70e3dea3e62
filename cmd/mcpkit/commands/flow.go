package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thoreinstein/mcpkit/internal/agent"
	"github.com/thoreinstein/mcpkit/internal/catalog"
	"github.com/thoreinstein/mcpkit/internal/cli"
	"github.com/thoreinstein/mcpkit/internal/docstore"
	"github.com/thoreinstein/mcpkit/internal/errors"
	"github.com/thoreinstein/mcpkit/internal/logging"
	"github.com/thoreinstein/mcpkit/internal/selector"
	"github.com/thoreinstein/mcpkit/internal/translate"
)

// errNothingChosen marks a picker the user quit without choosing. Commands
// treat it as a clean exit.
var errNothingChosen = errors.New("nothing chosen")

// lookupAgent validates an agent identifier, suggesting close matches.
func lookupAgent(id string) (agent.Profile, error) {
	p, err := agent.Lookup(id)
	if err == nil {
		return p, nil
	}
	suggestion := cli.DidYouMean(id, agent.IDs())
	if suggestion == "" {
		suggestion = "Run: mcpkit agents"
	}
	return agent.Profile{}, errors.NewUserError(err, suggestion)
}

// resolveAgent picks the agent from the flag, then the configured default,
// then an interactive list.
func (a *app) resolveAgent(ctx context.Context, flagAgent, projectRoot string) (agent.Profile, error) {
	id := flagAgent
	if id == "" && a.cfg != nil {
		id = a.cfg.DefaultAgent
	}
	if id != "" {
		return lookupAgent(id)
	}
	if a.json {
		return agent.Profile{}, interactionRequired("choosing an agent", "Pass --agent <id>; see: mcpkit agents")
	}
	return a.pickAgent(ctx, projectRoot)
}

func (a *app) pickAgent(ctx context.Context, projectRoot string) (agent.Profile, error) {
	profiles := agent.All()
	items := make([]selector.Item, len(profiles))
	for i, p := range profiles {
		path, _ := a.resolver.ConfigPath(p.ID, projectRoot)
		items[i] = selector.Item{Name: p.Name, Publisher: p.ID, Description: path}
		if !p.Installed() {
			items[i].Note = "(CLI not found)"
		}
	}

	title := "Choose your AI agent"
	if projectRoot != "" {
		title += " for " + filepath.Base(projectRoot)
	}
	res, err := a.choose(ctx, items, selector.Options{
		Title:    title,
		PageSize: a.pageSize(),
		Noun:     "agent",
	})
	if err != nil {
		return agent.Profile{}, err
	}
	switch {
	case res.Status == selector.Aborted:
		return agent.Profile{}, errors.NewUserError(
			errors.Wrap(errors.ErrSelectionAborted, "no agent selected"), "")
	case res.Status != selector.Confirmed || len(res.Indices) == 0:
		return agent.Profile{}, errNothingChosen
	}
	return profiles[res.Indices[0]], nil
}

// pickServers shows the catalog as a searchable multi-select list.
// Entries already configured for the agent carry a note.
func (a *app) pickServers(ctx context.Context, cat *catalog.Catalog, profile agent.Profile, configured []string) ([]catalog.Entry, error) {
	if a.json {
		return nil, interactionRequired("choosing servers", "Pass server names as arguments")
	}

	have := make(map[string]bool, len(configured))
	for _, id := range configured {
		have[id] = true
	}

	items := make([]selector.Item, len(cat.Entries))
	for i, e := range cat.Entries {
		items[i] = selector.Item{
			Name:        e.Name,
			Publisher:   e.Publisher,
			Description: e.Description,
			Popularity:  e.Popularity,
		}
		for _, id := range e.IDs() {
			if have[id] || have[translate.HyphenateID(id)] {
				items[i].Note = "(configured)"
				break
			}
		}
	}

	res, err := a.choose(ctx, items, selector.Options{
		Title:      fmt.Sprintf("Select MCP servers for %s", profile.Name),
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

	chosen := make([]catalog.Entry, len(res.Indices))
	for i, idx := range res.Indices {
		chosen[i] = cat.Entries[idx]
	}
	return chosen, nil
}

// loadDocument reads the agent document. A corrupt document is reported and,
// unless force is set, the user must agree before it is replaced.
func (a *app) loadDocument(path string, force bool) (*docstore.Document, bool, error) {
	existed, err := fileExists(a, path)
	if err != nil {
		return nil, false, err
	}

	doc, err := docstore.Load(a.fs, path)
	var corrupt *docstore.CorruptError
	switch {
	case err == nil:
		return doc, existed, nil
	case !errors.As(err, &corrupt):
		return nil, existed, err
	}

	a.printer.Warn("Warning: %v", corrupt)
	if force {
		return doc, existed, nil
	}
	if a.json {
		return nil, existed, interactionRequired("confirming the merge over an unreadable config",
			"Fix the file, or pass --force to replace it (a backup is kept)")
	}
	ok, err := a.prompt.Confirm("Continue and merge the file?", false)
	if err != nil || !ok {
		return nil, existed, errors.NewUserError(
			errors.Wrapf(corrupt, "left %s untouched", path), "Fix the file or pass --force")
	}
	return doc, existed, nil
}

// writeDocument backs the previous document up once per run, then saves.
func (a *app) writeDocument(ctx context.Context, profile agent.Profile, path string, doc *docstore.Document) error {
	manifest, err := a.backups.EnsureBackedUp(profile.ID, []string{path})
	if err != nil {
		return errors.NewSystemError(err, "Disable backups with: mcpkit config set backup.disabled true")
	}
	if manifest != nil {
		logging.FromContext(ctx).Info("backed up agent config", "agent", profile.ID, "backup", manifest.ID)
	}
	if err := docstore.Save(a.fs, path, doc); err != nil {
		return errors.NewSystemError(err, "Check permissions of "+filepath.Dir(path))
	}
	return nil
}

// mergeEntries translates entries for profile and merges them into the
// document at path.
func (a *app) mergeEntries(ctx context.Context, profile agent.Profile, path string, entries []catalog.Entry, force bool) ([]string, error) {
	res := translate.Fragment(entries, profile.Shape)
	if res.Len() == 0 {
		return nil, errors.NewUserError(errors.New("the chosen entries define no servers"), "")
	}

	doc, existed, err := a.loadDocument(path, force)
	if err != nil {
		return nil, err
	}
	if existed {
		a.printer.Dim("Found existing configuration, merging entries...")
	}

	added, err := docstore.Merge(doc, res)
	if err != nil {
		return nil, errors.NewUserError(err, "Fix the \""+profile.Shape.ServersKey()+"\" key in "+path)
	}
	if existed {
		a.printer.Printf("Adding %d servers to existing configuration:\n", len(added))
		for _, id := range added {
			a.printer.Bullet("%s", id)
		}
	}

	if err := a.writeDocument(ctx, profile, path, doc); err != nil {
		return nil, err
	}
	a.printer.Success("MCP configuration saved to %s", path)
	return added, nil
}

func fileExists(a *app, path string) (bool, error) {
	info, err := a.fs.Stat(path)
	if err == nil {
		return !info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "stat %s", path)
}
