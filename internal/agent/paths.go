package agent

import (
	"path/filepath"
	"runtime"

	"github.com/thoreinstein/mcpkit/internal/errors"
	"github.com/thoreinstein/mcpkit/internal/paths"
)

// Resolver maps an agent and an optional project root to the document
// path. Home and GOOS are fields so tests can pin them.
type Resolver struct {
	Home string
	GOOS string
}

// NewResolver returns a Resolver for the current user and OS.
func NewResolver() (*Resolver, error) {
	home, err := paths.ResolveHome()
	if err != nil {
		return nil, err
	}
	return &Resolver{Home: home, GOOS: runtime.GOOS}, nil
}

// ConfigPath returns the document path for agentID. An empty projectRoot
// selects the global document; agents without project support always
// resolve globally.
func (r *Resolver) ConfigPath(agentID, projectRoot string) (string, error) {
	p, err := Lookup(agentID)
	if err != nil {
		return "", err
	}
	if projectRoot != "" && p.SupportsProject() {
		return filepath.Join(projectRoot, filepath.FromSlash(p.Project)), nil
	}
	return r.GlobalPath(p.ID)
}

// GlobalPath returns the user-level document path for agentID.
//
// Agent paths:
//   - claude: ~/.claude.json
//   - continue: ~/.continue/mcpServers/mcp.json
//   - copilot: VS Code user settings dir + mcp.json (per OS)
//   - copilot-cli: ~/.copilot/mcp-config.json
//   - cursor: ~/.cursor/mcp.json
//   - gemini: ~/.gemini/settings.json
//   - kiro: ~/.kiro/settings/mcp.json
//   - lmstudio: ~/.lmstudio/mcp.json
//   - qoder: ~/AppData/Roaming/Qoder/SharedClientCache/mcp.json on Windows,
//     ~/.config/Qoder/SharedClientCache/mcp.json elsewhere
func (r *Resolver) GlobalPath(agentID string) (string, error) {
	if r.Home == "" {
		return "", errors.Wrap(paths.ErrHomeDirNotFound, "resolving agent document")
	}
	join := func(elem ...string) string {
		return filepath.Join(append([]string{r.Home}, elem...)...)
	}

	switch agentID {
	case Claude:
		return join(".claude.json"), nil
	case Continue:
		return join(".continue", "mcpServers", "mcp.json"), nil
	case CopilotCLI:
		return join(".copilot", "mcp-config.json"), nil
	case Cursor:
		return join(".cursor", "mcp.json"), nil
	case Gemini:
		return join(".gemini", "settings.json"), nil
	case Kiro:
		return join(".kiro", "settings", "mcp.json"), nil
	case LMStudio:
		return join(".lmstudio", "mcp.json"), nil
	case Qoder:
		if r.GOOS == "windows" {
			return join("AppData", "Roaming", "Qoder", "SharedClientCache", "mcp.json"), nil
		}
		return join(".config", "Qoder", "SharedClientCache", "mcp.json"), nil
	case Copilot:
		switch r.GOOS {
		case "windows":
			return join("AppData", "Roaming", "Code", "User", "mcp.json"), nil
		case "darwin":
			return join("Library", "Application Support", "Code", "User", "mcp.json"), nil
		default:
			return join(".config", "Code", "User", "mcp.json"), nil
		}
	}
	_, err := Lookup(agentID)
	return "", err
}
