// Package agent describes the AI coding agents mcpkit can configure and
// where each one keeps its MCP document.
package agent

import (
	"os/exec"
	"slices"
	"strings"

	"github.com/thoreinstein/mcpkit/internal/errors"
)

// Agent identifiers.
const (
	Claude     = "claude"
	Continue   = "continue"
	Copilot    = "copilot"
	CopilotCLI = "copilot-cli"
	Cursor     = "cursor"
	Gemini     = "gemini"
	Kiro       = "kiro"
	LMStudio   = "lmstudio"
	Qoder      = "qoder"
)

// Document keys holding the server mapping.
const (
	KeyServers    = "servers"
	KeyMCPServers = "mcpServers"
	KeyInputs     = "inputs"
)

// Kind selects the top-level layout of an agent document.
type Kind int

const (
	// KindServers is {"servers": {...}, "inputs": [...]}.
	KindServers Kind = iota
	// KindMCPServers is {"mcpServers": {...}}.
	KindMCPServers
)

// Shape is the document layout an agent expects plus the per-server
// rewrites applied when translating catalog fragments into it.
type Shape struct {
	Kind Kind

	// StripMetadata drops the catalog-only "gallery" and "version" keys.
	StripMetadata bool
	// HyphenateIDs replaces path separators in server identifiers with "-".
	HyphenateIDs bool
	// RewriteTransport maps "stdio" to "local" and fills in "tools"/"headers".
	RewriteTransport bool
}

// ServersKey returns the top-level key holding the server mapping.
func (s Shape) ServersKey() string {
	if s.Kind == KindServers {
		return KeyServers
	}
	return KeyMCPServers
}

// Profile is one entry of the agent table.
type Profile struct {
	ID          string
	Name        string
	Folder      string
	InstallURL  string
	Binary      string // CLI executable; empty for IDE-hosted agents
	RequiresCLI bool
	Shape       Shape

	// Project is the document path relative to a project root. Empty
	// means the agent only has a global document.
	Project string
}

// SupportsProject reports whether the agent reads a project-level document.
func (p Profile) SupportsProject() bool {
	return p.Project != ""
}

// Installed reports whether the agent's CLI is on PATH. IDE-hosted agents
// always report true.
func (p Profile) Installed() bool {
	if !p.RequiresCLI || p.Binary == "" {
		return true
	}
	_, err := exec.LookPath(p.Binary)
	return err == nil
}

var stripped = Shape{Kind: KindMCPServers, StripMetadata: true}

// profiles is kept in display order.
var profiles = []Profile{
	{
		ID:          Claude,
		Name:        "Claude Code",
		Folder:      ".claude/",
		InstallURL:  "https://www.claude.com/product/claude-code",
		Binary:      "claude",
		RequiresCLI: true,
		Shape:       stripped,
		Project:     ".mcp.json",
	},
	{
		ID:      Continue,
		Name:    "Continue",
		Folder:  ".continue/",
		Shape:   stripped,
		Project: ".continue/mcpServers/mcp.json",
	},
	{
		ID:      Copilot,
		Name:    "GitHub Copilot",
		Folder:  ".github/",
		Shape:   Shape{Kind: KindServers},
		Project: ".vscode/mcp.json",
	},
	{
		ID:          CopilotCLI,
		Name:        "GitHub Copilot CLI",
		Folder:      ".copilot/",
		InstallURL:  "https://github.com/github/copilot-cli",
		Binary:      "copilot",
		RequiresCLI: true,
		Shape: Shape{
			Kind:             KindMCPServers,
			StripMetadata:    true,
			HyphenateIDs:     true,
			RewriteTransport: true,
		},
	},
	{
		ID:         Cursor,
		Name:       "Cursor",
		Folder:     ".cursor/",
		InstallURL: "https://cursor.sh",
		Shape:      stripped,
		Project:    ".cursor/mcp.json",
	},
	{
		ID:          Gemini,
		Name:        "Gemini CLI",
		Folder:      ".gemini/",
		InstallURL:  "https://github.com/google-gemini/gemini-cli",
		Binary:      "gemini",
		RequiresCLI: true,
		Shape:       stripped,
		Project:     ".gemini/settings.json",
	},
	{
		ID:         Kiro,
		Name:       "Kiro",
		Folder:     ".kiro/",
		InstallURL: "https://kiro.dev",
		Shape:      stripped,
		Project:    ".kiro/settings/mcp.json",
	},
	{
		ID:         LMStudio,
		Name:       "LM Studio",
		Folder:     ".lmstudio/",
		InstallURL: "https://lmstudio.ai",
		Shape:      stripped,
	},
	{
		ID:         Qoder,
		Name:       "Qoder",
		Folder:     ".qoder/",
		InstallURL: "https://qoder.com",
		Shape:      stripped,
	},
}

// All returns every known agent in display order.
func All() []Profile {
	return slices.Clone(profiles)
}

// IDs returns every agent identifier in display order.
func IDs() []string {
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	return ids
}

// Lookup finds an agent by identifier, case-insensitively.
func Lookup(id string) (Profile, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, p := range profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return Profile{}, errors.Wrapf(errors.ErrUnknownAgent, "agent %q", id)
}

// Valid reports whether id names a known agent.
func Valid(id string) bool {
	_, err := Lookup(id)
	return err == nil
}
