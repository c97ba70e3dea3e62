package translate

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/thoreinstein/mcpkit/internal/agent"
	"github.com/thoreinstein/mcpkit/internal/catalog"
)

const testCatalog = `[
  {"name": "git", "mcp": {
    "modelcontextprotocol/git": {"type": "stdio", "command": "uvx", "args": ["mcp-server-git"], "gallery": "https://example.com/git", "version": "0.6.2"}
  }},
  {"name": "filesystem", "mcp": {
    "modelcontextprotocol/filesystem": {"type": "stdio", "command": "npx", "args": ["-y", "@modelcontextprotocol/server-filesystem"], "gallery": "https://example.com/fs", "version": "0.6.3"}
  }},
  {"name": "github", "mcp": {
    "github/github-mcp-server": {"type": "http", "url": "https://api.githubcopilot.com/mcp/", "gallery": "https://example.com/gh", "version": "1.0.0"}
  }}
]`

func loadEntries(t *testing.T) []catalog.Entry {
	t.Helper()
	entries, err := catalog.Decode([]byte(testCatalog), catalog.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	return entries
}

func TestFragment_ServersShapeKeepsMetadata(t *testing.T) {
	entries := loadEntries(t)
	res, err := ForAgent(entries[1:2], agent.Copilot)
	if err != nil {
		t.Fatal(err)
	}

	got, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"servers":{"modelcontextprotocol/filesystem":{"type":"stdio","command":"npx","args":["-y","@modelcontextprotocol/server-filesystem"],"gallery":"https://example.com/fs","version":"0.6.3"}},"inputs":[]}`
	if string(got) != want {
		t.Errorf("document =\n%s\nwant\n%s", got, want)
	}
}

func TestFragment_StripsMetadata(t *testing.T) {
	entries := loadEntries(t)
	for _, p := range agent.All() {
		if p.ID == agent.Copilot {
			continue
		}
		t.Run(p.ID, func(t *testing.T) {
			res := Fragment(entries, p.Shape)
			for pair := res.Servers.Oldest(); pair != nil; pair = pair.Next() {
				for _, key := range []string{catalog.MetaGallery, catalog.MetaVersion} {
					if _, ok := pair.Value.Get(key); ok {
						t.Errorf("%s: %q kept for %s", pair.Key, key, p.ID)
					}
				}
			}
		})
	}
}

func TestFragment_DoesNotModifyCatalog(t *testing.T) {
	entries := loadEntries(t)
	shape := agent.Shape{Kind: agent.KindMCPServers, StripMetadata: true, HyphenateIDs: true, RewriteTransport: true}
	Fragment(entries, shape)

	spec, _ := entries[0].Fragment.Get("modelcontextprotocol/git")
	if _, ok := spec.Get(catalog.MetaGallery); !ok {
		t.Error("catalog spec lost its gallery key")
	}
	if v, _ := catalog.StringValue(spec, "type"); v != "stdio" {
		t.Errorf("catalog spec type = %q, want stdio", v)
	}
}

func TestFragment_CopilotCLI(t *testing.T) {
	entries := loadEntries(t)
	res, err := ForAgent(entries, agent.CopilotCLI)
	if err != nil {
		t.Fatal(err)
	}

	wantIDs := []string{"modelcontextprotocol-git", "modelcontextprotocol-filesystem", "github-github-mcp-server"}
	if !slices.Equal(res.IDs(), wantIDs) {
		t.Errorf("IDs() = %v, want %v", res.IDs(), wantIDs)
	}

	tests := []struct {
		id   string
		want string
	}{
		{"modelcontextprotocol-git", `{"type":"local","command":"uvx","args":["mcp-server-git"],"tools":["*"]}`},
		{"github-github-mcp-server", `{"type":"http","url":"https://api.githubcopilot.com/mcp/","headers":{},"tools":["*"]}`},
	}
	for _, tt := range tests {
		spec, ok := res.Servers.Get(tt.id)
		if !ok {
			t.Fatalf("missing %s", tt.id)
		}
		got, err := json.Marshal(spec)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != tt.want {
			t.Errorf("%s =\n%s\nwant\n%s", tt.id, got, tt.want)
		}
	}

	doc, _ := json.Marshal(res)
	if !strings.HasPrefix(string(doc), `{"mcpServers":`) || strings.Contains(string(doc), "inputs") {
		t.Errorf("unexpected document %s", doc)
	}
}

func TestRewriteTransport(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"existing tools kept", `{"type":"stdio","command":"x","tools":["read"]}`, `{"type":"local","command":"x","tools":["read"]}`},
		{"missing type with command", `{"command":"x"}`, `{"command":"x","type":"local","tools":["*"]}`},
		{"existing headers kept", `{"type":"http","url":"u","headers":{"A":"b"}}`, `{"type":"http","url":"u","headers":{"A":"b"},"tools":["*"]}`},
		{"sse", `{"type":"sse","url":"u"}`, `{"type":"sse","url":"u","headers":{},"tools":["*"]}`},
		{"unknown transport untouched", `{"type":"websocket","url":"u"}`, `{"type":"websocket","url":"u"}`},
		{"no type no command", `{"url":"u"}`, `{"url":"u"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := catalog.NewSpec()
			if err := json.Unmarshal([]byte(tt.in), spec); err != nil {
				t.Fatal(err)
			}
			rewriteTransport(spec)
			got, err := json.Marshal(spec)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFragment_LaterEntryWins(t *testing.T) {
	entries, err := catalog.Decode([]byte(`[
		{"name": "a", "mcp": {"dup": {"command": "first"}, "only-a": {"command": "a"}}},
		{"name": "b", "mcp": {"dup": {"command": "second"}}}
	]`), catalog.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	res := Fragment(entries, agent.Shape{Kind: agent.KindMCPServers, StripMetadata: true})

	if !slices.Equal(res.IDs(), []string{"dup", "only-a"}) {
		t.Errorf("IDs() = %v", res.IDs())
	}
	spec, _ := res.Servers.Get("dup")
	if v, _ := catalog.StringValue(spec, "command"); v != "second" {
		t.Errorf("dup command = %q, want second", v)
	}
}

func TestHyphenateID(t *testing.T) {
	tests := map[string]string{
		"owner/name":    "owner-name",
		`owner\name`:    "owner-name",
		"a/b/c":         "a-b-c",
		"already-plain": "already-plain",
	}
	for in, want := range tests {
		if got := HyphenateID(in); got != want {
			t.Errorf("HyphenateID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestForAgent_Unknown(t *testing.T) {
	if _, err := ForAgent(nil, "vim"); err == nil {
		t.Error("ForAgent() expected error for unknown agent")
	}
}
