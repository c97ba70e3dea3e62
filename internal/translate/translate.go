// Package translate turns chosen catalog entries into the server mapping an
// agent expects.
//
// Translation is pure: catalog specs are copied, never modified, and the
// agent's [agent.Shape] decides every rewrite.
package translate

import (
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/thoreinstein/mcpkit/internal/agent"
	"github.com/thoreinstein/mcpkit/internal/catalog"
)

// Spec keys touched by translation.
const (
	keyType    = "type"
	keyCommand = "command"
	keyHeaders = "headers"
	keyTools   = "tools"
)

// Transport values.
const (
	TransportStdio = "stdio"
	TransportLocal = "local"
	TransportHTTP  = "http"
	TransportSSE   = "sse"
)

var (
	rawAllTools   = json.RawMessage(`["*"]`)
	rawEmptyMap   = json.RawMessage(`{}`)
	rawEmptyList  = json.RawMessage(`[]`)
	rawLocalValue = json.RawMessage(`"local"`)
)

// Result is a translated fragment ready to merge into an agent document.
type Result struct {
	Shape   agent.Shape
	Servers *catalog.Fragment
}

// IDs returns the translated server identifiers in order.
func (r *Result) IDs() []string {
	ids := make([]string, 0, r.Servers.Len())
	for pair := r.Servers.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}

// Len returns the number of translated servers.
func (r *Result) Len() int {
	return r.Servers.Len()
}

// MarshalJSON renders the fragment as a standalone agent document.
func (r *Result) MarshalJSON() ([]byte, error) {
	doc := orderedmap.New[string, any]()
	doc.Set(r.Shape.ServersKey(), r.Servers)
	if r.Shape.Kind == agent.KindServers {
		doc.Set(agent.KeyInputs, rawEmptyList)
	}
	return json.Marshal(doc)
}

// Fragment merges the fragments of entries and rewrites them for shape.
// Later entries win when two specs share an identifier.
func Fragment(entries []catalog.Entry, shape agent.Shape) *Result {
	out := catalog.NewFragment()
	for _, e := range entries {
		if e.Fragment == nil {
			continue
		}
		for pair := e.Fragment.Oldest(); pair != nil; pair = pair.Next() {
			id, spec := translate(pair.Key, pair.Value, shape)
			out.Set(id, spec)
		}
	}
	return &Result{Shape: shape, Servers: out}
}

// ForAgent translates entries for the agent with the given identifier.
func ForAgent(entries []catalog.Entry, agentID string) (*Result, error) {
	p, err := agent.Lookup(agentID)
	if err != nil {
		return nil, err
	}
	return Fragment(entries, p.Shape), nil
}

func translate(id string, spec *catalog.ServerSpec, shape agent.Shape) (string, *catalog.ServerSpec) {
	out := catalog.CloneSpec(spec)

	if shape.StripMetadata {
		out.Delete(catalog.MetaGallery)
		out.Delete(catalog.MetaVersion)
	}
	if shape.HyphenateIDs {
		id = HyphenateID(id)
	}
	if shape.RewriteTransport {
		rewriteTransport(out)
	}
	return id, out
}

// HyphenateID replaces forward and back slashes with hyphens.
func HyphenateID(id string) string {
	return strings.NewReplacer("/", "-", `\`, "-").Replace(id)
}

// rewriteTransport adapts a spec for agents that name the process transport
// "local" and require an explicit tool allow-list.
func rewriteTransport(spec *catalog.ServerSpec) {
	transport, ok := catalog.StringValue(spec, keyType)
	if !ok {
		if _, hasCommand := spec.Get(keyCommand); !hasCommand {
			return
		}
		transport = TransportStdio
	}

	switch transport {
	case TransportStdio:
		spec.Set(keyType, rawLocalValue)
		setDefault(spec, keyTools, rawAllTools)
	case TransportHTTP, TransportSSE:
		setDefault(spec, keyHeaders, rawEmptyMap)
		setDefault(spec, keyTools, rawAllTools)
	}
}

func setDefault(spec *catalog.ServerSpec, key string, value json.RawMessage) {
	if _, ok := spec.Get(key); !ok {
		spec.Set(key, value)
	}
}
