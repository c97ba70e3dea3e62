package catalog

import (
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Catalog-only keys carried inside a server spec. They describe where the
// entry came from and are not understood by agents.
const (
	MetaGallery = "gallery"
	MetaVersion = "version"
)

// ServerSpec is one server definition: an insertion-ordered mapping of keys
// ("type", "command", "args", "url", "headers", ...) to raw JSON values.
// Values stay raw so nested objects keep their original key order.
type ServerSpec = orderedmap.OrderedMap[string, json.RawMessage]

// Fragment maps server identifiers to their specs, in catalog order.
type Fragment = orderedmap.OrderedMap[string, *ServerSpec]

// NewSpec returns an empty ServerSpec.
func NewSpec() *ServerSpec {
	return orderedmap.New[string, json.RawMessage]()
}

// NewFragment returns an empty Fragment.
func NewFragment() *Fragment {
	return orderedmap.New[string, *ServerSpec]()
}

// Entry is one named catalog item. An entry may contribute several server
// specs through its fragment.
type Entry struct {
	Name        string    `json:"name"`
	Publisher   string    `json:"by,omitempty"`
	Description string    `json:"description,omitempty"`
	Popularity  int       `json:"stargazer_count,omitempty"`
	Fragment    *Fragment `json:"mcp"`
}

// IDs returns the server identifiers the entry contributes, in order.
func (e Entry) IDs() []string {
	if e.Fragment == nil {
		return nil
	}
	ids := make([]string, 0, e.Fragment.Len())
	for pair := e.Fragment.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}

// Matches reports whether name refers to this entry, either by display
// name or by one of its server identifiers (case-insensitive).
func (e Entry) Matches(name string) bool {
	if strings.EqualFold(e.Name, name) {
		return true
	}
	for _, id := range e.IDs() {
		if strings.EqualFold(id, name) {
			return true
		}
	}
	return false
}

// StringValue decodes a string-valued key of spec. ok is false when the
// key is missing or not a JSON string.
func StringValue(spec *ServerSpec, key string) (s string, ok bool) {
	if spec == nil {
		return "", false
	}
	raw, present := spec.Get(key)
	if !present {
		return "", false
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// CloneSpec returns a shallow copy of spec; raw values are shared.
func CloneSpec(spec *ServerSpec) *ServerSpec {
	out := NewSpec()
	if spec == nil {
		return out
	}
	for pair := spec.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
	}
	return out
}
