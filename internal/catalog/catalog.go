// Package catalog loads the list of installable MCP servers.
//
// The list is downloaded from a GitHub release archive and cached. When the
// download fails the fetcher falls back, in order, to the cached copy, a
// configured local file, well-known local template files and finally a
// small built-in list. Every source yields the same [Entry] values;
// [Catalog.Source] records which one was used.
package catalog

import (
	_ "embed"
	"strings"
	"sync"
)

// Source records where a catalog came from.
type Source string

// Catalog sources, in fallback order.
const (
	SourceRelease Source = "release"
	SourceCache   Source = "cache"
	SourceFile    Source = "file"
	SourceBuiltin Source = "builtin"
)

// Catalog is the ordered, immutable entry list plus its provenance.
type Catalog struct {
	Entries []Entry
	Source  Source
	// Tag is the release tag for release/cache sources, otherwise empty.
	Tag string
	// Path is the file read for cache/file sources.
	Path string
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.Entries)
}

// Find returns the entries matching name by display name or server
// identifier. Identifier matches win over display-name matches.
func (c *Catalog) Find(name string) []Entry {
	var byID, byName []Entry
	for _, e := range c.Entries {
		for _, id := range e.IDs() {
			if strings.EqualFold(id, name) {
				byID = append(byID, e)
				break
			}
		}
		if strings.EqualFold(e.Name, name) {
			byName = append(byName, e)
		}
	}
	if len(byID) > 0 {
		return byID
	}
	return byName
}

// Names returns every display name and server identifier, for suggestions.
func (c *Catalog) Names() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			names = append(names, s)
		}
	}
	for _, e := range c.Entries {
		add(e.Name)
		for _, id := range e.IDs() {
			add(id)
		}
	}
	return names
}

//go:embed builtin.json
var builtinJSON []byte

var (
	builtinOnce    sync.Once
	builtinEntries []Entry
)

// Builtin returns the last-resort catalog compiled into the binary.
func Builtin() *Catalog {
	builtinOnce.Do(func() {
		entries, err := Decode(builtinJSON, FormatJSON)
		if err != nil {
			panic("catalog: invalid builtin.json: " + err.Error())
		}
		builtinEntries = entries
	})
	// Entries are read-only; the slice is shared.
	return &Catalog{Entries: builtinEntries, Source: SourceBuiltin}
}
