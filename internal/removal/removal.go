// Package removal decides which configured servers a removal request names.
//
// A request matches a configured identifier exactly, or as a suffix that
// starts right after a "/" or "-" ("fetch" names "modelcontextprotocol/fetch"
// and "mcp-fetch"). A request matching more than one identifier by suffix is
// reported as ambiguous and removes nothing.
package removal

import (
	"slices"
	"strings"
)

// Result is the outcome of resolving removal requests.
type Result struct {
	// ToRemove lists configured identifiers to delete, deduplicated and in
	// configured order.
	ToRemove []string
	// Ambiguous maps each ambiguous request to its candidates.
	Ambiguous map[string][]string
	// NotFound lists requests that matched nothing, in request order.
	NotFound []string
}

// Empty reports whether nothing will be removed.
func (r Result) Empty() bool {
	return len(r.ToRemove) == 0
}

// Resolve maps requested names onto configured identifiers. With all set,
// every configured identifier is removed and requested is ignored.
func Resolve(configured, requested []string, all bool) Result {
	res := Result{Ambiguous: make(map[string][]string)}
	if all {
		res.ToRemove = dedupe(configured)
		return res
	}

	hit := make(map[string]bool)
	for _, name := range requested {
		if name == "" {
			continue
		}
		matches := Match(configured, name)
		switch len(matches) {
		case 0:
			if !slices.Contains(res.NotFound, name) {
				res.NotFound = append(res.NotFound, name)
			}
		case 1:
			hit[matches[0]] = true
		default:
			res.Ambiguous[name] = matches
		}
	}

	for _, id := range configured {
		if hit[id] {
			res.ToRemove = append(res.ToRemove, id)
			delete(hit, id)
		}
	}
	return res
}

// Match returns the configured identifiers name refers to: the exact
// identifier when present, otherwise every boundary suffix match.
func Match(configured []string, name string) []string {
	if slices.Contains(configured, name) {
		return []string{name}
	}
	var matches []string
	for _, id := range configured {
		if suffixMatch(id, name) && !slices.Contains(matches, id) {
			matches = append(matches, id)
		}
	}
	return matches
}

func suffixMatch(id, name string) bool {
	if len(id) <= len(name) || !strings.HasSuffix(id, name) {
		return false
	}
	switch id[len(id)-len(name)-1] {
	case '/', '-':
		return true
	}
	return false
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
