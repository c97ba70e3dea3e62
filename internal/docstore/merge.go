package docstore

import (
	"encoding/json"

	"github.com/thoreinstein/mcpkit/internal/agent"
	"github.com/thoreinstein/mcpkit/internal/errors"
	"github.com/thoreinstein/mcpkit/internal/translate"
)

var emptyList = json.RawMessage(`[]`)

// Merge adds the translated servers to doc and returns their identifiers in
// fragment order. Existing servers with the same identifier are replaced in
// place; every other key is left alone. Merging the same fragment twice
// leaves the document unchanged the second time.
func Merge(doc *Document, res *translate.Result) ([]string, error) {
	shape := res.Shape
	servers, err := doc.Servers(shape)
	if err != nil {
		return nil, err
	}

	added := make([]string, 0, res.Len())
	for pair := res.Servers.Oldest(); pair != nil; pair = pair.Next() {
		raw, err := encodeObject(pair.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding server %q", pair.Key)
		}
		servers.Set(pair.Key, raw)
		added = append(added, pair.Key)
	}

	if err := doc.setServers(shape, servers); err != nil {
		return nil, err
	}
	if shape.Kind == agent.KindServers {
		if _, ok := doc.root.Get(agent.KeyInputs); !ok {
			doc.root.Set(agent.KeyInputs, emptyList)
		}
	}
	return added, nil
}

// Remove deletes the given server identifiers from doc and returns the ones
// that were present, in the order requested.
func Remove(doc *Document, shape agent.Shape, ids []string) ([]string, error) {
	servers, err := doc.Servers(shape)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, id := range ids {
		if _, ok := servers.Delete(id); ok {
			removed = append(removed, id)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	if err := doc.setServers(shape, servers); err != nil {
		return nil, err
	}
	return removed, nil
}
