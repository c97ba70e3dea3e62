package catalog

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpkit/internal/errors"
)

// ErrEmptyCatalog indicates a source decoded to zero usable entries.
var ErrEmptyCatalog = errors.New("catalog has no usable entries")

// Format is a catalog file encoding.
type Format string

// Supported catalog encodings.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the encoding from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Decode parses catalog data. The document is either a list of entries or
// an object with a "servers" list. YAML and TOML documents are normalized
// through JSON so every format produces the same entries.
func Decode(data []byte, format Format) ([]Entry, error) {
	raw := data
	switch format {
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, errors.Wrap(err, "parsing YAML catalog")
		}
		out, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "normalizing YAML catalog")
		}
		raw = out
	case FormatTOML:
		var v map[string]any
		if err := toml.Unmarshal(data, &v); err != nil {
			return nil, errors.Wrap(err, "parsing TOML catalog")
		}
		out, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "normalizing TOML catalog")
		}
		raw = out
	}
	return decodeJSON(raw)
}

func decodeJSON(data []byte) ([]Entry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyCatalog
	}

	if data[0] == '{' {
		var wrapped struct {
			Servers json.RawMessage `json:"servers"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, errors.Wrap(err, "parsing catalog")
		}
		if len(wrapped.Servers) == 0 {
			return nil, errors.New(`catalog object has no "servers" list`)
		}
		data = wrapped.Servers
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(err, "parsing catalog")
	}
	return entries, nil
}
