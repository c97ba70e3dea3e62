// Package docstore reads, merges and writes agent MCP documents.
//
// A document is a JSON object whose top-level keys are kept in file order.
// Only the key holding the server mapping (and "inputs" for the servers
// layout) is ever touched; every other key is written back as it was read,
// apart from indentation. Comments and trailing commas are accepted on read
// and dropped on write.
package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/thoreinstein/mcpkit/internal/agent"
	"github.com/thoreinstein/mcpkit/internal/errors"
	"github.com/thoreinstein/mcpkit/pkg/fileutil"
)

// DefaultPerm is the mode of newly created documents.
const DefaultPerm os.FileMode = 0o644

type rawObject = orderedmap.OrderedMap[string, json.RawMessage]

// Document is an agent document held in memory.
type Document struct {
	root *rawObject
}

// New returns an empty document.
func New() *Document {
	return &Document{root: orderedmap.New[string, json.RawMessage]()}
}

// CorruptError reports an existing document that could not be parsed. Load
// returns it together with an empty document; the caller decides whether
// overwriting is acceptable.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("could not read existing config %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// Parse decodes data as a document. Empty input is an empty document.
func Parse(data []byte) (*Document, error) {
	data = bytes.TrimSpace(jsonc.ToJSON(data))
	if len(data) == 0 {
		return New(), nil
	}
	if data[0] != '{' {
		return nil, errors.New("top level is not a JSON object")
	}
	doc := New()
	if err := json.Unmarshal(data, doc.root); err != nil {
		return nil, errors.Wrap(err, "parsing JSON")
	}
	return doc, nil
}

// Load reads the document at path. A missing file yields an empty document
// and no error. An unreadable or unparseable file yields an empty document
// and a *CorruptError.
func Load(fsys afero.Fs, path string) (*Document, error) {
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		return New(), &CorruptError{Path: path, Err: err}
	}
	if !exists {
		return New(), nil
	}

	data, err := fileutil.ReadFileWithLimit(fsys, path)
	if err != nil {
		return New(), &CorruptError{Path: path, Err: err}
	}
	doc, err := Parse(data)
	if err != nil {
		return New(), &CorruptError{Path: path, Err: err}
	}
	return doc, nil
}

// Save writes doc to path atomically, creating parent directories. An
// existing file keeps its permissions.
func Save(fsys afero.Fs, path string, doc *Document) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	perm := DefaultPerm
	if info, err := fsys.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	data, err := fileutil.MarshalJSON(doc)
	if err != nil {
		return err
	}
	return fileutil.AtomicWriteFile(fsys, path, data, perm)
}

// Keys returns the top-level keys in document order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, d.root.Len())
	for pair := d.root.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Get returns the raw value of a top-level key.
func (d *Document) Get(key string) (json.RawMessage, bool) {
	return d.root.Get(key)
}

// Servers returns the server mapping for shape, or an empty mapping when
// the key is absent or null.
func (d *Document) Servers(shape agent.Shape) (*rawObject, error) {
	servers := orderedmap.New[string, json.RawMessage]()
	raw, ok := d.root.Get(shape.ServersKey())
	if !ok || isNull(raw) {
		return servers, nil
	}
	if first := firstByte(raw); first != '{' {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "%q is not an object", shape.ServersKey())
	}
	if err := json.Unmarshal(raw, servers); err != nil {
		return nil, errors.Wrapf(err, "parsing %q", shape.ServersKey())
	}
	return servers, nil
}

// ServerIDs returns the configured server identifiers in document order.
func (d *Document) ServerIDs(shape agent.Shape) ([]string, error) {
	servers, err := d.Servers(shape)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, servers.Len())
	for pair := servers.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids, nil
}

func (d *Document) setServers(shape agent.Shape, servers *rawObject) error {
	raw, err := encodeObject(servers)
	if err != nil {
		return err
	}
	d.root.Set(shape.ServersKey(), raw)
	return nil
}

// MarshalJSON encodes the document compactly without HTML escaping.
func (d *Document) MarshalJSON() ([]byte, error) {
	return encodeObject(d.root)
}

// encodeObject writes an ordered object of raw values. Values are emitted
// as stored; keys are encoded without HTML escaping.
func encodeObject(m *rawObject) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		key, err := encodeString(pair.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value := bytes.TrimSpace(pair.Value)
		if len(value) == 0 {
			value = []byte("null")
		}
		if !json.Valid(value) {
			return nil, errors.Newf("invalid JSON value for key %q", pair.Key)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, errors.Wrap(err, "encoding key")
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func firstByte(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}
