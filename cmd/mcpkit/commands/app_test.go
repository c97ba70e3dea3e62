package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpkit/internal/agent"
	"github.com/thoreinstein/mcpkit/internal/backup"
	"github.com/thoreinstein/mcpkit/internal/catalog"
	"github.com/thoreinstein/mcpkit/internal/cli"
	"github.com/thoreinstein/mcpkit/internal/cli/prompt"
	"github.com/thoreinstein/mcpkit/internal/config"
	"github.com/thoreinstein/mcpkit/internal/selector"
)

const (
	testHome    = "/home/u"
	testWorkDir = "/work"
	claudePath  = "/home/u/.claude.json"
)

// scriptedChooser replays selector results in order and records each call.
type scriptedChooser struct {
	results []selector.Result
	calls   []selector.Options
	items   [][]selector.Item
}

func (s *scriptedChooser) choose(_ context.Context, items []selector.Item, opts selector.Options) (selector.Result, error) {
	s.calls = append(s.calls, opts)
	s.items = append(s.items, items)
	if len(s.results) == 0 {
		return selector.Result{Status: selector.Quit}, nil
	}
	res := s.results[0]
	s.results = s.results[1:]
	return res, nil
}

type testEnv struct {
	app     *app
	fs      afero.Fs
	out     *bytes.Buffer
	chooser *scriptedChooser
}

// newTestEnv builds an app on an in-memory filesystem with the built-in
// catalog. input feeds the confirmation and numbered prompts.
func newTestEnv(t *testing.T, input string, results ...selector.Result) *testEnv {
	t.Helper()

	fsys := afero.NewMemMapFs()
	out := &bytes.Buffer{}
	ch := &scriptedChooser{results: results}
	cfg := config.Default()

	store := backup.NewManager(fsys, "/backups",
		backup.WithToolVersion("test"),
		backup.WithClock(steppingClock()),
	)
	a := &app{
		fs:       fsys,
		out:      out,
		workDir:  testWorkDir,
		cfg:      cfg,
		resolver: &agent.Resolver{Home: testHome, GOOS: "linux"},
		printer:  cli.NewPrinter(out),
		prompt:   prompt.NewWithIO(strings.NewReader(input), out),
		choose:   ch.choose,
		store:    store,
		cacheDir: "/cache/catalog",
		backups:  backup.NewSession(store),
		fetch: func(context.Context) (*catalog.Catalog, error) {
			return catalog.Builtin(), nil
		},
	}
	return &testEnv{app: a, fs: fsys, out: out, chooser: ch}
}

// jsonMode switches the app to --json output.
func (e *testEnv) jsonMode() {
	e.app.json = true
	e.app.printer = cli.NewPrinter(humanWriter(e.out, true))
}

func (e *testEnv) write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(e.fs, path, []byte(content), 0o644))
}

func (e *testEnv) read(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(e.fs, path)
	require.NoError(t, err)
	return string(data)
}

// servers decodes the server mapping under key from the document at path.
func (e *testEnv) servers(t *testing.T, path, key string) map[string]map[string]any {
	t.Helper()
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(e.read(t, path)), &doc))
	var servers map[string]map[string]any
	if raw, ok := doc[key]; ok {
		require.NoError(t, json.Unmarshal(raw, &servers))
	}
	return servers
}

// lastJSON decodes the last line written to out.
func (e *testEnv) lastJSON(t *testing.T, v any) {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(e.out.String()), "\n")
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), v))
}

// steppingClock advances one second per call so backup IDs differ.
func steppingClock() func() time.Time {
	t := time.Date(2026, 1, 23, 10, 7, 12, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func confirmed(indices ...int) selector.Result {
	return selector.Result{Status: selector.Confirmed, Indices: indices}
}

func TestProjectRoot(t *testing.T) {
	a := &app{workDir: testWorkDir}

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{".", "/work"},
		{"my-app", "/work/my-app"},
		{"/srv/app/", "/srv/app"},
		{"../other", "/other"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := a.projectRoot(tt.in); got != tt.want {
				t.Errorf("projectRoot(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPageSize(t *testing.T) {
	a := &app{cfg: &config.Config{Selector: config.SelectorConfig{PageSize: 25}}}
	if got := a.pageSize(); got != 25 {
		t.Errorf("pageSize() = %d, want 25", got)
	}

	a.cfg = nil
	if got := a.pageSize(); got != selector.DefaultPageSize {
		t.Errorf("pageSize() = %d, want %d", got, selector.DefaultPageSize)
	}
}

func TestEmit_OneLine(t *testing.T) {
	var buf bytes.Buffer
	a := &app{out: &buf}

	require.NoError(t, a.emit(map[string]string{"url": "https://a.test/?x=1&y=<2>"}))
	require.Equal(t, 1, strings.Count(buf.String(), "\n"))
	require.True(t, json.Valid(buf.Bytes()))
}
