package catalog

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/h2non/gock"
	"github.com/spf13/afero"

	"github.com/thoreinstein/mcpkit/internal/logging"
)

const (
	testRepo     = "acme/catalog"
	testCacheDir = "/cache/mcpkit/catalog"
)

func buildArchive(t *testing.T, files map[string]string, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range order {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(files[name])); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestFetcher(t *testing.T, fsys afero.Fs, opts ...Option) *Fetcher {
	t.Helper()
	base := []Option{
		WithRepo(testRepo),
		WithCacheDir(testCacheDir),
		WithTemplates(),
		WithRetry(2, time.Millisecond),
		WithHTTPClient(&http.Client{}),
		WithGitHubClient(github.NewClient(nil)),
		WithLogger(logging.ForTest(t)),
	}
	return NewFetcher(context.Background(), fsys, append(base, opts...)...)
}

func TestFetch_LatestRelease(t *testing.T) {
	defer gock.OffAll()

	archive := buildArchive(t, map[string]string{
		"README.md":             "# catalog",
		"mcp-servers-v1.2.json": sampleJSON,
	}, "README.md", "mcp-servers-v1.2.json")

	gock.New("https://api.github.com").
		Get("/repos/acme/catalog/releases/latest").
		Reply(http.StatusOK).
		JSON(github.RepositoryRelease{TagName: github.String("v1.2")})
	gock.New("https://github.com").
		Get("/acme/catalog/releases/download/v1.2/mcp-servers-v1.2.zip").
		Reply(http.StatusOK).
		Body(bytes.NewReader(archive))

	fsys := afero.NewMemMapFs()
	c, err := newTestFetcher(t, fsys).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if c.Source != SourceRelease || c.Tag != "v1.2" {
		t.Errorf("Source = %q, Tag = %q; want release v1.2", c.Source, c.Tag)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if !gock.IsDone() {
		t.Error("not all expected requests were made")
	}

	for _, name := range []string{"catalog-v1.2.json", "catalog-latest.json"} {
		if ok, _ := afero.Exists(fsys, filepath.Join(testCacheDir, name)); !ok {
			t.Errorf("cache file %s not written", name)
		}
	}
}

func TestFetch_PinnedVersionSkipsAPI(t *testing.T) {
	defer gock.OffAll()

	archive := buildArchive(t, map[string]string{"servers.json": sampleJSON}, "servers.json")
	gock.New("https://github.com").
		Get("/acme/catalog/releases/download/v2.0/mcp-servers-v2.0.zip").
		MatchHeader("Authorization", "Bearer ghp_test").
		Reply(http.StatusOK).
		Body(bytes.NewReader(archive))

	f := newTestFetcher(t, afero.NewMemMapFs(), WithVersion("v2.0"), WithToken("ghp_test"))
	c, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if c.Source != SourceRelease || c.Tag != "v2.0" {
		t.Errorf("Source = %q, Tag = %q", c.Source, c.Tag)
	}
	if gock.HasUnmatchedRequest() {
		t.Error("unexpected unmatched request")
	}
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	defer gock.OffAll()

	archive := buildArchive(t, map[string]string{"servers.json": sampleJSON}, "servers.json")
	gock.New("https://github.com").
		Get("/acme/catalog/releases/download/v3/mcp-servers-v3.zip").
		Times(2).
		Reply(http.StatusBadGateway)
	gock.New("https://github.com").
		Get("/acme/catalog/releases/download/v3/mcp-servers-v3.zip").
		Reply(http.StatusOK).
		Body(bytes.NewReader(archive))

	c, err := newTestFetcher(t, afero.NewMemMapFs(), WithVersion("v3")).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if c.Source != SourceRelease {
		t.Errorf("Source = %q, want release after retries", c.Source)
	}
	if !gock.IsDone() {
		t.Error("expected three download attempts")
	}
}

func TestFetch_NotFoundIsNotRetried(t *testing.T) {
	defer gock.OffAll()

	gock.New("https://github.com").
		Get("/acme/catalog/releases/download/v4/mcp-servers-v4.zip").
		Reply(http.StatusNotFound)

	c, err := newTestFetcher(t, afero.NewMemMapFs(), WithVersion("v4")).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if c.Source != SourceBuiltin {
		t.Errorf("Source = %q, want builtin", c.Source)
	}
	if gock.HasUnmatchedRequest() {
		t.Error("a 404 should not be retried")
	}
}

func TestFetch_FallbackOrder(t *testing.T) {
	const localCatalog = "- name: Local\n  mcp:\n    local:\n      command: run\n"

	tests := []struct {
		name       string
		setup      func(t *testing.T, fsys afero.Fs)
		opts       []Option
		wantSource Source
		wantFirst  string
	}{
		{
			name: "cache",
			setup: func(t *testing.T, fsys afero.Fs) {
				writeFile(t, fsys, filepath.Join(testCacheDir, "catalog-latest.json"), sampleJSON)
			},
			wantSource: SourceCache,
			wantFirst:  "GitHub",
		},
		{
			name: "local file",
			setup: func(t *testing.T, fsys afero.Fs) {
				writeFile(t, fsys, "/work/catalog.yaml", localCatalog)
			},
			opts:       []Option{WithLocalFile("/work/catalog.yaml")},
			wantSource: SourceFile,
			wantFirst:  "Local",
		},
		{
			name: "template",
			setup: func(t *testing.T, fsys afero.Fs) {
				writeFile(t, fsys, "/work/templates/base_mcp.json", sampleJSON)
			},
			opts:       []Option{WithTemplates("/work/templates/mcp-servers-sample.json", "/work/templates/base_mcp.json")},
			wantSource: SourceFile,
			wantFirst:  "GitHub",
		},
		{
			name: "corrupt cache falls through to builtin",
			setup: func(t *testing.T, fsys afero.Fs) {
				writeFile(t, fsys, filepath.Join(testCacheDir, "catalog-latest.json"), "{broken")
			},
			wantSource: SourceBuiltin,
			wantFirst:  "Fetch",
		},
		{
			name:       "builtin",
			setup:      func(*testing.T, afero.Fs) {},
			wantSource: SourceBuiltin,
			wantFirst:  "Fetch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer gock.OffAll()
			gock.New("https://api.github.com").
				Get("/repos/acme/catalog/releases/latest").
				Reply(http.StatusServiceUnavailable)

			fsys := afero.NewMemMapFs()
			tt.setup(t, fsys)

			c, err := newTestFetcher(t, fsys, tt.opts...).Fetch(context.Background())
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if c.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", c.Source, tt.wantSource)
			}
			if c.Entries[0].Name != tt.wantFirst {
				t.Errorf("first entry = %q, want %q", c.Entries[0].Name, tt.wantFirst)
			}
		})
	}
}

func TestFetch_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestFetcher(t, afero.NewMemMapFs(), WithVersion("v5")).Fetch(ctx); err == nil {
		t.Error("Fetch() expected context error")
	}
}

func TestFirstJSON(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		order   []string
		want    string
		wantErr error
	}{
		{
			name:  "skips directories and non-json",
			files: map[string]string{"docs/": "", "notes.txt": "x", "a.json": "[1]", "b.json": "[2]"},
			order: []string{"docs/", "notes.txt", "a.json", "b.json"},
			want:  "[1]",
		},
		{
			name:  "skips macos metadata",
			files: map[string]string{"__MACOSX/._a.json": "junk", "dir/A.JSON": "[3]"},
			order: []string{"__MACOSX/._a.json", "dir/A.JSON"},
			want:  "[3]",
		},
		{
			name:    "no json",
			files:   map[string]string{"readme.md": "hi"},
			order:   []string{"readme.md"},
			wantErr: ErrNoJSONInArchive,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := firstJSON(buildArchive(t, tt.files, tt.order...))
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Fatalf("firstJSON() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("firstJSON() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("firstJSON() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := firstJSON([]byte("not a zip")); err == nil {
		t.Error("firstJSON() expected error for invalid archive")
	}
}

func TestToken(t *testing.T) {
	t.Setenv("GH_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "from-github-token")

	if got := Token(""); got != "from-github-token" {
		t.Errorf("Token(\"\") = %q", got)
	}
	t.Setenv("GH_TOKEN", " from-gh ")
	if got := Token(""); got != "from-gh" {
		t.Errorf("Token(\"\") = %q, want GH_TOKEN to win", got)
	}
	if got := Token("flag"); got != "flag" {
		t.Errorf("Token(flag) = %q, want flag to win", got)
	}
}

func TestArchiveURL(t *testing.T) {
	f := newTestFetcher(t, afero.NewMemMapFs(), WithDownloadURL("https://mirror.example.com/"))
	want := "https://mirror.example.com/acme/catalog/releases/download/v1/mcp-servers-v1.zip"
	if got := f.ArchiveURL("v1"); got != want {
		t.Errorf("ArchiveURL() = %q, want %q", got, want)
	}
}

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
