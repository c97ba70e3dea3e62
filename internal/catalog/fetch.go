package catalog

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v62/github"
	"github.com/spf13/afero"

	"github.com/thoreinstein/mcpkit/internal/errors"
	"github.com/thoreinstein/mcpkit/pkg/fileutil"
)

// Fetch defaults.
const (
	DefaultRepo          = "rohitsoni007/mcp-kit"
	DefaultVersion       = "latest"
	DefaultDownloadURL   = "https://github.com"
	DefaultTimeout       = 30 * time.Second
	DefaultRetries       = 3
	DefaultRetryInterval = time.Second
)

// DefaultTemplates are the local files tried after the cache and the
// configured catalog file, relative to the working directory.
var DefaultTemplates = []string{
	"templates/mcp-servers-sample.json",
	"templates/base_mcp.json",
	"mcp-servers-sample.json",
}

// ErrNoJSONInArchive indicates the release archive held no .json file.
var ErrNoJSONInArchive = errors.New("no JSON catalog in release archive")

// Fetcher loads the catalog with the fallback chain described in the
// package documentation. Build one with NewFetcher.
type Fetcher struct {
	fs            afero.Fs
	client        *http.Client
	github        *github.Client
	token         string
	repo          string
	version       string
	downloadURL   string
	cacheDir      string
	localFile     string
	templates     []string
	retries       uint
	retryInterval time.Duration
	logger        *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRepo sets the GitHub owner/name publishing catalog releases.
func WithRepo(repo string) Option {
	return func(f *Fetcher) {
		if repo != "" {
			f.repo = repo
		}
	}
}

// WithVersion sets the release tag to download, or "latest".
func WithVersion(version string) Option {
	return func(f *Fetcher) {
		if version != "" {
			f.version = version
		}
	}
}

// WithToken authenticates GitHub API calls and downloads.
func WithToken(token string) Option {
	return func(f *Fetcher) {
		f.token = token
	}
}

// WithCacheDir sets where downloaded catalogs are cached. Empty disables
// caching.
func WithCacheDir(dir string) Option {
	return func(f *Fetcher) {
		f.cacheDir = dir
	}
}

// WithLocalFile sets a local catalog (JSON, YAML or TOML) tried after the cache.
func WithLocalFile(p string) Option {
	return func(f *Fetcher) {
		f.localFile = p
	}
}

// WithTemplates replaces DefaultTemplates.
func WithTemplates(templates ...string) Option {
	return func(f *Fetcher) {
		f.templates = templates
	}
}

// WithDownloadURL overrides the release download host.
func WithDownloadURL(base string) Option {
	return func(f *Fetcher) {
		f.downloadURL = strings.TrimSuffix(base, "/")
	}
}

// WithHTTPClient overrides the client used for archive downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithGitHubClient overrides the API client used to resolve "latest".
func WithGitHubClient(c *github.Client) Option {
	return func(f *Fetcher) {
		f.github = c
	}
}

// WithRetry sets the retry count and initial backoff interval for downloads.
func WithRetry(retries uint, interval time.Duration) Option {
	return func(f *Fetcher) {
		f.retries = retries
		f.retryInterval = interval
	}
}

// WithLogger sets the logger for fallback warnings.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher returns a Fetcher reading local files from fsys.
func NewFetcher(ctx context.Context, fsys afero.Fs, opts ...Option) *Fetcher {
	f := &Fetcher{
		fs:            fsys,
		repo:          DefaultRepo,
		version:       DefaultVersion,
		downloadURL:   DefaultDownloadURL,
		templates:     DefaultTemplates,
		retries:       DefaultRetries,
		retryInterval: DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: DefaultTimeout}
	}
	if f.github == nil {
		f.github = NewGitHubClient(ctx, f.token)
	}
	return f
}

// Fetch returns the catalog. Download problems are logged and trigger the
// fallback chain; the only error returned is context cancellation.
func (f *Fetcher) Fetch(ctx context.Context) (*Catalog, error) {
	tag, err := f.resolveTag(ctx)
	if err == nil {
		var c *Catalog
		if c, err = f.fromRelease(ctx, tag); err == nil {
			return c, nil
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	f.logger.Warn("catalog download failed, using fallback", "repo", f.repo, "version", f.version, "error", err)

	for _, key := range uniq(tag, f.version) {
		if c, err := f.fromFile(f.cachePath(key), SourceCache); err == nil {
			c.Tag = key
			return c, nil
		}
	}
	if f.localFile != "" {
		c, err := f.fromFile(f.localFile, SourceFile)
		if err == nil {
			return c, nil
		}
		f.logger.Warn("could not load catalog file", "path", f.localFile, "error", err)
	}
	for _, p := range f.templates {
		if c, err := f.fromFile(p, SourceFile); err == nil {
			return c, nil
		}
	}

	f.logger.Info("using built-in catalog")
	return Builtin(), nil
}

func (f *Fetcher) resolveTag(ctx context.Context) (string, error) {
	if f.version != DefaultVersion {
		return f.version, nil
	}
	return LatestTag(ctx, f.github, f.repo)
}

// ArchiveURL returns the release asset URL for tag.
func (f *Fetcher) ArchiveURL(tag string) string {
	return fmt.Sprintf("%s/%s/releases/download/%s/mcp-servers-%s.zip", f.downloadURL, f.repo, tag, tag)
}

func (f *Fetcher) fromRelease(ctx context.Context, tag string) (*Catalog, error) {
	body, err := f.download(ctx, f.ArchiveURL(tag))
	if err != nil {
		return nil, err
	}
	data, err := firstJSON(body)
	if err != nil {
		return nil, err
	}
	entries, err := f.decode(data, FormatJSON, "release "+tag)
	if err != nil {
		return nil, err
	}

	for _, key := range uniq(tag, f.version) {
		f.writeCache(key, data)
	}
	return &Catalog{Entries: entries, Source: SourceRelease, Tag: tag}, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(backoff.WithInitialInterval(f.retryInterval)), uint64(f.retries)),
		ctx,
	)
	get := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(errors.Wrap(err, "building request"))
		}
		if f.token != "" {
			req.Header.Set("Authorization", "Bearer "+f.token)
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, errors.Wrap(err, "downloading catalog")
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := errors.Newf("downloading catalog: unexpected status %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, fileutil.MaxFileSize+1))
		if err != nil {
			return nil, errors.Wrap(err, "reading catalog archive")
		}
		if len(body) > fileutil.MaxFileSize {
			return nil, backoff.Permanent(fileutil.ErrFileTooLarge)
		}
		return body, nil
	}
	return backoff.RetryNotifyWithData(get, policy, func(err error, d time.Duration) {
		f.logger.Debug("retrying catalog download", "url", url, "in", d, "error", err)
	})
}

// firstJSON returns the contents of the first .json file in a zip archive.
func firstJSON(archive []byte) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, errors.Wrap(err, "opening release archive")
	}
	for _, file := range r.File {
		name := file.Name
		if file.FileInfo().IsDir() || strings.HasPrefix(name, "__MACOSX/") || !strings.EqualFold(path.Ext(name), ".json") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", name)
		}
		data, err := io.ReadAll(io.LimitReader(rc, fileutil.MaxFileSize+1))
		rc.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", name)
		}
		if len(data) > fileutil.MaxFileSize {
			return nil, fileutil.ErrFileTooLarge
		}
		return data, nil
	}
	return nil, ErrNoJSONInArchive
}

func (f *Fetcher) fromFile(p string, source Source) (*Catalog, error) {
	if p == "" {
		return nil, errors.New("no path")
	}
	data, err := fileutil.ReadFileWithLimit(f.fs, p)
	if err != nil {
		return nil, err
	}
	entries, err := f.decode(data, FormatFromPath(p), p)
	if err != nil {
		return nil, err
	}
	return &Catalog{Entries: entries, Source: source, Path: p}, nil
}

func (f *Fetcher) decode(data []byte, format Format, origin string) ([]Entry, error) {
	entries, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	entries, issues := Sanitize(entries)
	for _, issue := range issues {
		f.logger.Debug("catalog entry issue", "origin", origin, "issue", issue.Error())
	}
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	return entries, nil
}

func (f *Fetcher) cachePath(key string) string {
	if f.cacheDir == "" || key == "" {
		return ""
	}
	return filepath.Join(f.cacheDir, "catalog-"+sanitizeKey(key)+".json")
}

func (f *Fetcher) writeCache(key string, data []byte) {
	p := f.cachePath(key)
	if p == "" {
		return
	}
	if err := f.fs.MkdirAll(f.cacheDir, 0o755); err != nil {
		f.logger.Debug("could not create catalog cache dir", "error", err)
		return
	}
	if err := fileutil.AtomicWriteFile(f.fs, p, data, 0o644); err != nil {
		f.logger.Debug("could not write catalog cache", "path", p, "error", err)
	}
}

func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, key)
}

func uniq(values ...string) []string {
	var out []string
	for _, v := range values {
		if v == "" {
			continue
		}
		dup := false
		for _, o := range out {
			if o == v {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}
