package catalog

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/thoreinstein/mcpkit/internal/errors"
)

// ErrNoReleaseTag indicates the latest release carried no tag name.
var ErrNoReleaseTag = errors.New("latest release has no tag")

// Token returns the GitHub token to use: flag first, then GH_TOKEN, then
// GITHUB_TOKEN. Whitespace-only values count as unset.
func Token(flag string) string {
	for _, v := range []string{flag, os.Getenv("GH_TOKEN"), os.Getenv("GITHUB_TOKEN")} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// NewGitHubClient returns a GitHub API client, authenticated when token is
// non-empty.
func NewGitHubClient(ctx context.Context, token string) *github.Client {
	var client *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = oauth2.NewClient(ctx, ts)
	}
	return github.NewClient(client)
}

// LatestTag returns the tag of the newest published release of repo
// ("owner/name").
func LatestTag(ctx context.Context, client *github.Client, repo string) (string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return "", errors.Newf("invalid repository %q, want owner/name", repo)
	}
	release, _, err := client.Repositories.GetLatestRelease(ctx, owner, name)
	if err != nil {
		return "", errors.Wrap(err, "fetching latest release")
	}
	if release.GetTagName() == "" {
		return "", ErrNoReleaseTag
	}
	return release.GetTagName(), nil
}
