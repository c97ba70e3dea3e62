package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thoreinstein/mcpkit/internal/errors"
)

func TestResolveHome(t *testing.T) {
	got, err := ResolveHome()
	want, _ := os.UserHomeDir()

	if err != nil {
		if !errors.Is(err, ErrHomeDirNotFound) {
			t.Errorf("unexpected error type: %v", err)
		}
	} else if got != want {
		t.Errorf("ResolveHome() = %q, want %q", got, want)
	}
}

func TestExpandHome(t *testing.T) {
	home := filepath.FromSlash("/home/dev")
	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/.cursor/mcp.json", filepath.Join(home, ".cursor", "mcp.json")},
		{"/etc/mcp.json", "/etc/mcp.json"},
		{"relative/mcp.json", "relative/mcp.json"},
		{"~other/x", "~other/x"},
	}
	for _, tt := range tests {
		if got := ExpandHome(tt.in, home); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAppDirs(t *testing.T) {
	tests := []struct {
		name   string
		got    string
		base   string
		suffix string
	}{
		{"config dir", ConfigDir(), ConfigHome(), AppName},
		{"catalog cache", CatalogCacheDir(), CacheHome(), filepath.Join(AppName, "catalog")},
		{"backups", BackupDir(), ConfigHome(), filepath.Join(AppName, "backups")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !filepath.IsAbs(tt.got) {
				t.Errorf("%s = %q, want absolute path", tt.name, tt.got)
			}
			if !strings.HasPrefix(tt.got, tt.base) {
				t.Errorf("%s = %q, want prefix %q", tt.name, tt.got, tt.base)
			}
			if !strings.HasSuffix(tt.got, tt.suffix) {
				t.Errorf("%s = %q, want suffix %q", tt.name, tt.got, tt.suffix)
			}
		})
	}
}
