// Package redact masks credentials that appear in MCP server definitions
// and log attributes.
package redact

import (
	"net/url"
	"strings"
)

// SecretKeyPatterns contains substrings that indicate a key likely contains sensitive data.
// Keys are matched case-insensitively.
var SecretKeyPatterns = []string{
	"TOKEN",
	"KEY",
	"SECRET",
	"PASSWORD",
	"AUTH",
	"CREDENTIAL",
	"PRIVATE",
}

// TokenPrefixes contains known API token prefixes that indicate sensitive values
// regardless of key name.
var TokenPrefixes = []string{
	"ghp_",  // GitHub personal access token
	"gho_",  // GitHub OAuth token
	"ghs_",  // GitHub server-to-server token
	"github_pat_",
	"sk-",   // OpenAI/Anthropic keys
	"AKIA",  // AWS access key prefix
	"xoxb-", // Slack bot token
	"xoxp-", // Slack user token
	"Bearer ",
}

// Value masks a potentially sensitive string.
// Values with 4 or fewer characters are fully masked as "********".
// Longer values show the last 4 characters: "****xxxx".
func Value(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}

// URL redacts the password and any secret-looking query parameters.
// If the URL cannot be parsed, it is returned unchanged.
func URL(rawURL string) string {
	if rawURL == "" {
		return rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}

	changed := false
	if parsed.User != nil {
		if password, ok := parsed.User.Password(); ok && password != "" {
			parsed.User = url.UserPassword(parsed.User.Username(), Value(password))
			changed = true
		}
	}

	q := parsed.Query()
	for k, vs := range q {
		if !ShouldMask(k) {
			continue
		}
		for i := range vs {
			vs[i] = Value(vs[i])
		}
		changed = true
	}
	if !changed {
		return rawURL
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

// ShouldMask returns true if the key name suggests it contains sensitive data.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range SecretKeyPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// attrSecretWords are whole words of a log attribute name that mark it as
// secret. KEY and AUTH only count after another word (api_key, basic-auth)
// so plain "key" or "author" attributes stay readable.
var attrSecretWords = map[string]bool{
	"TOKEN":         true,
	"TOKENS":        true,
	"SECRET":        true,
	"SECRETS":       true,
	"PASSWORD":      true,
	"PASSWD":        true,
	"AUTHORIZATION": true,
	"CREDENTIAL":    true,
	"CREDENTIALS":   true,
	"APIKEY":        true,
}

// ShouldMaskAttr reports whether a log attribute name looks like it holds a
// credential. Unlike ShouldMask it matches whole words split on '_', '-'
// and '.', plus camel-case suffixes such as accessToken.
func ShouldMaskAttr(key string) bool {
	words := strings.FieldsFunc(strings.ToUpper(key), func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, w := range words {
		if attrSecretWords[w] {
			return true
		}
		if i > 0 && (w == "KEY" || w == "AUTH") {
			return true
		}
		if len(w) > len("TOKEN") && (strings.HasSuffix(w, "TOKEN") || strings.HasSuffix(w, "SECRET") || strings.HasSuffix(w, "PASSWORD")) {
			return true
		}
	}
	return false
}

// HasTokenPrefix returns true if the value starts with a known token prefix.
func HasTokenPrefix(value string) bool {
	for _, prefix := range TokenPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

// Arg masks a single command-line argument. Flags of the form
// --api-key=VALUE keep their name; bare token-looking values are masked whole.
func Arg(arg string) string {
	if name, val, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(name, "-") {
		if ShouldMask(name) || HasTokenPrefix(val) {
			return name + "=" + Value(val)
		}
		return arg
	}
	if HasTokenPrefix(arg) {
		return Value(arg)
	}
	return arg
}

// Tree returns a copy of v with sensitive leaves masked. Maps keyed by
// secret-looking names have their string values masked; "url" keys are
// passed through URL and "args" entries through Arg.
func Tree(v any) any {
	return walk("", v)
}

func walk(key string, v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = walk(k, child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			if key == "args" {
				if s, ok := child.(string); ok {
					out[i] = Arg(s)
					continue
				}
			}
			out[i] = walk("", child)
		}
		return out
	case string:
		switch {
		case key == "url":
			return URL(t)
		case key != "" && ShouldMask(key), HasTokenPrefix(t):
			return Value(t)
		}
		return t
	default:
		return v
	}
}
