package cli

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// maxSuggestions caps "did you mean" lists.
const maxSuggestions = 3

// Suggest returns the candidates closest to name, best first.
func Suggest(name string, candidates []string) []string {
	if name == "" || len(candidates) == 0 {
		return nil
	}
	matches := fuzzy.Find(strings.ToLower(name), lowered(candidates))
	out := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		out = append(out, candidates[m.Index])
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// DidYouMean formats Suggest as a hint, or returns "" when nothing is close.
func DidYouMean(name string, candidates []string) string {
	s := Suggest(name, candidates)
	if len(s) == 0 {
		return ""
	}
	return "Did you mean: " + strings.Join(s, ", ") + "?"
}

func lowered(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}
