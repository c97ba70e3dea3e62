package catalog

import "fmt"

// Level represents the severity of a validation issue.
type Level int

const (
	// Warning marks an entry that is kept but looks off.
	Warning Level = iota
	// Error marks an entry that is dropped.
	Error
)

// Issue represents a problem found in one catalog entry.
type Issue struct {
	Level   Level
	Index   int
	Field   string
	Message string
}

func (i Issue) Error() string {
	return fmt.Sprintf("entry %d: %s: %s", i.Index, i.Field, i.Message)
}

// Sanitize applies the presence checks: entries without a name or without
// any server spec are dropped, negative popularity is clamped to zero and a
// missing publisher is recorded as a warning. Order is preserved.
func Sanitize(entries []Entry) ([]Entry, []Issue) {
	var (
		kept   = make([]Entry, 0, len(entries))
		issues []Issue
	)
	for i, e := range entries {
		switch {
		case e.Name == "":
			issues = append(issues, Issue{Level: Error, Index: i, Field: "name", Message: "missing"})
			continue
		case e.Fragment == nil || e.Fragment.Len() == 0:
			issues = append(issues, Issue{Level: Error, Index: i, Field: "mcp", Message: "no server definitions"})
			continue
		}
		if e.Popularity < 0 {
			issues = append(issues, Issue{Level: Warning, Index: i, Field: "stargazer_count", Message: "negative, using 0"})
			e.Popularity = 0
		}
		if e.Publisher == "" {
			issues = append(issues, Issue{Level: Warning, Index: i, Field: "by", Message: "missing publisher"})
		}
		kept = append(kept, e)
	}
	return kept, issues
}
