package doctor

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// Reporter writes a Report as grouped, colored text.
type Reporter struct {
	out     io.Writer
	verbose bool

	colors map[Severity]*color.Color
	dim    *color.Color
}

// NewReporter returns a Reporter writing to out. With color false every
// style is plain text. Passing checks and details are only printed when
// verbose is set.
func NewReporter(out io.Writer, useColor, verbose bool) *Reporter {
	r := &Reporter{
		out:     out,
		verbose: verbose,
		colors: map[Severity]*color.Color{
			SeverityPass:    color.New(color.FgGreen),
			SeverityInfo:    color.New(color.FgCyan),
			SeverityWarning: color.New(color.FgYellow),
			SeverityError:   color.New(color.FgRed),
		},
		dim: color.New(color.FgHiBlack),
	}
	for _, c := range append([]*color.Color{r.dim}, r.styles()...) {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *Reporter) styles() []*color.Color {
	out := make([]*color.Color, 0, len(r.colors))
	for _, c := range r.colors {
		out = append(out, c)
	}
	return out
}

// Report writes the results grouped by category, then a summary line.
func (r *Reporter) Report(report *Report) {
	if report == nil {
		return
	}

	byCategory := make(map[string][]*CheckResult)
	var categories []string
	for _, res := range report.Results {
		if _, ok := byCategory[res.Category]; !ok {
			categories = append(categories, res.Category)
		}
		byCategory[res.Category] = append(byCategory[res.Category], res)
	}

	for _, cat := range categories {
		fmt.Fprintf(r.out, "%s\n", title(cat))
		for _, res := range byCategory[cat] {
			r.printResult(res)
		}
		fmt.Fprintln(r.out)
	}

	r.printSummary(report.Summary)
}

func (r *Reporter) printResult(res *CheckResult) {
	c := r.colors[res.Status]
	fmt.Fprintf(r.out, "  %s %s: %s\n", c.Sprint(res.Status.Icon()), res.Name, res.Message)

	if res.FixHint != "" && res.Status >= SeverityWarning {
		fmt.Fprintf(r.out, "    %s\n", r.dim.Sprint("→ "+res.FixHint))
	}
	if !r.verbose || len(res.Details) == 0 {
		return
	}

	keys := make([]string, 0, len(res.Details))
	for k := range res.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(r.out, "    %s\n", r.dim.Sprintf("%s: %v", k, res.Details[k]))
	}
}

func (r *Reporter) printSummary(s Summary) {
	parts := []string{r.colors[SeverityPass].Sprintf("%d passed", s.Passed)}
	if s.Info > 0 {
		parts = append(parts, r.colors[SeverityInfo].Sprintf("%d info", s.Info))
	}
	if s.Warnings > 0 {
		parts = append(parts, r.colors[SeverityWarning].Sprintf("%d warning(s)", s.Warnings))
	}
	if s.Errors > 0 {
		parts = append(parts, r.colors[SeverityError].Sprintf("%d error(s)", s.Errors))
	}
	fmt.Fprintf(r.out, "Summary: %s\n", strings.Join(parts, ", "))
}

func title(category string) string {
	if category == "" {
		return "Other"
	}
	return strings.ToUpper(category[:1]) + category[1:]
}
