package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/cartographer/internal/model"
)

var styleHeadings = map[model.VisualizationStyle]string{
	model.StyleClassicTree: "Classic Tree",
	model.StyleOrgChart:    "Org Chart",
	model.StylePillarView:  "Pillar View",
}

// Tree writes a successful report to w as an indented tree followed by
// sources, diagnostics and the optional summary
func Tree(w io.Writer, report *model.Report) {
	heading := styleHeadings[report.Style]
	if heading == "" {
		heading = string(model.StyleClassicTree)
	}
	title := report.Map.Title
	if title == "" {
		title = "Argument Map"
	}

	fmt.Fprintf(w, "\n%s · %s\n", heading, title)
	fmt.Fprintf(w, "%s\n", strings.Repeat("─", 59))
	if report.Question != "" {
		fmt.Fprintf(w, "Question: %s\n\n", report.Question)
	}

	nodes := layout(&report.Map)
	if len(nodes) == 0 {
		fmt.Fprintf(w, "  (the map has no elements)\n")
	}
	unattachedShown := false
	for _, n := range nodes {
		if !n.attached && !unattachedShown {
			fmt.Fprintf(w, "\nUnattached:\n")
			unattachedShown = true
		}
		prefix := treePrefix(n)
		fmt.Fprintf(w, "%s%s %s: %s\n", prefix, marker(n.el.Type), n.el.Type, n.el.Content)
		if n.el.SourceText != nil && strings.TrimSpace(*n.el.SourceText) != "" {
			fmt.Fprintf(w, "%s    “%s”\n", continuationPrefix(n), strings.TrimSpace(*n.el.SourceText))
		}
	}

	writeSourcesText(w, report)
	writeDiagnosticsText(w, report.Diagnostics)

	if s := report.Summary; s != nil {
		fmt.Fprintf(w, "\nSummary (%s/%s):\n", s.Provider, s.Model)
		if s.Text != "" {
			fmt.Fprintf(w, "  %s\n", s.Text)
		}
		for _, warning := range s.Warnings {
			fmt.Fprintf(w, "  · %s\n", warning)
		}
	}
	fmt.Fprintln(w)
}

// Failure writes the single human-readable message of a failed attempt
func Failure(w io.Writer, failure *model.Failure) {
	fmt.Fprintf(w, "✗ %s\n", failure.Message())
}

// treePrefix draws the branch characters for a node; roots have none
func treePrefix(n node) string {
	if n.depth == 0 {
		return ""
	}
	var b strings.Builder
	for i := 1; i < n.depth; i++ {
		if n.last[i] {
			b.WriteString("    ")
		} else {
			b.WriteString("│   ")
		}
	}
	if n.last[n.depth] {
		b.WriteString("└── ")
	} else {
		b.WriteString("├── ")
	}
	return b.String()
}

// continuationPrefix aligns text under a node's content
func continuationPrefix(n node) string {
	var b strings.Builder
	for i := 1; i <= n.depth; i++ {
		if n.last[i] {
			b.WriteString("    ")
		} else {
			b.WriteString("│   ")
		}
	}
	return b.String()
}

func writeSourcesText(w io.Writer, report *model.Report) {
	fmt.Fprintf(w, "\nSources (%d):\n", len(report.Sources))
	if len(report.Sources) == 0 {
		fmt.Fprintf(w, "  none\n")
		return
	}

	checks := make(map[string]model.SourceCheck, len(report.SourceChecks))
	for _, c := range report.SourceChecks {
		checks[c.URL] = c
	}

	for _, src := range report.Sources {
		c, ok := checks[src]
		if !ok {
			fmt.Fprintf(w, "  - %s\n", src)
			continue
		}
		fmt.Fprintf(w, "  - [%s] %s%s\n", c.Authority, src, checkSuffix(c))
	}
}

func checkSuffix(c model.SourceCheck) string {
	switch {
	case c.Skipped != "":
		return fmt.Sprintf(" (%s)", c.Skipped)
	case c.Reachable && c.Title != "":
		return fmt.Sprintf(" ✓ %d %q", c.StatusCode, c.Title)
	case c.Reachable:
		return fmt.Sprintf(" ✓ %d", c.StatusCode)
	case c.Error != "":
		return fmt.Sprintf(" ✗ %s", c.Error)
	case c.Checked:
		return fmt.Sprintf(" ✗ %d", c.StatusCode)
	default:
		return ""
	}
}

func writeDiagnosticsText(w io.Writer, d model.Diagnostics) {
	var counts []string
	for _, t := range model.ElementTypes {
		if n := d.Counts[t]; n > 0 {
			counts = append(counts, fmt.Sprintf("%d %s", n, t))
		}
	}
	if len(counts) == 0 && len(d.Signals) == 0 {
		return
	}

	fmt.Fprintf(w, "\nStructure: %s, depth %d\n", strings.Join(counts, ", "), d.Depth)
	for _, s := range d.Signals {
		fmt.Fprintf(w, "  %s %s\n", severityMarker(s.Severity), s.Description)
	}
}

func severityMarker(s model.SignalSeverity) string {
	switch s {
	case model.SeverityCritical:
		return "✗"
	case model.SeverityWarning:
		return "⚠"
	default:
		return "·"
	}
}
