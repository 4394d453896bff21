package render

import (
	"fmt"
	"strings"

	"github.com/ppiankov/cartographer/internal/model"
	"github.com/ppiankov/cartographer/internal/sources"
)

// Markdown renders a report as a Markdown document
func Markdown(report *model.Report, includeFooter bool) string {
	var b strings.Builder

	title := report.Map.Title
	if title == "" {
		title = "Argument Map"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if report.Question != "" {
		fmt.Fprintf(&b, "**Question:** %s\n\n", report.Question)
	}
	fmt.Fprintf(&b, "_Style: %s_\n\n", report.Style)

	b.WriteString("## Argument\n\n")
	nodes := layout(&report.Map)
	if len(nodes) == 0 {
		b.WriteString("_The map has no elements._\n")
	}
	unattachedShown := false
	for _, n := range nodes {
		if !n.attached && !unattachedShown {
			b.WriteString("\n**Unattached elements**\n\n")
			unattachedShown = true
		}
		indent := strings.Repeat("  ", n.depth)
		fmt.Fprintf(&b, "%s- **%s:** %s\n", indent, n.el.Type, escapeInline(n.el.Content))
		if n.el.SourceText != nil && strings.TrimSpace(*n.el.SourceText) != "" {
			fmt.Fprintf(&b, "%s  > %s\n", indent, escapeInline(strings.TrimSpace(*n.el.SourceText)))
		}
	}

	writeSourcesMarkdown(&b, report)
	writeDiagnosticsMarkdown(&b, report.Diagnostics)

	if includeFooter {
		fmt.Fprintf(&b, "\n---\n\n_Generated by cartographer")
		if !report.CompletedAt.IsZero() {
			fmt.Fprintf(&b, " on %s", report.CompletedAt.UTC().Format("2006-01-02 15:04 UTC"))
		}
		b.WriteString("._\n")
	}
	return b.String()
}

func writeSourcesMarkdown(b *strings.Builder, report *model.Report) {
	b.WriteString("\n## Sources\n\n")
	if len(report.Sources) == 0 {
		b.WriteString("_No sources were returned._\n")
		return
	}

	if len(report.SourceChecks) == 0 {
		for _, src := range report.Sources {
			fmt.Fprintf(b, "- <%s>\n", src)
		}
		return
	}

	order, groups := sources.GroupByDomain(report.SourceChecks)
	for _, domain := range order {
		fmt.Fprintf(b, "### %s\n\n", domain)
		b.WriteString("| URL | Authority | Status | Title |\n")
		b.WriteString("|-----|-----------|--------|-------|\n")
		for _, c := range groups[domain] {
			fmt.Fprintf(b, "| <%s> | %s | %s | %s |\n",
				c.URL, c.Authority, markdownStatus(c), escapeCell(c.Title))
		}
		b.WriteString("\n")
	}
}

func markdownStatus(c model.SourceCheck) string {
	switch {
	case c.Skipped != "":
		return "skipped: " + escapeCell(c.Skipped)
	case c.Error != "":
		return "error"
	case c.Checked:
		return fmt.Sprintf("%d", c.StatusCode)
	default:
		return "-"
	}
}

func writeDiagnosticsMarkdown(b *strings.Builder, d model.Diagnostics) {
	b.WriteString("\n## Structure\n\n")
	b.WriteString("| Type | Count |\n|------|-------|\n")
	for _, t := range model.ElementTypes {
		fmt.Fprintf(b, "| %s | %d |\n", t, d.Counts[t])
	}
	fmt.Fprintf(b, "\nDepth: %d\n", d.Depth)

	if len(d.Signals) > 0 {
		b.WriteString("\n")
		for _, s := range d.Signals {
			fmt.Fprintf(b, "- **%s** (%s): %s\n", s.Type, s.Severity, s.Description)
		}
	}
}

// SummaryMarkdown renders an LLM summary on its own
func SummaryMarkdown(summary *model.Summary) string {
	if summary == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Summary\n\n_%s/%s. Cites only the sources returned with the map._\n\n", summary.Provider, summary.Model)
	if summary.Text != "" {
		fmt.Fprintf(&b, "%s\n", summary.Text)
	} else {
		b.WriteString("_No summary was generated._\n")
	}
	if len(summary.CitedURLs) > 0 {
		b.WriteString("\n## Cited sources\n\n")
		for _, u := range summary.CitedURLs {
			fmt.Fprintf(&b, "- <%s>\n", u)
		}
	}
	if len(summary.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range summary.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

func escapeInline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(escapeInline(s), "|", `\|`)
}
