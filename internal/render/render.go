// Package render presents analysis results: a terminal tree, JSON and
// Markdown files. Visualization styles only change the heading.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/cartographer/internal/model"
)

// Renderer writes reports to files
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer; the footer is a provenance line at the
// end of Markdown output
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// Document is the JSON shape written for a report
type Document struct {
	AttemptID    string                   `json:"attempt_id"`
	Question     string                   `json:"question"`
	Mode         model.InputMode          `json:"mode"`
	Style        model.VisualizationStyle `json:"style"`
	CompletedAt  time.Time                `json:"completed_at"`
	Title        string                   `json:"title"`
	Elements     []model.ArgumentElement  `json:"elements"`
	Sources      []string                 `json:"sources"`
	Diagnostics  model.Diagnostics        `json:"diagnostics"`
	SourceChecks []model.SourceCheck      `json:"source_checks,omitempty"`
	Summary      *model.Summary           `json:"summary,omitempty"`
}

// NewDocument flattens a report into its JSON shape
func NewDocument(report *model.Report) Document {
	elements := report.Map.Elements
	if elements == nil {
		elements = []model.ArgumentElement{}
	}
	sources := report.Sources
	if sources == nil {
		sources = []string{}
	}
	return Document{
		AttemptID:    report.AttemptID,
		Question:     report.Question,
		Mode:         report.Mode,
		Style:        report.Style,
		CompletedAt:  report.CompletedAt,
		Title:        report.Map.Title,
		Elements:     elements,
		Sources:      sources,
		Diagnostics:  report.Diagnostics,
		SourceChecks: report.SourceChecks,
		Summary:      report.Summary,
	}
}

// MarshalJSON renders the report document as indented JSON
func MarshalJSON(report *model.Report) ([]byte, error) {
	data, err := json.MarshalIndent(NewDocument(report), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderJSON writes the report as JSON to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := MarshalJSON(report)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// RenderMarkdown writes the report as Markdown to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(Markdown(report, r.includeFooter)))
}

// RenderSummaryMarkdown writes the LLM summary to its own Markdown file so
// it is never mistaken for part of the returned map
func (r *Renderer) RenderSummaryMarkdown(summary *model.Summary, path string) error {
	return writeFile(path, []byte(SummaryMarkdown(summary)))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Slug turns a title or question into a file name stem
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= 80 {
			break
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		return "analysis"
	}
	return slug
}
