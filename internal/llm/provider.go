// Package llm writes optional plain-language summaries of argument maps.
// Summaries may only cite URLs the analysis service returned as sources.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/cartographer/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a summary of the report, citing only allowed URLs
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	Report model.Report

	// AllowedURLs is the strict allowlist of URLs the summary may cite.
	// It is always the sources list returned with the map.
	AllowedURLs []string

	// Prompt overrides the default prompt when set
	Prompt string

	Model     string
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	Summary    string
	CitedURLs  []string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", "" (disabled)
	Provider string
	Model    string
	APIKey   string

	// BaseURL points at any OpenAI-compatible endpoint
	BaseURL string

	Timeout   int // seconds
	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
}

const (
	maxPromptElements = 60
	maxPromptURLs     = 20
	maxElementChars   = 240
)

// BuildPrompt constructs the default summarization prompt for an argument map
func BuildPrompt(report model.Report, allowedURLs []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are describing the structure of an argument map. Describe how the argument is built; NEVER judge whether any claim is true.

RULES:
1. You may ONLY cite URLs from this list:%s

2. Do not cite or invent any other source.
3. Say so explicitly when claims lack evidence.
4. Mention logical fallacies and counterclaims if the map contains them.

Question: %s
Map title: %s
Elements: %d (%s)
Depth: %d
`, joinURLs(allowedURLs), orNone(report.Question), orNone(report.Map.Title),
		len(report.Map.Elements), formatCounts(report.Diagnostics.Counts), report.Diagnostics.Depth)

	if n := len(report.Diagnostics.UnsupportedClaims); n > 0 {
		fmt.Fprintf(&b, "Claims without evidence: %d\n", n)
	}

	b.WriteString("\nOutline:\n")
	writeOutline(&b, report.Map)

	if len(report.Diagnostics.Signals) > 0 {
		b.WriteString("\nStructural notes:\n")
		for i, signal := range report.Diagnostics.Signals {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "- %s: %s\n", signal.Type, signal.Description)
		}
	}

	b.WriteString("\nWrite a 3-5 sentence summary of the argument's structure and how well its claims are supported.")
	return b.String()
}

// writeOutline renders the map depth-first, indenting children under parents.
// Elements unreachable from a root (cycles, dangling parents) are listed last.
func writeOutline(b *strings.Builder, m model.ArgumentMap) {
	written := 0
	seen := make(map[string]bool)

	var walk func(el model.ArgumentElement, depth int)
	walk = func(el model.ArgumentElement, depth int) {
		if seen[el.ID] || written >= maxPromptElements {
			return
		}
		seen[el.ID] = true
		written++
		fmt.Fprintf(b, "%s- [%s] %s\n", strings.Repeat("  ", depth), el.Type, truncate(el.Content, maxElementChars))
		for _, child := range m.Children(el.ID) {
			walk(child, depth+1)
		}
	}

	for _, root := range m.Roots() {
		walk(root, 0)
	}
	for _, el := range m.Elements {
		walk(el, 0)
	}

	if rest := len(m.Elements) - written; rest > 0 && written >= maxPromptElements {
		fmt.Fprintf(b, "... and %d more elements\n", rest)
	}
}

func formatCounts(counts map[model.ElementType]int) string {
	parts := make([]string, 0, len(model.ElementTypes))
	for _, t := range model.ElementTypes {
		if n := counts[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, t))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func joinURLs(urls []string) string {
	if len(urls) == 0 {
		return "\n(No source URLs available; do not cite any URL)"
	}
	var b strings.Builder
	for i, u := range urls {
		if i >= maxPromptURLs {
			fmt.Fprintf(&b, "\n... and %d more URLs", len(urls)-maxPromptURLs)
			break
		}
		fmt.Fprintf(&b, "\n- %s", u)
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
