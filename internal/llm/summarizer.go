package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/cartographer/internal/model"
)

// Summarizer wraps an optional provider. Failures become warnings on the
// summary and never fail the analysis.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer; a disabled provider yields a no-op one
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the configured provider name, or "" when disabled
func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary summarizes report.Map citing only report.Sources.
// It returns nil when no provider is configured.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.Report) (*model.Summary, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	summary := &model.Summary{
		Provider: s.provider.Name(),
		Model:    s.config.Model,
	}

	if !s.provider.IsAvailable(ctx) {
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("LLM provider %s is not available", s.provider.Name()))
		return summary, nil
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:      report,
		AllowedURLs: report.Sources,
		Model:       s.config.Model,
		MaxTokens:   s.config.MaxTokens,
	})
	if err != nil {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("summary generation failed: %v", err))
		return summary, nil
	}

	summary.Text = resp.Summary
	summary.CitedURLs = resp.CitedURLs
	if resp.Model != "" {
		summary.Model = resp.Model
	}
	if resp.TokensUsed > 0 {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("Tokens used: %d", resp.TokensUsed))
	}
	summary.Warnings = append(summary.Warnings,
		fmt.Sprintf("Verified %d citations against %d sources", len(resp.CitedURLs), len(report.Sources)))

	return summary, nil
}
