// Package pipeline runs one analysis attempt end to end: session, map
// diagnostics, source checks, optional summary and rendering.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/cartographer/internal/cache"
	"github.com/ppiankov/cartographer/internal/client"
	"github.com/ppiankov/cartographer/internal/input"
	"github.com/ppiankov/cartographer/internal/llm"
	"github.com/ppiankov/cartographer/internal/mapcheck"
	"github.com/ppiankov/cartographer/internal/model"
	"github.com/ppiankov/cartographer/internal/render"
	"github.com/ppiankov/cartographer/internal/session"
	"github.com/ppiankov/cartographer/internal/sources"
)

// Options configures a Pipeline
type Options struct {
	Config *model.Config

	// Analyzer overrides the HTTP client built from Config.API
	Analyzer session.Analyzer

	// Summarizer is optional; nil disables summaries
	Summarizer *llm.Summarizer

	// Cache stores source check results; nil disables caching
	Cache cache.Cache

	// Log receives progress lines; nil keeps the pipeline quiet
	Log io.Writer
}

// Pipeline orchestrates an analysis attempt
type Pipeline struct {
	session    *session.Session
	mapcheck   *mapcheck.Checker
	sources    *sources.Checker
	summarizer *llm.Summarizer
	renderer   *render.Renderer
	config     *model.Config
	log        io.Writer
}

// Result is the outcome of one Run. Report is set only on success.
type Result struct {
	State  session.State
	Report *model.Report
}

// Failure returns the failure of an unsuccessful attempt
func (r *Result) Failure() *model.Failure {
	if r == nil || r.State.Outcome == nil {
		return nil
	}
	return r.State.Outcome.Failure
}

// NewPipeline creates a new pipeline with the given options
func NewPipeline(opts Options) *Pipeline {
	cfg := opts.Config
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	analyzer := opts.Analyzer
	if analyzer == nil {
		analyzer = client.New(client.Options{
			BaseURL:    cfg.API.BaseURL,
			Timeout:    cfg.API.Timeout,
			UserAgent:  cfg.API.UserAgent,
			HTTPProxy:  cfg.API.HTTPProxy,
			HTTPSProxy: cfg.API.HTTPSProxy,
			Log:        opts.Log,
		})
	}

	style, ok := model.ParseStyle(cfg.Output.Style)
	if !ok {
		style = model.StyleClassicTree
	}

	return &Pipeline{
		session:  session.New(analyzer, input.NewCollector(cfg.Input.MaxFileBytes), style),
		mapcheck: mapcheck.NewChecker(),
		sources: sources.NewChecker(sources.Options{
			Config:     cfg.Sources,
			UserAgent:  cfg.API.UserAgent,
			HTTPProxy:  cfg.API.HTTPProxy,
			HTTPSProxy: cfg.API.HTTPSProxy,
			Cache:      opts.Cache,
			Log:        opts.Log,
		}),
		summarizer: opts.Summarizer,
		renderer:   render.NewRenderer(true),
		config:     cfg,
		log:        opts.Log,
	}
}

// Session exposes the underlying session
func (p *Pipeline) Session() *session.Session {
	return p.session
}

// Run performs one attempt. A failed attempt is not an error: it is
// reported through Result.Failure. Errors are returned only when the
// attempt could not start (session.ErrBusy).
func (p *Pipeline) Run(ctx context.Context, question string, mode model.InputMode, payload input.Payload) (*Result, error) {
	p.logf("⚙️  Submitting question (%s mode)...\n", mode)
	start := time.Now()

	state, err := p.session.Analyze(ctx, question, mode, payload)
	if err != nil {
		return nil, err
	}

	result := &Result{State: state}
	if state.Phase != session.PhaseSucceeded {
		p.logf("✗ Analysis failed after %v\n", time.Since(start).Round(time.Millisecond))
		return result, nil
	}

	success := state.Outcome.Success
	p.logf("✓ Received %d elements and %d sources in %v\n",
		len(success.Map.Elements), len(success.Sources), time.Since(start).Round(time.Millisecond))

	report := &model.Report{
		AttemptID:   state.AttemptID,
		Question:    strings.TrimSpace(question),
		Mode:        mode,
		Style:       state.Style,
		CompletedAt: time.Now().UTC(),
		Map:         success.Map,
		Sources:     success.Sources,
	}

	// Diagnostics and source checks describe the map; they never change it
	report.Diagnostics = p.mapcheck.Check(report.Map)

	if len(report.Sources) > 0 {
		if p.config.Sources.Check {
			p.logf("⚙️  Checking %d sources...\n", len(report.Sources))
		}
		report.SourceChecks = p.sources.Check(ctx, report.Sources)
	}

	if p.summarizer.IsEnabled() {
		p.logf("⚙️  Generating summary with %s...\n", p.summarizer.ProviderName())
		summary, err := p.summarizer.GenerateSummary(ctx, *report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: LLM summary generation failed: %v\n", err)
		} else {
			report.Summary = summary
		}
	}

	result.Report = report
	return result, nil
}

// RenderReport writes the report to the requested files. When a summary
// with text exists and mdPath is set, it also goes to <md>.llm.md.
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath string) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		p.logf("✓ Wrote JSON: %s\n", jsonPath)
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		p.logf("✓ Wrote Markdown: %s\n", mdPath)

		if report.Summary != nil && report.Summary.Text != "" {
			summaryPath := strings.TrimSuffix(mdPath, filepath.Ext(mdPath)) + ".llm.md"
			if err := p.renderer.RenderSummaryMarkdown(report.Summary, summaryPath); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to write LLM summary: %v\n", err)
			} else {
				p.logf("✓ Wrote LLM Summary: %s\n", summaryPath)
			}
		}
	}

	return nil
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.log != nil {
		fmt.Fprintf(p.log, format, args...)
	}
}

// NewSourceCache builds the layered source check cache described by cfg,
// dropping expired entries left by earlier runs. It returns nil when
// caching is disabled.
func NewSourceCache(cfg model.CacheConfig) cache.Cache {
	if !cfg.Enabled {
		return nil
	}
	dir := cfg.Dir
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		dir = filepath.Join(base, "cartographer", "sources")
	}
	c := cache.NewLayeredCache(cfg.MemoryTTL, dir, cfg.DiskTTL)
	_, _ = c.Prune()
	return c
}
