package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cartographer/internal/client"
	"github.com/ppiankov/cartographer/internal/input"
	"github.com/ppiankov/cartographer/internal/llm"
	"github.com/ppiankov/cartographer/internal/model"
	"github.com/ppiankov/cartographer/internal/pipeline"
	"github.com/ppiankov/cartographer/internal/render"
)

// analyzeFlags holds the flags of the analyze command
type analyzeFlags struct {
	mode         string
	text         string
	textFile     string
	url          string
	file         string
	contentType  string
	style        string
	outJSON      string
	outMD        string
	checkSources bool
	noCache      bool
	llmEnabled   bool
	llmProvider  string
	llmModel     string
}

var af analyzeFlags

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <question>",
	Short: "Map the arguments for a question, text, URL or document",
	Long: `Analyze sends one request to the analysis service and shows the
returned argument map.

Input (choose at most one; the default is a bare question):
  --text / --text-file   pasted text to analyze
  --url                  a web page for the service to analyze
  --file                 a .txt, .pdf, .doc or .docx document (max 10 MiB)

Example:
  cartographer analyze "Should cities ban cars?"
  cartographer analyze "Is this convincing?" --text-file op-ed.txt --style org
  cartographer analyze "What does the author claim?" --url https://example.com/essay --json map.json
  cartographer analyze "Summarize the case" --file brief.docx --md brief.md --check-sources`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	f := analyzeCmd.Flags()
	f.StringVar(&af.mode, "mode", "", "input mode: text, url or document (inferred from the input flags)")
	f.StringVar(&af.text, "text", "", "text to analyze")
	f.StringVar(&af.textFile, "text-file", "", "read the text to analyze from a file")
	f.StringVar(&af.url, "url", "", "URL of the content to analyze")
	f.StringVar(&af.file, "file", "", "document to analyze (.txt, .pdf, .doc, .docx)")
	f.StringVar(&af.contentType, "content-type", "", "declared document type (detected when empty)")
	f.StringVar(&af.style, "style", "", "visualization style: tree, org or pillar")
	f.StringVar(&af.outJSON, "json", "", "write the map as JSON to this path (- for stdout)")
	f.StringVar(&af.outMD, "md", "", "write the map as Markdown to this path")
	f.BoolVar(&af.checkSources, "check-sources", false, "fetch returned sources to check they are reachable")
	f.BoolVar(&af.noCache, "no-cache", false, "do not use cached source checks")
	f.BoolVar(&af.llmEnabled, "llm", false, "add an LLM-written summary of the map")
	f.StringVar(&af.llmProvider, "llm-provider", "", "LLM provider (openai, ollama)")
	f.StringVar(&af.llmModel, "llm-model", "", "LLM model name")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyAnalyzeFlags(cmd, cfg); err != nil {
		return err
	}

	mode, payload, err := collectInput(cfg)
	if err != nil {
		if model.IsKind(err, model.KindValidation) {
			render.Failure(os.Stderr, &model.Failure{Err: model.AsError(err)})
			return ErrAnalysisFailed
		}
		return err
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Service: %s\n", cfg.API.BaseURL)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", cfg.API.Timeout)
		fmt.Fprintln(os.Stderr)
	}

	// The attempt is bounded by the client timeout only
	result, err := p.Run(context.Background(), args[0], mode, payload)
	if err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if failure := result.Failure(); failure != nil {
		render.Failure(os.Stderr, failure)
		return ErrAnalysisFailed
	}

	return writeOutputs(os.Stdout, p, result.Report, af.outJSON, af.outMD)
}

// writeOutputs prints the report to w and writes the requested files.
// A jsonPath of "-" sends JSON to w in place of the tree view.
func writeOutputs(w io.Writer, p *pipeline.Pipeline, report *model.Report, jsonPath, mdPath string) error {
	if jsonPath == "-" {
		data, err := render.MarshalJSON(report)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		jsonPath = ""
	} else {
		render.Tree(w, report)
	}

	if err := p.RenderReport(report, jsonPath, mdPath); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}

// applyAnalyzeFlags layers explicitly set command flags over cfg
func applyAnalyzeFlags(cmd *cobra.Command, cfg *model.Config) error {
	flags := cmd.Flags()

	if flags.Changed("style") {
		style, ok := model.ParseStyle(af.style)
		if !ok {
			return fmt.Errorf("unknown style %q (tree, org, pillar)", af.style)
		}
		cfg.Output.Style = string(style)
	}
	if af.checkSources {
		cfg.Sources.Check = true
	}
	if af.noCache {
		cfg.Sources.Cache.Enabled = false
	}
	if af.llmEnabled && cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = af.llmProvider
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = af.llmModel
	}
	if !af.llmEnabled && !flags.Changed("llm-provider") {
		// Summaries run only when asked for on the command line
		cfg.LLM.Provider = ""
	}
	return nil
}

// collectInput turns the input flags into a mode and payload. Emptiness
// checks are left to the input collector so every mode reports them the
// same way.
func collectInput(cfg *model.Config) (model.InputMode, input.Payload, error) {
	given := 0
	for _, s := range []string{af.text, af.textFile, af.url, af.file} {
		if s != "" {
			given++
		}
	}
	if given > 1 {
		return "", input.Payload{}, fmt.Errorf("choose one of --text, --text-file, --url or --file")
	}

	var payload input.Payload
	mode := model.ModeText
	switch {
	case af.text != "":
		payload.Content = af.text
	case af.textFile != "":
		data, err := os.ReadFile(af.textFile)
		if err != nil {
			return "", payload, fmt.Errorf("read text file: %w", err)
		}
		text, err := client.DecodeText(data)
		if err != nil {
			return "", payload, fmt.Errorf("decode text file: %w", err)
		}
		payload.Content = text
	case af.url != "":
		mode = model.ModeURL
		payload.URL = af.url
	case af.file != "":
		mode = model.ModeDocument
		doc, err := input.LoadDocument(af.file, af.contentType, cfg.Input.MaxFileBytes)
		if err != nil {
			return "", payload, err
		}
		payload.File = doc
	}

	if af.mode != "" {
		m, ok := input.ParseMode(af.mode)
		if !ok {
			m = model.InputMode(af.mode)
		}
		mode = m
	}
	return mode, payload, nil
}

// newPipeline wires the pipeline for cfg, including the optional summarizer
// and source cache
func newPipeline(cfg *model.Config) (*pipeline.Pipeline, error) {
	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM, cfg.API))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to initialize LLM provider: %v\n", err)
		} else {
			summarizer = s
		}
	}

	opts := pipeline.Options{
		Config:     cfg,
		Summarizer: summarizer,
		Log:        logWriter(cfg),
	}
	if cfg.Sources.Check {
		opts.Cache = pipeline.NewSourceCache(cfg.Sources.Cache)
	}
	return pipeline.NewPipeline(opts), nil
}
