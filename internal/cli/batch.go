package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cartographer/internal/pipeline"
)

var batchOutputDir string

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze a list of questions, one after another",
	Long: `Batch reads one question per line (blank lines and # comments are
skipped, repeated questions are dropped) and analyzes them strictly in
sequence: the service never sees more than one request at a time.

Each successful map is written as <slug>.json and <slug>.md.

Example:
  cartographer batch questions.txt
  cartographer batch questions.txt --output-dir ./maps --check-sources`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "./cartographer-maps", "output directory for maps")
	batchCmd.Flags().StringVar(&af.style, "style", "", "visualization style: tree, org or pillar")
	batchCmd.Flags().BoolVar(&af.checkSources, "check-sources", false, "fetch returned sources to check they are reachable")
	batchCmd.Flags().BoolVar(&af.noCache, "no-cache", false, "do not use cached source checks")
	batchCmd.Flags().BoolVar(&af.llmEnabled, "llm", false, "add an LLM-written summary of each map")
	batchCmd.Flags().StringVar(&af.llmProvider, "llm-provider", "", "LLM provider (openai, ollama)")
	batchCmd.Flags().StringVar(&af.llmModel, "llm-model", "", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyAnalyzeFlags(cmd, cfg); err != nil {
		return err
	}

	questions, err := pipeline.ReadQuestions(file)
	if err != nil {
		return fmt.Errorf("read questions: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Cartographer Batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Questions:    %d\n", len(questions))
	fmt.Fprintf(os.Stderr, "  Service:      %s\n", cfg.API.BaseURL)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", batchOutputDir)
	fmt.Fprintf(os.Stderr, "\n")

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	// Ctrl-C stops before the next question; the current one completes
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	items, err := p.RunBatch(ctx, questions, batchOutputDir, func(i int, item pipeline.BatchItem) {
		if item.Failed() {
			fmt.Fprintf(os.Stderr, "✗ [%d/%d] %s: %s\n", i+1, len(questions), item.Question, item.Message())
			return
		}
		fmt.Fprintf(os.Stderr, "✓ [%d/%d] %s (%d elements)\n",
			i+1, len(questions), item.Question, len(item.Result.Report.Map.Elements))
	})

	failures := 0
	for _, item := range items {
		if item.Failed() {
			failures++
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d questions\n", len(questions))
	fmt.Fprintf(os.Stderr, "  Processed: %d\n", len(items))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", len(items)-failures)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failures)
	fmt.Fprintf(os.Stderr, "  Duration:  %v\n", time.Since(start).Round(time.Second))
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", batchOutputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}
	if failures > 0 {
		return ErrAnalysisFailed
	}
	return nil
}
