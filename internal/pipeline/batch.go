package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/cartographer/internal/input"
	"github.com/ppiankov/cartographer/internal/model"
	"github.com/ppiankov/cartographer/internal/render"
)

// BatchItem is the result of one question in a batch
type BatchItem struct {
	Question string
	Result   *Result
	Err      error
	JSONPath string
	MDPath   string
}

// Failed reports whether the question did not produce a map
func (b BatchItem) Failed() bool {
	return b.Err != nil || b.Result == nil || b.Result.Report == nil
}

// Message describes why the item failed
func (b BatchItem) Message() string {
	if b.Err != nil {
		return b.Err.Error()
	}
	return b.Result.Failure().Message()
}

// ReadQuestions reads one question per line. Blank lines and lines starting
// with # are skipped, and repeated questions are dropped.
func ReadQuestions(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var questions []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		questions = append(questions, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return questions, nil
}

// RunBatch analyzes questions one after another through the pipeline's
// session, so at most one request is ever in flight. Successful reports are
// written to outputDir as <slug>.json and <slug>.md. A cancelled context
// stops the batch before the next question; the attempt in flight is not
// interrupted.
func (p *Pipeline) RunBatch(ctx context.Context, questions []string, outputDir string, progress func(i int, item BatchItem)) ([]BatchItem, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	items := make([]BatchItem, 0, len(questions))
	used := make(map[string]int)

	for i, q := range questions {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		item := BatchItem{Question: q}
		item.Result, item.Err = p.Run(context.WithoutCancel(ctx), q, model.ModeText, input.Payload{})

		if !item.Failed() {
			slug := uniqueSlug(render.Slug(q), used)
			item.JSONPath = filepath.Join(outputDir, slug+".json")
			item.MDPath = filepath.Join(outputDir, slug+".md")
			if err := p.RenderReport(item.Result.Report, item.JSONPath, item.MDPath); err != nil {
				item.Err = err
			}
		}

		items = append(items, item)
		if progress != nil {
			progress(i, item)
		}
	}

	return items, nil
}

// uniqueSlug suffixes repeated slugs with -2, -3, ... skipping any suffixed
// name already taken by another question's own slug
func uniqueSlug(slug string, used map[string]int) string {
	used[slug]++
	if used[slug] == 1 {
		return slug
	}
	for n := used[slug]; ; n++ {
		candidate := fmt.Sprintf("%s-%d", slug, n)
		if used[candidate] == 0 {
			used[slug] = n
			used[candidate]++
			return candidate
		}
	}
}
