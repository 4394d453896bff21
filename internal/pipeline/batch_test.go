package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/cartographer/internal/model"
)

func TestReadQuestions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.txt")
	content := "# debate prep\nIs nuclear power safe?\n\n   \nShould voting be mandatory?\nIs nuclear power safe?\n  # indented comment\n  Trimmed question  \n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	questions, err := ReadQuestions(path)
	if err != nil {
		t.Fatalf("ReadQuestions failed: %v", err)
	}

	want := []string{"Is nuclear power safe?", "Should voting be mandatory?", "Trimmed question"}
	if len(questions) != len(want) {
		t.Fatalf("expected %v, got %v", want, questions)
	}
	for i := range want {
		if questions[i] != want[i] {
			t.Errorf("question %d = %q, want %q", i, questions[i], want[i])
		}
	}
}

func TestReadQuestions_MissingFile(t *testing.T) {
	if _, err := ReadQuestions(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

// sequenceAnalyzer fails every question listed in fail
type sequenceAnalyzer struct {
	fail map[string]bool
	seen []string
}

func (s *sequenceAnalyzer) Submit(ctx context.Context, req *model.AnalysisRequest) model.Outcome {
	s.seen = append(s.seen, req.Question)
	if s.fail[req.Question] {
		return model.Fail(model.ProtocolError(500, "Backend server error. Please check if the AI model is running."))
	}
	return model.Succeed(sampleMap(), nil)
}

func TestRunBatch(t *testing.T) {
	analyzer := &sequenceAnalyzer{fail: map[string]bool{"Bad one?": true}}
	p := NewPipeline(Options{Analyzer: analyzer})
	dir := filepath.Join(t.TempDir(), "reports")

	var progressed []int
	items, err := p.RunBatch(context.Background(), []string{"Good one?", "Bad one?", "Good one!"}, dir, func(i int, item BatchItem) {
		progressed = append(progressed, i)
	})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}

	if len(items) != 3 || len(progressed) != 3 {
		t.Fatalf("expected 3 items and progress calls, got %d/%d", len(items), len(progressed))
	}
	if len(analyzer.seen) != 3 || analyzer.seen[1] != "Bad one?" {
		t.Errorf("expected questions submitted in order, got %v", analyzer.seen)
	}

	if items[0].Failed() || !items[1].Failed() || items[2].Failed() {
		t.Errorf("unexpected failure flags: %v %v %v", items[0].Failed(), items[1].Failed(), items[2].Failed())
	}
	if items[1].Message() != "Backend server error. Please check if the AI model is running." {
		t.Errorf("unexpected failure message %q", items[1].Message())
	}

	if filepath.Base(items[0].JSONPath) != "good-one.json" || filepath.Base(items[2].JSONPath) != "good-one-2.json" {
		t.Errorf("unexpected output names: %s, %s", items[0].JSONPath, items[2].JSONPath)
	}
	for _, path := range []string{items[0].JSONPath, items[0].MDPath, items[2].JSONPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s: %v", path, err)
		}
	}
	if items[1].JSONPath != "" {
		t.Error("failed items should not be written")
	}
}

func TestRunBatch_CancelledContext(t *testing.T) {
	analyzer := &sequenceAnalyzer{}
	p := NewPipeline(Options{Analyzer: analyzer})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := p.RunBatch(ctx, []string{"a", "b"}, t.TempDir(), nil)
	if err == nil {
		t.Error("expected context error")
	}
	if len(items) != 0 || len(analyzer.seen) != 0 {
		t.Errorf("expected nothing processed, got %d items", len(items))
	}
}

func TestUniqueSlug(t *testing.T) {
	tests := []struct {
		name  string
		slugs []string
		want  []string
	}{
		{
			name:  "repeats",
			slugs: []string{"a", "a", "a"},
			want:  []string{"a", "a-2", "a-3"},
		},
		{
			name:  "suffixed slug arrives later",
			slugs: []string{"a", "a", "a-2"},
			want:  []string{"a", "a-2", "a-2-2"},
		},
		{
			name:  "suffixed slug arrives first",
			slugs: []string{"a-2", "a", "a", "a"},
			want:  []string{"a-2", "a", "a-3", "a-4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			used := make(map[string]int)
			seen := make(map[string]bool)
			for i, slug := range tt.slugs {
				got := uniqueSlug(slug, used)
				if got != tt.want[i] {
					t.Errorf("uniqueSlug(%q) #%d = %q, want %q", slug, i, got, tt.want[i])
				}
				if seen[got] {
					t.Errorf("slug %q handed out twice", got)
				}
				seen[got] = true
			}
		})
	}
}
