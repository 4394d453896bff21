package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/cartographer/internal/model"
)

func strPtr(s string) *string { return &s }

func sampleReport() *model.Report {
	return &model.Report{
		AttemptID:   "a-1",
		Question:    "Should cities ban cars?",
		Mode:        model.ModeText,
		Style:       model.StyleOrgChart,
		CompletedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Map: model.ArgumentMap{
			Title: "Car-free cities",
			Elements: []model.ArgumentElement{
				{ID: "t1", Type: model.ElementThesis, Content: "Cities should ban cars"},
				{ID: "c1", Type: model.ElementSupportingClaim, ParentID: strPtr("t1"), Content: "Cars pollute"},
				{ID: "e1", Type: model.ElementEvidence, ParentID: strPtr("c1"), Content: "30% of emissions", SourceText: strPtr("Transport accounts for 30%")},
				{ID: "k1", Type: model.ElementCounterclaim, ParentID: strPtr("t1"), Content: "Deliveries need vehicles"},
			},
		},
		Sources: []string{"https://www.example.com/study"},
		Diagnostics: model.Diagnostics{
			Counts: map[model.ElementType]int{
				model.ElementThesis:          1,
				model.ElementSupportingClaim: 1,
				model.ElementEvidence:        1,
				model.ElementCounterclaim:    1,
			},
			Depth: 3,
			Signals: []model.Signal{
				{Type: model.SignalEvidenceCoverage, Severity: model.SeverityWarning, Description: "1 of 2 claims have evidence"},
			},
		},
	}
}

func TestTree(t *testing.T) {
	var buf bytes.Buffer
	Tree(&buf, sampleReport())
	out := buf.String()

	for _, want := range []string{
		"Org Chart · Car-free cities",
		"Question: Should cities ban cars?",
		"● Thesis: Cities should ban cars",
		"├── ◆ Supporting Claim: Cars pollute",
		"│   └── ▪ Evidence: 30% of emissions",
		"“Transport accounts for 30%”",
		"└── ✦ Counterclaim: Deliveries need vehicles",
		"Sources (1):",
		"  - https://www.example.com/study",
		"⚠ 1 of 2 claims have evidence",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("tree output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Unattached") {
		t.Error("did not expect unattached section")
	}
}

func TestTree_StylesOnlyChangeHeading(t *testing.T) {
	render := func(style model.VisualizationStyle) []string {
		r := sampleReport()
		r.Style = style
		var buf bytes.Buffer
		Tree(&buf, r)
		return strings.Split(buf.String(), "\n")
	}

	classic := render(model.StyleClassicTree)
	pillar := render(model.StylePillarView)
	if len(classic) != len(pillar) {
		t.Fatalf("line counts differ: %d vs %d", len(classic), len(pillar))
	}
	for i := range classic {
		if i == 1 {
			continue // heading line
		}
		if classic[i] != pillar[i] {
			t.Errorf("line %d differs: %q vs %q", i, classic[i], pillar[i])
		}
	}
}

func TestTree_UnattachedAndCycles(t *testing.T) {
	r := sampleReport()
	r.Map.Elements = append(r.Map.Elements,
		model.ArgumentElement{ID: "x", Type: model.ElementSupportingClaim, ParentID: strPtr("y"), Content: "X"},
		model.ArgumentElement{ID: "y", Type: model.ElementSupportingClaim, ParentID: strPtr("x"), Content: "Y"},
		model.ArgumentElement{ID: "z", Type: model.ElementEvidence, ParentID: strPtr("missing"), Content: "Z"},
	)

	var buf bytes.Buffer
	Tree(&buf, r)
	out := buf.String()

	if !strings.Contains(out, "Unattached:") {
		t.Fatalf("expected unattached section\n%s", out)
	}
	for _, want := range []string{"Supporting Claim: X", "Supporting Claim: Y", "Evidence: Z"} {
		if strings.Count(out, want) != 1 {
			t.Errorf("expected %q exactly once\n%s", want, out)
		}
	}
}

func TestTree_EmptyMap(t *testing.T) {
	var buf bytes.Buffer
	Tree(&buf, &model.Report{Style: model.StyleClassicTree})
	out := buf.String()

	if !strings.Contains(out, "(the map has no elements)") || !strings.Contains(out, "Sources (0):") {
		t.Errorf("unexpected empty map output\n%s", out)
	}
}

func TestLayout_DuplicateIDsShownOnce(t *testing.T) {
	m := &model.ArgumentMap{Elements: []model.ArgumentElement{
		{ID: "t1", Type: model.ElementThesis, Content: "A"},
		{ID: "t1", Type: model.ElementThesis, Content: "B"},
		{ID: "c1", Type: model.ElementSupportingClaim, ParentID: strPtr("t1"), Content: "C"},
	}}

	nodes := layout(m)
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(nodes))
	}
}

func TestFailure(t *testing.T) {
	var buf bytes.Buffer
	Failure(&buf, &model.Failure{Err: model.ApplicationError("Analysis failed")})
	if got := buf.String(); got != "✗ Analysis failed\n" {
		t.Errorf("unexpected failure output %q", got)
	}
}

func TestRenderJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	r := sampleReport()
	r.SourceChecks = []model.SourceCheck{{URL: r.Sources[0], Domain: "example.com", Authority: model.TierTertiary}}

	if err := NewRenderer(true).RenderJSON(r, path); err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	for _, key := range []string{"title", "elements", "sources", "diagnostics", "source_checks"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if _, ok := doc["summary"]; ok {
		t.Error("summary should be omitted when absent")
	}

	elements := doc["elements"].([]interface{})
	root := elements[0].(map[string]interface{})
	if v, ok := root["parentId"]; !ok || v != nil {
		t.Errorf("expected explicit null parentId on root, got %v", v)
	}
	checks := doc["source_checks"].([]interface{})
	if checks[0].(map[string]interface{})["authority"] != "tertiary" {
		t.Errorf("expected authority by name, got %v", checks[0])
	}
}

func TestNewDocument_EmptySlices(t *testing.T) {
	data, err := MarshalJSON(&model.Report{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"elements": []`) || !strings.Contains(string(data), `"sources": []`) {
		t.Errorf("expected empty arrays, got %s", data)
	}
}

func TestMarkdown(t *testing.T) {
	r := sampleReport()
	r.SourceChecks = []model.SourceCheck{{
		URL: r.Sources[0], Domain: "example.com", Authority: model.TierSecondary,
		Checked: true, Reachable: true, StatusCode: 200, Title: "A | B",
	}}

	md := Markdown(r, true)
	for _, want := range []string{
		"# Car-free cities",
		"**Question:** Should cities ban cars?",
		"- **Thesis:** Cities should ban cars",
		"  - **Supporting Claim:** Cars pollute",
		"    - **Evidence:** 30% of emissions",
		"      > Transport accounts for 30%",
		"### example.com",
		`| <https://www.example.com/study> | secondary | 200 | A \| B |`,
		"| Logical Fallacy | 0 |",
		"- **evidence_coverage** (warning): 1 of 2 claims have evidence",
		"_Generated by cartographer on 2026-03-01 12:00 UTC._",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}

	if strings.Contains(Markdown(r, false), "Generated by") {
		t.Error("footer should be omitted")
	}
}

func TestSummaryMarkdown(t *testing.T) {
	if SummaryMarkdown(nil) != "" {
		t.Error("expected empty output for nil summary")
	}

	md := SummaryMarkdown(&model.Summary{
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Text:      "The thesis rests on one study.",
		CitedURLs: []string{"https://www.example.com/study"},
		Warnings:  []string{"Tokens used: 42"},
	})
	for _, want := range []string{"openai/gpt-4o-mini", "The thesis rests on one study.", "- <https://www.example.com/study>", "- Tokens used: 42"} {
		if !strings.Contains(md, want) {
			t.Errorf("summary markdown missing %q\n%s", want, md)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Should cities ban cars?", "should-cities-ban-cars"},
		{"  ---  ", "analysis"},
		{"Über/..//Path", "ber-path"},
		{strings.Repeat("ab ", 60), strings.TrimRight(strings.Repeat("ab-", 27), "-")},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
