package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/cartographer/internal/model"
)

// captureServer records the question of every /ask request and replies
// with the given status and body
func captureServer(t *testing.T, status int, body string, questions *[]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ask" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if questions != nil {
			*questions = append(*questions, req.Question)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

const successBody = `{"argument_map": {"title": "T", "elements": []}, "sources": ["http://a"]}`

func TestSubmit_TextWithoutContentSendsQuestionUnmodified(t *testing.T) {
	var questions []string
	server := captureServer(t, http.StatusOK, successBody, &questions)
	c := New(Options{BaseURL: server.URL})

	question := "  Should cities ban cars?  "
	outcome := c.Submit(context.Background(), &model.AnalysisRequest{Question: question, Mode: model.ModeText})
	if !outcome.OK() {
		t.Fatalf("expected success, got %v", outcome.Err())
	}
	if len(questions) != 1 || questions[0] != question {
		t.Errorf("expected question %q sent once, got %q", question, questions)
	}
}

func TestSubmit_URLEmbedsLiteralURL(t *testing.T) {
	var questions []string
	server := captureServer(t, http.StatusOK, successBody, &questions)
	c := New(Options{BaseURL: server.URL})

	rawURL := "https://example.com/op-ed?id=42&lang=en"
	c.Submit(context.Background(), &model.AnalysisRequest{Question: "q", Mode: model.ModeURL, URL: rawURL})

	if len(questions) != 1 || !strings.Contains(questions[0], rawURL) {
		t.Errorf("expected payload to contain %q, got %q", rawURL, questions)
	}
}

func TestSubmit_DocumentEmbedsFullText(t *testing.T) {
	var questions []string
	server := captureServer(t, http.StatusOK, successBody, &questions)
	c := New(Options{BaseURL: server.URL})

	text := strings.Repeat("Premise one holds. ", 500) + "Therefore the conclusion follows."
	req := &model.AnalysisRequest{
		Question: "What is argued?",
		Mode:     model.ModeDocument,
		File: &model.Document{
			Name:        "essay.txt",
			ContentType: model.ContentTypePlainText,
			Size:        int64(len(text)),
			Data:        []byte(text),
		},
	}
	c.Submit(context.Background(), req)

	if len(questions) != 1 {
		t.Fatalf("expected one request, got %d", len(questions))
	}
	if !strings.Contains(questions[0], text) {
		t.Error("expected payload to contain the full document text")
	}
	if !strings.HasPrefix(questions[0], "What is argued?") {
		t.Errorf("expected payload to start with the question, got %q", questions[0][:40])
	}
}

func TestSubmit_Success(t *testing.T) {
	server := captureServer(t, http.StatusOK, successBody, nil)
	c := New(Options{BaseURL: server.URL + "/"})

	outcome := c.Submit(context.Background(), &model.AnalysisRequest{Question: "q", Mode: model.ModeText})
	if !outcome.OK() {
		t.Fatalf("expected success, got %v", outcome.Err())
	}
	if outcome.Success.Map.Title != "T" {
		t.Errorf("expected title T, got %q", outcome.Success.Map.Title)
	}
	if len(outcome.Success.Sources) != 1 || outcome.Success.Sources[0] != "http://a" {
		t.Errorf("unexpected sources %v", outcome.Success.Sources)
	}
	if outcome.Failure != nil {
		t.Error("expected no failure on success")
	}
}

func TestSubmit_SuccessElements(t *testing.T) {
	body := `{"argument_map": {"title": "Cars", "elements": [
		{"id": "1", "type": "Thesis", "parentId": null, "content": "Ban cars", "sourceText": null},
		{"id": "2", "type": "Evidence", "parentId": "1", "content": "Air quality data", "sourceText": "PM2.5 fell 30%"}
	]}, "sources": []}`
	server := captureServer(t, http.StatusOK, body, nil)
	c := New(Options{BaseURL: server.URL})

	outcome := c.Submit(context.Background(), &model.AnalysisRequest{Question: "q", Mode: model.ModeText})
	if !outcome.OK() {
		t.Fatalf("expected success, got %v", outcome.Err())
	}
	elems := outcome.Success.Map.Elements
	if len(elems) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elems))
	}
	if !elems[0].IsRoot() || elems[0].SourceText != nil {
		t.Errorf("expected root without source text, got %+v", elems[0])
	}
	if elems[1].Parent() != "1" || elems[1].SourceText == nil || *elems[1].SourceText != "PM2.5 fell 30%" {
		t.Errorf("unexpected evidence element %+v", elems[1])
	}
	if elems[1].Type != model.ElementEvidence {
		t.Errorf("expected Evidence type, got %q", elems[1].Type)
	}
}

func TestSubmit_SourcesDefaultToEmpty(t *testing.T) {
	for _, body := range []string{
		`{"argument_map": {"title": "T", "elements": []}}`,
		`{"argument_map": {"title": "T", "elements": []}, "sources": null}`,
	} {
		server := captureServer(t, http.StatusOK, body, nil)
		outcome := New(Options{BaseURL: server.URL}).Ask(context.Background(), "q")
		if !outcome.OK() {
			t.Fatalf("expected success for %s, got %v", body, outcome.Err())
		}
		if outcome.Success.Sources == nil || len(outcome.Success.Sources) != 0 {
			t.Errorf("expected empty non-nil sources, got %#v", outcome.Success.Sources)
		}
	}
}

func TestSubmit_ApplicationError(t *testing.T) {
	server := captureServer(t, http.StatusOK, `{"error": "bad"}`, nil)
	outcome := New(Options{BaseURL: server.URL}).Ask(context.Background(), "q")

	if outcome.OK() {
		t.Fatal("expected failure")
	}
	if outcome.Failure.Message() != "bad" {
		t.Errorf("expected message 'bad', got %q", outcome.Failure.Message())
	}
	if outcome.Failure.Err.Kind != model.KindApplication {
		t.Errorf("expected application error, got %s", outcome.Failure.Err.Kind)
	}
}

func TestSubmit_ErrorWinsOverArgumentMap(t *testing.T) {
	body := `{"error": "AI output could not be parsed", "raw_response": "garbage", "argument_map": {"title": "T", "elements": []}}`
	server := captureServer(t, http.StatusOK, body, nil)
	outcome := New(Options{BaseURL: server.URL}).Ask(context.Background(), "q")

	if outcome.OK() || outcome.Failure.Message() != "AI output could not be parsed" {
		t.Errorf("expected application failure, got %+v", outcome)
	}
}

func TestSubmit_StatusMessages(t *testing.T) {
	tests := []struct {
		status   int
		body     string
		contains string
	}{
		{http.StatusForbidden, `{"error": "Access denied for IP address: 10.0.0.1"}`, "not whitelisted"},
		{http.StatusBadRequest, `{"error": "No question provided"}`, "Invalid request"},
		{http.StatusUnprocessableEntity, `{}`, "invalid format"},
		{http.StatusInternalServerError, `oops`, "Backend server error"},
		{http.StatusBadGateway, `{"error": "upstream down"}`, "upstream down"},
		{http.StatusNotFound, `not json`, "status 404"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := captureServer(t, tt.status, tt.body, nil)
			outcome := New(Options{BaseURL: server.URL}).Ask(context.Background(), "q")
			if outcome.OK() {
				t.Fatal("expected failure")
			}
			msg := outcome.Failure.Message()
			if !strings.Contains(msg, tt.contains) {
				t.Errorf("expected message containing %q, got %q", tt.contains, msg)
			}
			if outcome.Failure.Err.Kind != model.KindProtocol {
				t.Errorf("expected protocol error, got %s", outcome.Failure.Err.Kind)
			}
			if outcome.Failure.Err.StatusCode != tt.status {
				t.Errorf("expected status %d recorded, got %d", tt.status, outcome.Failure.Err.StatusCode)
			}
		})
	}
}

func TestSubmit_403DoesNotExposeRawStatus(t *testing.T) {
	server := captureServer(t, http.StatusForbidden, `{"error": "Access denied"}`, nil)
	outcome := New(Options{BaseURL: server.URL}).Ask(context.Background(), "q")

	msg := outcome.Failure.Message()
	if strings.Contains(msg, "403") {
		t.Errorf("expected friendly message without status code, got %q", msg)
	}
	if !strings.Contains(strings.ToLower(msg), "access denied") {
		t.Errorf("expected access denial message, got %q", msg)
	}
}

func TestSubmit_MalformedSuccessBody(t *testing.T) {
	bodies := []string{
		`not json at all`,
		`{"sources": ["http://a"]}`,
		`{"argument_map": null}`,
		`{"argument_map": "a string"}`,
		`{"argument_map": {"title": 5}}`,
	}

	for _, body := range bodies {
		server := captureServer(t, http.StatusOK, body, nil)
		outcome := New(Options{BaseURL: server.URL}).Ask(context.Background(), "q")
		if outcome.OK() {
			t.Errorf("expected failure for body %s", body)
			continue
		}
		if outcome.Failure.Err.Kind != model.KindProtocol {
			t.Errorf("body %s: expected protocol error, got %s", body, outcome.Failure.Err.Kind)
		}
	}
}

func TestSubmit_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	outcome := New(Options{BaseURL: baseURL}).Ask(context.Background(), "q")
	if outcome.OK() {
		t.Fatal("expected failure")
	}
	if outcome.Failure.Err.Kind != model.KindTransport {
		t.Errorf("expected transport error, got %s", outcome.Failure.Err.Kind)
	}
	if !strings.Contains(outcome.Failure.Message(), "Cannot connect") {
		t.Errorf("expected connection message, got %q", outcome.Failure.Message())
	}
	if !outcome.Failure.Err.Retryable() {
		t.Error("expected transport errors to be retryable")
	}
}

func TestSubmit_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := New(Options{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	outcome := c.Ask(context.Background(), "q")
	if outcome.OK() {
		t.Fatal("expected failure")
	}
	if !strings.Contains(outcome.Failure.Message(), "timeout") {
		t.Errorf("expected timeout message, got %q", outcome.Failure.Message())
	}
}

func TestSubmit_NilRequest(t *testing.T) {
	outcome := New(Options{}).Submit(context.Background(), nil)
	if outcome.OK() || outcome.Failure.Err.Kind != model.KindValidation {
		t.Errorf("expected validation failure, got %+v", outcome)
	}
}

func TestHealth(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/" {
			t.Errorf("unexpected probe %s %s", r.Method, r.URL.Path)
		}
		_, _ = fmt.Fprint(w, "Argument Cartographer backend is running")
	}))
	defer up.Close()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	gone := httptest.NewServer(http.NotFoundHandler())
	goneURL := gone.URL
	gone.Close()

	ctx := context.Background()
	if !New(Options{BaseURL: up.URL}).Health(ctx) {
		t.Error("expected healthy backend")
	}
	if New(Options{BaseURL: down.URL}).Health(ctx) {
		t.Error("expected 503 to be unhealthy")
	}
	if New(Options{BaseURL: goneURL}).Health(ctx) {
		t.Error("expected unreachable backend to be unhealthy")
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New(Options{})
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("expected default base URL, got %s", c.BaseURL())
	}
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", c.httpClient.Timeout)
	}
}

func TestLoggingTransport(t *testing.T) {
	server := captureServer(t, http.StatusOK, successBody, nil)
	var buf bytes.Buffer

	New(Options{BaseURL: server.URL, Log: &buf}).Ask(context.Background(), "q")

	out := buf.String()
	if !strings.Contains(out, "→ POST /ask") || !strings.Contains(out, "← 200 /ask") {
		t.Errorf("expected request and response log lines, got %q", out)
	}
}
