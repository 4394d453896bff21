package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/cartographer/internal/util"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"'\)\]]+`)

// OpenAIProvider implements Provider for OpenAI and OpenAI-compatible servers
type OpenAIProvider struct {
	client *openai.Client
	config Config
	name   string
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set CARTOGRAPHER_LLM_API_KEY or OPENAI_API_KEY)")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(config.BaseURL, "/")
	}
	if config.HTTPProxy != "" || config.HTTPSProxy != "" {
		clientConfig.HTTPClient = &http.Client{
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy),
			},
		}
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		name:   "openai",
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable lists models as a lightweight reachability check
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	if _, err := p.client.ListModels(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s API check failed: %v\n", p.name, err)
		return false
	}
	return true
}

// Summarize generates a summary using the Chat Completions API
func (p *OpenAIProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Report, req.AllowedURLs)
	}

	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 600
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You summarize argument maps neutrally and cite only the sources you are given.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", p.name)
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	cited := extractURLs(summary)

	for _, u := range cited {
		if !contains(req.AllowedURLs, u) {
			return nil, fmt.Errorf("summary cited a URL outside the sources list: %s", u)
		}
	}

	return &SummarizeResponse{
		Summary:    summary,
		CitedURLs:  cited,
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// extractURLs returns the distinct http(s) URLs in text, in order of appearance
func extractURLs(text string) []string {
	seen := make(map[string]bool)
	var unique []string
	for _, u := range urlPattern.FindAllString(text, -1) {
		u = strings.TrimRight(u, ".,;:!?")
		if !seen[u] {
			seen[u] = true
			unique = append(unique, u)
		}
	}
	return unique
}

// contains reports whether item is in slice, ignoring a trailing slash
func contains(slice []string, item string) bool {
	item = strings.TrimSuffix(item, "/")
	for _, s := range slice {
		if strings.TrimSuffix(strings.TrimSpace(s), "/") == item {
			return true
		}
	}
	return false
}
