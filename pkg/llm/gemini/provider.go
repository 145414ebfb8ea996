package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ai-medical-chat-be/pkg/llm"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type GeminiProvider struct {
	BaseURL   string
	APIKey    string
	ModelName string
	Client    *http.Client
}

var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(apiKey, modelName string) *GeminiProvider {
	return &GeminiProvider{
		BaseURL:   DefaultBaseURL,
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []*part `json:"parts"`
	Role  string  `json:"role,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents         []*content        `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type candidate struct {
	Content      *content `json:"content"`
	FinishReason string   `json:"finishReason"`
}

type generateResponse struct {
	Candidates     []*candidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

func (g *GeminiProvider) Name() string {
	return "gemini"
}

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if g.APIKey == "" {
		return "", fmt.Errorf("%w: gemini api key is not configured", llm.ErrUpstream)
	}
	options := llm.ApplyOptions(llm.Options{Model: g.ModelName}, opts...)

	contents := make([]*content, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == "assistant" || msg.Role == "model" {
			role = "model"
		}
		contents = append(contents, &content{Parts: []*part{{Text: msg.Content}}, Role: role})
	}

	payload := generateRequest{Contents: contents}
	if options.Temperature > 0 || options.MaxTokens > 0 {
		payload.GenerationConfig = &generationConfig{
			Temperature:     options.Temperature,
			MaxOutputTokens: options.MaxTokens,
		}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(g.BaseURL, "/"), options.Model)
	headers := map[string]string{"x-goog-api-key": g.APIKey}

	var resp generateResponse
	if err := llm.PostJSON(ctx, g.Client, url, headers, payload, &resp); err != nil {
		return "", err
	}
	return resp.text()
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (r *generateResponse) text() (string, error) {
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", llm.ErrUpstream, r.PromptFeedback.BlockReason)
	}
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: gemini returned no candidates", llm.ErrUpstream)
	}

	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: gemini returned an empty answer (finish reason %s)", llm.ErrUpstream, r.Candidates[0].FinishReason)
	}
	return b.String(), nil
}
