// Package static is a canned LLM backend for local runs without network
// access and for tests.
package static

import (
	"context"
	"fmt"
	"sync"

	"ai-medical-chat-be/pkg/llm"
)

const DefaultReply = "I am running in offline mode and cannot assess symptoms right now. " +
	"If your symptoms are severe or getting worse, please contact a medical professional."

type Provider struct {
	Reply string
	Err   error

	mu      sync.Mutex
	prompts []string
}

var _ llm.LLMProvider = &Provider{}

func NewProvider(reply string) *Provider {
	if reply == "" {
		reply = DefaultReply
	}
	return &Provider{Reply: reply}
}

// NewFailingProvider always fails with err wrapped in llm.ErrUpstream.
func NewFailingProvider(err error) *Provider {
	return &Provider{Err: fmt.Errorf("%w: %v", llm.ErrUpstream, err)}
}

func (p *Provider) Name() string {
	return "static"
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if len(history) == 0 {
		return p.Generate(ctx, "", opts...)
	}
	return p.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrUpstream, err)
	}
	if p.Err != nil {
		return "", p.Err
	}
	return p.Reply, nil
}

// Prompts returns every prompt received so far, oldest first.
func (p *Provider) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.prompts...)
}
