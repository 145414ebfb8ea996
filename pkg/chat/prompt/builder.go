package prompt

import (
	"fmt"
	"strings"

	"ai-medical-chat-be/internal/constant"
	"ai-medical-chat-be/internal/entity"
)

// Render formats a context window as "{role}: {content}" lines, in the
// order given.
func Render(messages []*entity.ChatMessage) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}

// Builder fills a prompt template with the rendered context window and the
// current user message.
type Builder struct {
	template string
}

func NewBuilder() *Builder {
	return &Builder{template: constant.ChatMedicalAssistantPromptV1}
}

// NewBuilderWithTemplate expects a template with two %s verbs: context, then message.
func NewBuilderWithTemplate(template string) *Builder {
	return &Builder{template: template}
}

func (b *Builder) Build(window []*entity.ChatMessage, message string) string {
	return fmt.Sprintf(b.template, Render(window), message)
}
