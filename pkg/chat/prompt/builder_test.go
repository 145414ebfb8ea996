package prompt

import (
	"testing"

	"ai-medical-chat-be/internal/constant"
	"ai-medical-chat-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func msg(role, content string) *entity.ChatMessage {
	return &entity.ChatMessage{Role: role, Content: content}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		messages []*entity.ChatMessage
		want     string
	}{
		{name: "empty", messages: nil, want: ""},
		{name: "single", messages: []*entity.ChatMessage{msg(constant.ChatMessageRoleUser, "hi")}, want: "User: hi"},
		{
			name: "keeps order",
			messages: []*entity.ChatMessage{
				msg(constant.ChatMessageRoleUser, "I have a headache"),
				msg(constant.ChatMessageRoleAssistant, "How long has it lasted?"),
				msg(constant.ChatMessageRoleUser, "Two days"),
			},
			want: "User: I have a headache\nMedical Assistant: How long has it lasted?\nUser: Two days",
		},
		{
			name:     "multiline content is kept verbatim",
			messages: []*entity.ChatMessage{msg(constant.ChatMessageRoleUser, "line1\nline2")},
			want:     "User: line1\nline2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.messages))
		})
	}
}

func TestBuilder_Build(t *testing.T) {
	window := []*entity.ChatMessage{msg(constant.ChatMessageRoleUser, "I have a headache")}

	got := NewBuilderWithTemplate("ctx=[%s] q=[%s]").Build(window, "I have a headache")
	assert.Equal(t, "ctx=[User: I have a headache] q=[I have a headache]", got)

	full := NewBuilder().Build(window, "I have a headache")
	assert.Contains(t, full, "medical assistant")
	assert.Contains(t, full, "User: I have a headache")
	assert.Contains(t, full, "User Symptoms: I have a headache")
}
