package session

import "ai-medical-chat-be/internal/constant"

// DeriveTitle turns the first message of a session into its title. Messages of
// up to 30 characters are used as is; longer ones are cut to 30 characters
// followed by "...". Characters are Unicode code points.
func DeriveTitle(firstMessage string) string {
	runes := []rune(firstMessage)
	if len(runes) <= constant.ChatSessionTitleMaxLen {
		return firstMessage
	}
	return string(runes[:constant.ChatSessionTitleMaxLen]) + constant.ChatSessionTitleSuffix
}
