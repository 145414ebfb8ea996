package constant

const (
	ChatMessageRoleUser      = "User"
	ChatMessageRoleAssistant = "Medical Assistant"

	DefaultChatSessionTitle = "New Chat"
	ChatSessionTitleMaxLen  = 30
	ChatSessionTitleSuffix  = "..."

	// Prefix of the reply returned when the model call fails. Such replies are
	// never stored.
	ChatUpstreamErrorPrefix = "Error: "

	ChatMedicalAssistantPromptV1 = `You are a helpful medical assistant.
1. Please provide accurate and concise medical information.
2. If serious medical condition is suspected, please provide a referral to a medical professional.
3. Do not provide any personal information.
4. Do not prescribe any medicines.
5. Provide structured response.
    - symptoms
    - possible causes
    - recommended actions
    - next steps

Conversation so far:
%s

User Symptoms: %s
`
)

// IsChatRole reports whether role may be stored on a message.
func IsChatRole(role string) bool {
	return role == ChatMessageRoleUser || role == ChatMessageRoleAssistant
}
