package factory

import (
	"fmt"

	"ai-medical-chat-be/pkg/llm"
	"ai-medical-chat-be/pkg/llm/gemini"
	"ai-medical-chat-be/pkg/llm/ollama"
	"ai-medical-chat-be/pkg/llm/static"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "gemini":
		if apiKey == "" {
			return nil, fmt.Errorf("gemini provider requires GOOGLE_GEMINI_API_KEY")
		}
		if modelName == "" {
			modelName = "gemini-2.5-flash"
		}
		return gemini.NewGeminiProvider(apiKey, modelName), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		if modelName == "" {
			modelName = "llama3"
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "static":
		return static.NewProvider(""), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
