package factory

import (
	"fmt"

	"github.com/ilkoid/sommelier-ai/pkg/config"
	"github.com/ilkoid/sommelier-ai/pkg/llm"
	"github.com/ilkoid/sommelier-ai/pkg/llm/openai"
)

// NewLLMProvider создает провайдера на основе конфигурации модели
func NewLLMProvider(modelDef config.ModelDef) (llm.Provider, error) {
	switch modelDef.Provider {
	case "openai", "gemini", "deepseek":
		// Gemini и DeepSeek подключаются через OpenAI-совместимый endpoint (BaseURL)
		return openai.NewClient(modelDef), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s", modelDef.Provider)
	}
}
