// llm-ping — утилита для проверки доступности LLM провайдера.
//
// Выполняет один короткий запрос к модели по умолчанию и печатает
// латентность. Полезно перед запуском TUI, чтобы убедиться что ключи
// и base_url в конфиге живые.
//
// Использование:
//
//	go run cmd/llm-ping/main.go [config.yaml]
//
// Переменные окружения:
//
//	OPENAI_API_KEY / GEMINI_API_KEY / DEEPSEEK_API_KEY — в зависимости
//	от провайдера, подставляются в config.yaml через ${VAR}
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilkoid/sommelier-ai/pkg/config"
	"github.com/ilkoid/sommelier-ai/pkg/factory"
	"github.com/ilkoid/sommelier-ai/pkg/llm"
)

func main() {
	cfgPath := "config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config from %s: %v", cfgPath, err)
	}

	modelAlias := cfg.Models.DefaultChat
	modelDef, ok := cfg.GetChatModel("")
	if !ok {
		fmt.Println("⚠️  No default_chat model configured, testing first available model...")
		for name, def := range cfg.Models.Definitions {
			modelAlias, modelDef = name, def
			break
		}
	}

	fmt.Printf("🔍 Testing LLM Provider: %s (%s)\n\n", modelAlias, modelDef.ModelName)

	provider, err := factory.NewLLMProvider(modelDef)
	if err != nil {
		log.Fatalf("Failed to create provider: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	start := time.Now()
	answer, err := llm.Ask(ctx, provider, "Reply with the single word: pong")
	latency := time.Since(start)

	if err != nil {
		fmt.Printf("❌ Status: UNAVAILABLE\n")
		fmt.Printf("   Error: %v\n", err)
		fmt.Printf("   Latency: %dms\n", latency.Milliseconds())
		os.Exit(1)
	}

	fmt.Printf("✅ Status: AVAILABLE\n")
	fmt.Printf("   Model: %s\n", modelDef.ModelName)
	fmt.Printf("   Latency: %dms\n", latency.Milliseconds())
	fmt.Printf("   Answer: %s\n", answer)
}
