// wine-agent — агентный вариант клиента на Function Calling.
//
// Вместо фиксированного pipeline модель сама решает, какие инструменты
// вызвать: search_wine → wine_details → add_to_cart / show_cart.
// Выполняется ограниченное число раундов, затем возвращается финальный ответ.
//
// Использование:
//
//	go run cmd/wine-agent/main.go "Add 2 cases of Chateau Margaux (6x75cl) to my cart"
//
// Конфигурация:
//
//	Использует config.yaml из текущей директории
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilkoid/sommelier-ai/pkg/cart"
	"github.com/ilkoid/sommelier-ai/pkg/catalog"
	"github.com/ilkoid/sommelier-ai/pkg/compose"
	"github.com/ilkoid/sommelier-ai/pkg/config"
	"github.com/ilkoid/sommelier-ai/pkg/factory"
	"github.com/ilkoid/sommelier-ai/pkg/llm"
	"github.com/ilkoid/sommelier-ai/pkg/tools"
	"github.com/ilkoid/sommelier-ai/pkg/tools/std"
	"github.com/ilkoid/sommelier-ai/pkg/utils"
	"github.com/ilkoid/sommelier-ai/pkg/weather"
)

// maxRounds ограничивает число раундов tool-вызовов за один запрос.
const maxRounds = 6

const systemPrompt = `You are a wine sales assistant for the Cru marketplace.
Use the available tools to search wines, check details and availability,
add wines to the cart and show the cart. Never claim a wine was added to
the cart unless the add_to_cart tool confirmed it. When asked for a number
of cases like "2 cases (6x75cl)", multiply to get the bottle count.
Answer concisely in the language of the question.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: wine-agent \"query\"")
		fmt.Fprintln(os.Stderr, "Example: wine-agent \"What does Sassicaia taste like?\"")
		os.Exit(1)
	}
	query := os.Args[1]

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer utils.Close()

	modelDef, ok := cfg.GetChatModel("")
	if !ok {
		for _, def := range cfg.Models.Definitions {
			modelDef = def
			break
		}
	}

	provider, err := factory.NewLLMProvider(modelDef)
	if err != nil {
		log.Fatalf("Failed to create provider: %v", err)
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		log.Fatalf("Failed to register tools: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	answer, err := runAgent(ctx, provider, registry, query)
	if err != nil {
		log.Fatalf("Agent run failed: %v", err)
	}

	fmt.Println(compose.PostProcess(answer))
}

// buildRegistry собирает реестр инструментов агента.
func buildRegistry(cfg *config.AppConfig) (*tools.Registry, error) {
	catalogClient, err := catalog.NewFromConfig(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("catalog client: %w", err)
	}

	weatherClient, err := weather.NewFromConfig(cfg.Weather)
	if err != nil {
		return nil, fmt.Errorf("weather client: %w", err)
	}

	store := cart.NewStore()

	registry := tools.NewRegistry()
	for _, t := range []tools.Tool{
		std.NewWineSearchTool(catalogClient),
		std.NewWineDetailsTool(catalogClient),
		std.NewAddToCartTool(catalogClient, store),
		std.NewShowCartTool(store),
		std.NewWeatherTool(weatherClient),
		std.NewWeatherByIPTool(weatherClient),
	} {
		if err := registry.Register(t); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// runAgent гоняет цикл Function Calling до финального текстового ответа.
func runAgent(ctx context.Context, provider llm.Provider, registry *tools.Registry, query string) (string, error) {
	history := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: query},
	}
	defs := registry.GetDefinitions()

	for round := 0; round < maxRounds; round++ {
		response, err := provider.Generate(ctx, history, defs)
		if err != nil {
			return "", fmt.Errorf("llm round %d: %w", round+1, err)
		}

		// Нет tool-вызовов — это финальный ответ
		if len(response.ToolCalls) == 0 {
			return response.Content, nil
		}

		history = append(history, response)

		for _, tc := range response.ToolCalls {
			result := executeToolCall(ctx, registry, tc)
			history = append(history, llm.Message{
				Role:       llm.RoleTool,
				Content:    result,
				ToolCallID: tc.ID,
			})
		}
	}

	return "", fmt.Errorf("no final answer after %d rounds", maxRounds)
}

// executeToolCall выполняет один tool-вызов; ошибка уходит модели текстом,
// чтобы она могла скорректировать план.
func executeToolCall(ctx context.Context, registry *tools.Registry, tc llm.ToolCall) string {
	utils.Info("tool call", "name", tc.Name, "args", tc.Args)

	tool, err := registry.Get(tc.Name)
	if err != nil {
		return fmt.Sprintf(`{"error": "unknown tool %s"}`, tc.Name)
	}

	result, err := tool.Execute(ctx, tc.Args)
	if err != nil {
		utils.Warn("tool call failed", "name", tc.Name, "error", err)
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return result
}
