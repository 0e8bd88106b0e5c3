// Package std предоставляет стандартные инструменты для агентного варианта.
//
// Контракт исполнения: "Raw In, String Out" — инструмент получает сырой
// JSON аргументов и возвращает JSON строку для модели.
package std

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ilkoid/sommelier-ai/pkg/catalog"
	"github.com/ilkoid/sommelier-ai/pkg/tools"
)

// === Wine Search ===

// WineSearchTool — поиск вина по свободному текстовому запросу.
//
// Возвращает кандидатов в порядке каталога. Producer-записи помечены
// типом "producer" — у них нет SKU и деталей.
type WineSearchTool struct {
	client *catalog.Client
}

// NewWineSearchTool создает инструмент поиска.
func NewWineSearchTool(c *catalog.Client) *WineSearchTool {
	return &WineSearchTool{client: c}
}

// Definition возвращает определение инструмента для function calling.
func (t *WineSearchTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "search_wine",
		Description: "Search the wine catalog by name. Returns candidate products and producers with url, lwin and image_url. Use the url and lwin of a product to fetch its details.",
		Parameters: tools.JSONSchema{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Wine name or free text to search for",
				},
			},
			"required": []string{"query"},
		},
	}
}

// Execute выполняет поиск согласно контракту "Raw In, String Out".
func (t *WineSearchTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("invalid arguments json: %w", err)
	}
	if args.Query == "" {
		return "", fmt.Errorf("query is required")
	}

	result, err := t.client.Search(ctx, args.Query)
	if err != nil {
		return "", fmt.Errorf("failed to search wine: %w", err)
	}

	out := map[string]interface{}{
		"found":      result.Found,
		"count":      len(result.Candidates),
		"candidates": result.Candidates,
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
