// Package intent классифицирует пользовательский запрос по фиксированному набору меток.
//
// Классификатор использует LLM как fuzzy-классификатор: модель получает
// список меток и обязана ответить ровно одной из них. Ответ модели —
// недоверенный сигнал, поэтому он нормализуется и проверяется на членство
// в наборе; всё нераспознанное сваливается в general (fail open, not fatal).
package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/ilkoid/sommelier-ai/pkg/llm"
	"github.com/ilkoid/sommelier-ai/pkg/utils"
)

// Label — метка намерения пользователя.
type Label string

const (
	Stock       Label = "stock"
	Description Label = "description"
	Image       Label = "image"
	AddToCart   Label = "add_to_cart"
	ShowCart    Label = "show_cart"
	General     Label = "general"
)

// Labels — полный упорядоченный набор меток.
//
// Порядок используется только для построения промпта; классификатор
// обязан вернуть ровно одну метку из набора, регистр не важен.
func Labels() []Label {
	return []Label{Stock, Description, Image, AddToCart, ShowCart, General}
}

// Result — результат классификации с наблюдаемым fallback.
//
// Recognized == false означает, что модель ответила чем-то вне набора
// и метка выставлена в General по умолчанию. Raw хранит нормализованный
// ответ модели для логов и тестов.
type Result struct {
	Label      Label
	Recognized bool
	Raw        string
}

// Classifier — LLM-классификатор намерений.
type Classifier struct {
	provider llm.Provider
	labels   []Label
}

// New создает классификатор с полным набором меток.
func New(provider llm.Provider) *Classifier {
	return &Classifier{
		provider: provider,
		labels:   Labels(),
	}
}

// Classify определяет намерение запроса.
//
// Одна попытка, без retry на кривой вывод модели. Ошибка провайдера
// возвращается вместе с fallback-результатом {General, false}:
// ход разговора продолжается, но сбой наблюдаем.
func (c *Classifier) Classify(ctx context.Context, query string) (Result, error) {
	prompt := c.buildPrompt(query)

	answer, err := llm.Ask(ctx, c.provider, prompt)
	if err != nil {
		utils.Error("intent classification failed, falling back to general", "error", err)
		return Result{Label: General, Recognized: false}, fmt.Errorf("classify intent: %w", err)
	}

	normalized := utils.NormalizeLabel(answer)

	for _, label := range c.labels {
		if normalized == string(label) {
			utils.Info("intent classified", "label", normalized)
			return Result{Label: label, Recognized: true, Raw: normalized}, nil
		}
	}

	// Метка вне набора — наблюдаемый fallback
	utils.Warn("intent unrecognized, falling back to general", "raw", normalized)
	return Result{Label: General, Recognized: false, Raw: normalized}, nil
}

// buildPrompt строит промпт с инструкцией ответить ровно одной меткой.
func (c *Classifier) buildPrompt(query string) string {
	names := make([]string, len(c.labels))
	for i, l := range c.labels {
		names[i] = string(l)
	}

	var b strings.Builder
	b.WriteString("You are an intent classifier for a wine e-commerce assistant.\n")
	b.WriteString("Classify the user query into exactly one of these labels:\n")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString("\n\nRules:\n")
	b.WriteString("- add_to_cart: the user wants to add a wine to their cart, buy or purchase it\n")
	b.WriteString("- stock: the user asks about stock or availability\n")
	b.WriteString("- description: the user asks for details, tasting notes or info about a wine\n")
	b.WriteString("- image: the user asks for a picture, photo or image\n")
	b.WriteString("- show_cart: the user wants to see what is in their cart\n")
	b.WriteString("- general: anything else\n\n")
	b.WriteString("Answer with the label only, no explanation.\n\n")
	b.WriteString(fmt.Sprintf("User query: %q", query))
	return b.String()
}
