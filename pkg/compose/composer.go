// Package compose строит финальный ответ пользователю.
//
// Для каждого намерения существует свой шаблон промпта (цепочка источников
// pkg/prompts); модель отвечает только по переданным структурированным данным.
// После модели обязательно выполняется детерминированная пост-обработка URL.
package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/ilkoid/sommelier-ai/pkg/cart"
	"github.com/ilkoid/sommelier-ai/pkg/intent"
	"github.com/ilkoid/sommelier-ai/pkg/llm"
	"github.com/ilkoid/sommelier-ai/pkg/pipeline"
	"github.com/ilkoid/sommelier-ai/pkg/prompts"
	"github.com/ilkoid/sommelier-ai/pkg/utils"
)

// Placeholder подставляется вместо отсутствующего поля данных.
// Недостающее под-поле никогда не валит весь ответ.
const Placeholder = "(not available)"

// EmptyCartData — блок данных для пустой корзины.
const EmptyCartData = "The cart is empty."

// Composer — построитель ответов.
type Composer struct {
	provider llm.Provider
	registry *prompts.Registry
}

// New создает композер поверх LLM провайдера и реестра промптов.
func New(provider llm.Provider, registry *prompts.Registry) *Composer {
	return &Composer{
		provider: provider,
		registry: registry,
	}
}

// Compose строит финальный ответ по намерению и результату pipeline.
//
// Шаги: загрузка шаблона по намерению → подстановка query/data →
// вызов модели → санитизация → пост-обработка URL (всегда).
func (c *Composer) Compose(ctx context.Context, query string, label intent.Label, res *pipeline.Result) (string, error) {
	promptID := "compose_" + string(label)

	file, err := c.registry.Load(promptID)
	if err != nil {
		return "", fmt.Errorf("load prompt: %w", err)
	}

	data := renderData(res)
	prompt := strings.NewReplacer(
		"{{query}}", query,
		"{{data}}", data,
	).Replace(file.Template)

	messages := []llm.Message{}
	if file.System != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: file.System})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: prompt})

	resp, err := c.provider.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("compose response: %w", err)
	}

	answer := utils.SanitizeLLMOutput(resp.Content)

	// Пост-обработка обязательна для каждого ответа
	answer = PostProcess(answer)

	utils.Info("response composed",
		"intent", string(label),
		"length", len(answer))

	return answer, nil
}

// renderData сериализует результат pipeline в блок данных для модели.
func renderData(res *pipeline.Result) string {
	switch res.Kind {
	case pipeline.CartView:
		return renderCart(res.CartLines)

	case pipeline.Added:
		var b strings.Builder
		b.WriteString("Operation: added to cart\n")
		fmt.Fprintf(&b, "Requested bottles: %d\n\n", res.Requested)
		b.WriteString(renderCart(res.CartLines))
		return b.String()

	default:
		return renderDetail(res)
	}
}

// renderDetail строит блок данных о продукте.
//
// Отсутствующие поля заменяются плейсхолдером — general-ветка деградирует
// мягко вместо ошибки.
func renderDetail(res *pipeline.Result) string {
	var b strings.Builder

	name, url, lwin := Placeholder, Placeholder, Placeholder
	if res.Candidate != nil {
		name = orPlaceholder(res.Candidate.Name)
		url = orPlaceholder(res.Candidate.URL)
		lwin = orPlaceholder(res.Candidate.Lwin)
	}

	fmt.Fprintf(&b, "Product: %s\n", name)
	fmt.Fprintf(&b, "URL: %s\n", url)
	fmt.Fprintf(&b, "LWIN: %s\n", lwin)

	if res.Detail != nil {
		fmt.Fprintf(&b, "Short Name: %s\n", orPlaceholder(res.Detail.ShortName))
		fmt.Fprintf(&b, "Description: %s\n", orPlaceholder(res.Detail.Description))
		fmt.Fprintf(&b, "Image URL: %s\n", orPlaceholder(res.Detail.ImageURL))
		fmt.Fprintf(&b, "Stock Location: %s\n", orPlaceholder(res.Detail.StockLocation))
		fmt.Fprintf(&b, "Stock Location ETA: %s\n", orPlaceholder(res.Detail.StockLocationETA))

		if offer, ok := res.Detail.FirstAvailable(); ok {
			fmt.Fprintf(&b, "Available Quantity: %d\n", offer.QtyAvailable)
		} else {
			fmt.Fprintf(&b, "Available Quantity: 0\n")
		}
	}

	return b.String()
}

// renderCart строит блок данных корзины.
//
// Пустой снапшот явно объявляется пустым — модель обязана сказать
// пользователю, что корзина пуста.
func renderCart(lines []cart.Line) string {
	if len(lines) == 0 {
		return EmptyCartData
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cart items (%d):\n", len(lines))
	for i, line := range lines {
		fmt.Fprintf(&b, "%d. %s", i+1, orPlaceholder(line.Name))
		fmt.Fprintf(&b, " | quantity: %d", line.Quantity)
		if line.Price > 0 {
			fmt.Fprintf(&b, " | unit price: %.2f", line.Price)
		}
		if line.Vintage != "" {
			fmt.Fprintf(&b, " | vintage: %s", line.Vintage)
		}
		if line.Format != "" {
			fmt.Fprintf(&b, " | format: %s", line.Format)
		}
		if line.ETA != "" {
			fmt.Fprintf(&b, " | eta: %s", line.ETA)
		}
		if line.Warehouse != "" {
			fmt.Fprintf(&b, " | warehouse: %s", line.Warehouse)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
