// Package sources содержит реализации prompts.Source.
package sources

import (
	"fmt"

	"github.com/ilkoid/sommelier-ai/pkg/prompts"
)

// DefaultSource — встроенные промпты, последний источник в цепочке.
//
// Шаблоны композера используют chain-of-thought разбивку по шагам:
// модель отвечает только по переданным структурированным данным.
type DefaultSource struct{}

// NewDefaultSource создает источник встроенных промптов.
func NewDefaultSource() *DefaultSource {
	return &DefaultSource{}
}

// Load возвращает встроенный промпт по идентификатору.
func (s *DefaultSource) Load(promptID string) (*prompts.PromptFile, error) {
	template, ok := builtin[promptID]
	if !ok {
		return nil, fmt.Errorf("builtin prompt '%s': %w", promptID, prompts.ErrNotFound)
	}

	return &prompts.PromptFile{Template: template}, nil
}

// builtin — шесть шаблонов композера, по одному на намерение.
//
// Плейсхолдеры: {{query}} — исходный запрос, {{data}} — структурированные
// данные pipeline. Модель обязана отвечать только по этим данным.
var builtin = map[string]string{
	"compose_stock": `User asked: '{{query}}'

Step 1: Analyze the query to identify if the user is asking about wine stock or availability.
Step 2: Check the product data for stock-related fields such as quantity, availability status, or ETA.
Step 3: Based on this data, explain whether the wine is in stock and when it will be available.
Answer using only the supplied data.

Wine Product Data:
{{data}}`,

	"compose_description": `User asked: '{{query}}'

Step 1: Identify that the user is looking for details about the wine.
Step 2: Extract the wine's description, tasting notes, or product details from the data.
Step 3: Summarize this information in a clear and friendly way.
Answer using only the supplied data.

Wine Product Data:
{{data}}`,

	"compose_image": `User asked: '{{query}}'

Step 1: Understand that the user wants to see the wine image.
Step 2: Locate the image URL in the wine data.
Step 3: Ensure the image URL contains the correct base domain 'uk.crustaging.com'.
Step 4: Return the complete image URL with a short description if available.
Answer using only the supplied data.

Wine Product Data:
{{data}}`,

	"compose_add_to_cart": `User asked: '{{query}}'

Step 1: Recognize that the user wanted to add a wine to their cart.
Step 2: Look at the cart operation result and the current cart contents below.
Step 3: Confirm to the user what happened, naming the product and quantity, or explain the failure plainly.
Answer using only the supplied data.

Add to Cart Data:
{{data}}`,

	"compose_show_cart": `User asked: '{{query}}'

Step 1: The user wants to see their cart.
Step 2: List every cart line below with name, quantity and price if present.
Step 3: If the data says the cart is empty, state explicitly that the cart is empty.
Answer using only the supplied data.

Cart Data:
{{data}}`,

	"compose_general": `User asked: '{{query}}'

Step 1: Interpret the user's intent from the question.
Step 2: Summarize all relevant information from the wine data.
Step 3: Compose a complete and helpful reply, including product name, description, image URL, product URL, stock location, and ETA when present.
Answer using only the supplied data.

Wine Product Data:
{{data}}`,
}
