package std

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ilkoid/sommelier-ai/pkg/cart"
	"github.com/ilkoid/sommelier-ai/pkg/catalog"
	"github.com/ilkoid/sommelier-ai/pkg/tools"
	"github.com/ilkoid/sommelier-ai/pkg/utils"
)

// === Add To Cart ===

// AddToCartTool — добавление вина в корзину маркетплейса.
//
// Инструмент сам перепроверяет остаток перед мутацией: модель могла
// получить устаревшее qty_available, а добавление сверх остатка
// запрещено контрактом. Локальная корзина пополняется только после
// подтверждённого ответа endpoint'а.
type AddToCartTool struct {
	client *catalog.Client
	store  *cart.Store
}

// NewAddToCartTool создает инструмент мутации корзины.
func NewAddToCartTool(c *catalog.Client, s *cart.Store) *AddToCartTool {
	return &AddToCartTool{client: c, store: s}
}

// Definition возвращает определение инструмента для function calling.
func (t *AddToCartTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "add_to_cart",
		Description: "Add a wine to the cart. Requires the product url and lwin from search_wine and the number of bottles. Fails if the requested quantity exceeds stock.",
		Parameters: tools.JSONSchema{
			"type": "object",
			"properties": map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "Product url returned by search_wine",
				},
				"lwin": map[string]interface{}{
					"type":        "string",
					"description": "LWIN identifier returned by search_wine",
				},
				"quantity": map[string]interface{}{
					"type":        "integer",
					"description": "Number of bottles to add, must be >= 1",
				},
			},
			"required": []string{"url", "lwin", "quantity"},
		},
	}
}

// Execute добавляет позицию согласно контракту "Raw In, String Out".
func (t *AddToCartTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		URL      string `json:"url"`
		Lwin     string `json:"lwin"`
		Quantity int    `json:"quantity"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("invalid arguments json: %w", err)
	}
	if args.Quantity < 1 {
		return "", fmt.Errorf("quantity must be >= 1, got %d", args.Quantity)
	}

	reqPath := catalog.ReqPath(args.URL)
	if reqPath == "" || args.Lwin == "" {
		return "", fmt.Errorf("both url and lwin are required")
	}

	detail, err := t.client.Detail(ctx, reqPath, args.Lwin)
	if err != nil {
		return "", fmt.Errorf("failed to verify stock: %w", err)
	}

	offer, ok := detail.FirstAvailable()
	if !ok {
		return "", fmt.Errorf("no purchasable offer for lwin %s", args.Lwin)
	}
	if args.Quantity > offer.QtyAvailable {
		return "", fmt.Errorf("requested %d bottles but only %d available", args.Quantity, offer.QtyAvailable)
	}

	mutation, err := t.client.AddToCart(ctx, offer.ProductID, args.Quantity)
	if err != nil {
		return "", fmt.Errorf("failed to add to cart: %w", err)
	}

	line := cart.Line{
		ProductID: offer.ProductID,
		Name:      detail.ShortName,
		ShortName: detail.ShortName,
		Quantity:  args.Quantity,
		ETA:       detail.StockLocationETA,
		Warehouse: detail.StockLocation,
		Lwin:      args.Lwin,
	}
	if len(mutation.Items) > 0 {
		item := mutation.Items[0]
		line.ItemID = string(item.ItemID)
		line.Name = item.Name
		line.ShortName = item.ShortName
		line.Price = item.Price
		line.PriceInclTax = item.PriceInclTax
		line.RowTotal = item.RowTotal
		line.Format = item.Format
		line.Vintage = string(item.Vintage)
	}
	t.store.Append(line)

	utils.Info("tool add_to_cart confirmed",
		"lwin", args.Lwin,
		"qty", args.Quantity,
		"cart_size", t.store.Len())

	out := map[string]interface{}{
		"added":     true,
		"quantity":  args.Quantity,
		"cart_size": t.store.Len(),
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// === Show Cart ===

// ShowCartTool — снимок локальной корзины. Сеть не трогает.
type ShowCartTool struct {
	store *cart.Store
}

// NewShowCartTool создает инструмент просмотра корзины.
func NewShowCartTool(s *cart.Store) *ShowCartTool {
	return &ShowCartTool{store: s}
}

// Definition возвращает определение инструмента для function calling.
func (t *ShowCartTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "show_cart",
		Description: "Show the current contents of the cart accumulated in this session. Takes no arguments.",
		Parameters: tools.JSONSchema{
			"type":       "object",
			"properties": map[string]interface{}{},
			"required":   []string{},
		},
	}
}

// Execute возвращает снимок корзины согласно контракту "Raw In, String Out".
func (t *ShowCartTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	lines := t.store.Snapshot()

	out := map[string]interface{}{
		"count": len(lines),
		"items": lines,
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
