package std

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ilkoid/sommelier-ai/pkg/catalog"
	"github.com/ilkoid/sommelier-ai/pkg/tools"
)

// === Wine Details ===

// WineDetailsTool — карточка товара и доступность на складе.
type WineDetailsTool struct {
	client *catalog.Client
}

// NewWineDetailsTool создает инструмент карточки товара.
func NewWineDetailsTool(c *catalog.Client) *WineDetailsTool {
	return &WineDetailsTool{client: c}
}

// Definition возвращает определение инструмента для function calling.
func (t *WineDetailsTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "wine_details",
		Description: "Fetch product details and stock availability for a wine found via search_wine. Requires the candidate url and lwin. Returns description, image, warehouse, ETA, offers with product_id and qty_available.",
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
			},
			"required": []string{"url", "lwin"},
		},
	}
}

// Execute загружает карточку товара согласно контракту "Raw In, String Out".
func (t *WineDetailsTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		URL  string `json:"url"`
		Lwin string `json:"lwin"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("invalid arguments json: %w", err)
	}

	reqPath := catalog.ReqPath(args.URL)
	if reqPath == "" || args.Lwin == "" {
		return "", fmt.Errorf("both url and lwin are required")
	}

	detail, err := t.client.Detail(ctx, reqPath, args.Lwin)
	if err != nil {
		return "", fmt.Errorf("failed to fetch wine details: %w", err)
	}

	out := map[string]interface{}{
		"short_name":     detail.ShortName,
		"description":    detail.Description,
		"image_url":      detail.ImageURL,
		"stock_location": detail.StockLocation,
		"stock_eta":      detail.StockLocationETA,
		"offers":         detail.Offers,
	}
	if offer, ok := detail.FirstAvailable(); ok {
		out["product_id"] = offer.ProductID
		out["qty_available"] = offer.QtyAvailable
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
