package std

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ilkoid/sommelier-ai/pkg/tools"
	"github.com/ilkoid/sommelier-ai/pkg/weather"
)

// === Weather ===

// WeatherTool — текущая погода и прогноз для города либо по координатам.
type WeatherTool struct {
	client *weather.Client
}

// NewWeatherTool создает погодный инструмент.
func NewWeatherTool(c *weather.Client) *WeatherTool {
	return &WeatherTool{client: c}
}

// Definition возвращает определение инструмента для function calling.
func (t *WeatherTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "get_weather",
		Description: "Get current weather for a city, or a short forecast when forecast=true. Either city or lat+lon must be set.",
		Parameters: tools.JSONSchema{
			"type": "object",
			"properties": map[string]interface{}{
				"city": map[string]interface{}{
					"type":        "string",
					"description": "City name, e.g. London",
				},
				"lat": map[string]interface{}{
					"type":        "number",
					"description": "Latitude, used together with lon when city is not set",
				},
				"lon": map[string]interface{}{
					"type":        "number",
					"description": "Longitude, used together with lat when city is not set",
				},
				"forecast": map[string]interface{}{
					"type":        "boolean",
					"description": "Return a 5-period forecast instead of current weather (city only)",
				},
			},
			"required": []string{},
		},
	}
}

// Execute запрашивает погоду согласно контракту "Raw In, String Out".
func (t *WeatherTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		City     string   `json:"city"`
		Lat      *float64 `json:"lat"`
		Lon      *float64 `json:"lon"`
		Forecast bool     `json:"forecast"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("invalid arguments json: %w", err)
	}

	var out interface{}

	switch {
	case args.Forecast && args.City != "":
		entries, err := t.client.Forecast(ctx, args.City)
		if err != nil {
			return "", fmt.Errorf("failed to get forecast: %w", err)
		}
		out = map[string]interface{}{"city": args.City, "forecast": entries}

	case args.City != "":
		current, err := t.client.CurrentByCity(ctx, args.City)
		if err != nil {
			return "", fmt.Errorf("failed to get weather: %w", err)
		}
		out = current

	case args.Lat != nil && args.Lon != nil:
		current, err := t.client.CurrentByCoords(ctx, *args.Lat, *args.Lon)
		if err != nil {
			return "", fmt.Errorf("failed to get weather: %w", err)
		}
		out = current

	default:
		return "", fmt.Errorf("either city or lat+lon is required")
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// === Weather by IP ===

// WeatherByIPTool — погода для геопозиции IP адреса.
//
// Двухшаговая композиция: ipstack резолвит IP в координаты,
// затем OpenWeatherMap отдаёт погоду по координатам.
type WeatherByIPTool struct {
	client *weather.Client
}

// NewWeatherByIPTool создает инструмент погоды по IP.
func NewWeatherByIPTool(c *weather.Client) *WeatherByIPTool {
	return &WeatherByIPTool{client: c}
}

// Definition возвращает определение инструмента для function calling.
func (t *WeatherByIPTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "get_weather_by_ip",
		Description: "Get current weather for the location of an IP address.",
		Parameters: tools.JSONSchema{
			"type": "object",
			"properties": map[string]interface{}{
				"ip": map[string]interface{}{
					"type":        "string",
					"description": "IPv4 or IPv6 address, e.g. 134.201.250.155",
				},
			},
			"required": []string{"ip"},
		},
	}
}

// Execute резолвит IP в геопозицию и запрашивает для неё текущую погоду.
func (t *WeatherByIPTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		IP string `json:"ip"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("invalid arguments json: %w", err)
	}
	if args.IP == "" {
		return "", fmt.Errorf("ip is required")
	}

	loc, err := t.client.LocationByIP(ctx, args.IP)
	if err != nil {
		return "", fmt.Errorf("failed to locate ip: %w", err)
	}
	// ipstack отвечает нулями для приватных и неизвестных адресов
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return "", fmt.Errorf("location for ip %s is incomplete", args.IP)
	}

	current, err := t.client.CurrentByCoords(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return "", fmt.Errorf("failed to get weather: %w", err)
	}

	data, err := json.Marshal(map[string]interface{}{
		"location": loc,
		"weather":  current,
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
