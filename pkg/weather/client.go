// Package weather — тонкие клиенты OpenWeatherMap и ipstack.
//
// Это внешние коллабораторы агентного варианта, не часть винного pipeline:
// обёртки без бизнес-логики, timeout — их собственная ответственность.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ilkoid/sommelier-ai/pkg/config"
)

// Client — клиент погодных API.
type Client struct {
	openWeatherBase string
	ipStackBase     string
	openWeatherKey  string
	ipStackKey      string
	httpClient      *http.Client
}

// NewFromConfig создает клиент из конфигурации.
func NewFromConfig(cfg config.WeatherConfig) (*Client, error) {
	cfg = cfg.GetDefaults()

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid weather.timeout format: %w", err)
	}

	return &Client{
		openWeatherBase: cfg.OpenWeatherBase,
		ipStackBase:     cfg.IPStackBase,
		openWeatherKey:  cfg.OpenWeatherAPIKey,
		ipStackKey:      cfg.IPStackAPIKey,
		httpClient:      &http.Client{Timeout: timeout},
	}, nil
}

// Current — текущая погода для города.
type Current struct {
	City        string
	Description string
	Temperature float64 // °C
	Humidity    int     // %
	WindSpeed   float64 // m/s
}

// ForecastEntry — один период прогноза.
type ForecastEntry struct {
	Time        string
	Description string
	Temperature float64
	WindSpeed   float64
}

// Location — геопозиция по IP.
type Location struct {
	City      string
	Region    string
	Country   string
	Latitude  float64
	Longitude float64
}

// weatherResponse — сырой ответ /weather.
type weatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Name string `json:"name"`
}

// forecastResponse — сырой ответ /forecast.
type forecastResponse struct {
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	} `json:"list"`
}

// locationResponse — сырой ответ ipstack.
type locationResponse struct {
	City        string  `json:"city"`
	RegionName  string  `json:"region_name"`
	CountryName string  `json:"country_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// CurrentByCity возвращает текущую погоду для города.
func (c *Client) CurrentByCity(ctx context.Context, city string) (*Current, error) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("units", "metric")

	var resp weatherResponse
	if err := c.getOpenWeather(ctx, "/weather", params, &resp); err != nil {
		return nil, fmt.Errorf("current weather for %q: %w", city, err)
	}

	return currentFromResponse(city, &resp), nil
}

// CurrentByCoords возвращает текущую погоду по координатам.
func (c *Client) CurrentByCoords(ctx context.Context, lat, lon float64) (*Current, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))
	params.Set("units", "metric")

	var resp weatherResponse
	if err := c.getOpenWeather(ctx, "/weather", params, &resp); err != nil {
		return nil, fmt.Errorf("current weather by coords: %w", err)
	}

	return currentFromResponse(resp.Name, &resp), nil
}

// Forecast возвращает до пяти периодов прогноза для города.
func (c *Client) Forecast(ctx context.Context, city string) ([]ForecastEntry, error) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("units", "metric")

	var resp forecastResponse
	if err := c.getOpenWeather(ctx, "/forecast", params, &resp); err != nil {
		return nil, fmt.Errorf("forecast for %q: %w", city, err)
	}

	entries := make([]ForecastEntry, 0, 5)
	for _, period := range resp.List {
		if len(entries) == 5 {
			break
		}
		entry := ForecastEntry{
			Time:        period.DtTxt,
			Temperature: period.Main.Temp,
			WindSpeed:   period.Wind.Speed,
		}
		if len(period.Weather) > 0 {
			entry.Description = period.Weather[0].Description
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// LocationByIP возвращает геопозицию по IP адресу.
func (c *Client) LocationByIP(ctx context.Context, ip string) (*Location, error) {
	u := fmt.Sprintf("%s/%s?access_key=%s", c.ipStackBase, url.PathEscape(ip), url.QueryEscape(c.ipStackKey))

	var resp locationResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("location for ip %s: %w", ip, err)
	}

	return &Location{
		City:      resp.City,
		Region:    resp.RegionName,
		Country:   resp.CountryName,
		Latitude:  resp.Latitude,
		Longitude: resp.Longitude,
	}, nil
}

// getOpenWeather выполняет запрос к OpenWeatherMap с API ключом.
func (c *Client) getOpenWeather(ctx context.Context, path string, params url.Values, dest interface{}) error {
	params.Set("appid", c.openWeatherKey)
	return c.getJSON(ctx, c.openWeatherBase+path+"?"+params.Encode(), dest)
}

// getJSON — общий GET + JSON decode.
func (c *Client) getJSON(ctx context.Context, rawURL string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "weather-app/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather api error: status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}

	return nil
}

func currentFromResponse(city string, resp *weatherResponse) *Current {
	current := &Current{
		City:        city,
		Temperature: resp.Main.Temp,
		Humidity:    resp.Main.Humidity,
		WindSpeed:   resp.Wind.Speed,
	}
	if len(resp.Weather) > 0 {
		current.Description = resp.Weather[0].Description
	}
	return current
}
