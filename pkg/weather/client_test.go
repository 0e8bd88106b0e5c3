package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ilkoid/sommelier-ai/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewFromConfig(config.WeatherConfig{
		OpenWeatherAPIKey: "ow-key",
		IPStackAPIKey:     "ip-key",
		OpenWeatherBase:   srv.URL,
		IPStackBase:       srv.URL,
	})
	if err != nil {
		t.Fatalf("NewFromConfig() error: %v", err)
	}
	return c
}

func TestCurrentByCity(t *testing.T) {
	var gotQuery map[string]string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"q":     r.URL.Query().Get("q"),
			"units": r.URL.Query().Get("units"),
			"appid": r.URL.Query().Get("appid"),
		}
		w.Write([]byte(`{
			"main": {"temp": 18.5, "humidity": 64},
			"weather": [{"description": "light rain"}],
			"wind": {"speed": 4.2},
			"name": "London"
		}`))
	})

	current, err := c.CurrentByCity(context.Background(), "London")
	if err != nil {
		t.Fatalf("CurrentByCity() error: %v", err)
	}

	if current.Temperature != 18.5 || current.Humidity != 64 {
		t.Errorf("current = %+v", current)
	}
	if current.Description != "light rain" {
		t.Errorf("Description = %q", current.Description)
	}
	if gotQuery["q"] != "London" || gotQuery["units"] != "metric" || gotQuery["appid"] != "ow-key" {
		t.Errorf("query params = %v", gotQuery)
	}
}

func TestForecastCapsAtFivePeriods(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"list": [
			{"dt_txt": "2026-08-27 09:00:00", "main": {"temp": 15}, "weather": [{"description": "clear"}], "wind": {"speed": 1}},
			{"dt_txt": "2026-08-27 12:00:00", "main": {"temp": 17}, "weather": [{"description": "clear"}], "wind": {"speed": 2}},
			{"dt_txt": "2026-08-27 15:00:00", "main": {"temp": 19}, "weather": [{"description": "clouds"}], "wind": {"speed": 2}},
			{"dt_txt": "2026-08-27 18:00:00", "main": {"temp": 16}, "weather": [{"description": "clouds"}], "wind": {"speed": 3}},
			{"dt_txt": "2026-08-27 21:00:00", "main": {"temp": 13}, "weather": [{"description": "rain"}], "wind": {"speed": 3}},
			{"dt_txt": "2026-08-28 00:00:00", "main": {"temp": 11}, "weather": [{"description": "rain"}], "wind": {"speed": 4}}
		]}`))
	})

	entries, err := c.Forecast(context.Background(), "London")
	if err != nil {
		t.Fatalf("Forecast() error: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("entries = %d, want 5 (capped)", len(entries))
	}
	if entries[0].Time != "2026-08-27 09:00:00" {
		t.Errorf("entries[0].Time = %q", entries[0].Time)
	}
}

func TestLocationByIP(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_key") != "ip-key" {
			t.Errorf("access_key = %q", r.URL.Query().Get("access_key"))
		}
		w.Write([]byte(`{"city": "Paris", "region_name": "Ile-de-France", "country_name": "France", "latitude": 48.85, "longitude": 2.35}`))
	})

	loc, err := c.LocationByIP(context.Background(), "8.8.8.8")
	if err != nil {
		t.Fatalf("LocationByIP() error: %v", err)
	}
	if loc.City != "Paris" || loc.Country != "France" {
		t.Errorf("loc = %+v", loc)
	}
}

func TestNon200IsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	})

	if _, err := c.CurrentByCity(context.Background(), "London"); err == nil {
		t.Error("CurrentByCity() should fail on non-200 status")
	}
}
