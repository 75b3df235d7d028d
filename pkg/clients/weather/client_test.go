package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmsync/internal/config"
)

func TestCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "12.5", r.URL.Query().Get("latitude"))
		assert.Equal(t, "-8.1", r.URL.Query().Get("longitude"))
		assert.Contains(t, r.URL.Query().Get("current"), "temperature_2m")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":28.4,"relative_humidity_2m":61,"wind_speed_10m":9.5,"weather_code":63}}`))
	}))
	defer srv.Close()

	client := NewClient(config.WeatherConfig{BaseURL: srv.URL + "/", Latitude: "12.5", Longitude: "-8.1"})
	got, err := client.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 28.4, got.Temperature)
	assert.Equal(t, 61.0, got.Humidity)
	assert.Equal(t, 9.5, got.WindSpeed)
	assert.Equal(t, "Rain", got.Condition)
}

func TestCurrent_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Latitude must be in range"}`))
	}))
	defer srv.Close()

	client := NewClient(config.WeatherConfig{BaseURL: srv.URL, Latitude: "999", Longitude: "0"})
	_, err := client.Current(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Latitude must be in range")
}

func TestCondition(t *testing.T) {
	assert.Equal(t, "Clear", Condition(0))
	assert.Equal(t, "Partly cloudy", Condition(2))
	assert.Equal(t, "Fog", Condition(48))
	assert.Equal(t, "Snow", Condition(86))
	assert.Equal(t, "Thunderstorm", Condition(95))
	assert.Equal(t, "Unknown", Condition(42))
}
