package weather

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/farmsync/internal/config"
	"github.com/mamadbah2/farmsync/internal/domain/models"
)

const currentFields = "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code"

// Client fetches current conditions from an Open-Meteo compatible API for
// the configured farm location.
type Client struct {
	httpClient *resty.Client
	latitude   string
	longitude  string
}

// NewClient builds a weather client from configuration.
func NewClient(cfg config.WeatherConfig) *Client {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(5 * time.Second)

	return &Client{
		httpClient: restyClient,
		latitude:   cfg.Latitude,
		longitude:  cfg.Longitude,
	}
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
}

type apiError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Current returns the current conditions.
func (c *Client) Current(ctx context.Context) (*models.Weather, error) {
	result := new(forecastResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":  c.latitude,
			"longitude": c.longitude,
			"current":   currentFields,
		}).
		SetResult(result).
		SetError(apiErr).
		Get("/v1/forecast")
	if err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("weather api error: code=%d, message=%s", resp.StatusCode(), apiErr.Reason)
	}

	return &models.Weather{
		Temperature: result.Current.Temperature,
		WindSpeed:   result.Current.WindSpeed,
		Humidity:    result.Current.Humidity,
		Condition:   Condition(result.Current.WeatherCode),
	}, nil
}

// Condition maps a WMO weather code to a short label.
func Condition(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code >= 1 && code <= 3:
		return "Partly cloudy"
	case code == 45 || code == 48:
		return "Fog"
	case code >= 51 && code <= 57:
		return "Drizzle"
	case code >= 61 && code <= 67, code >= 80 && code <= 82:
		return "Rain"
	case code >= 71 && code <= 77, code == 85 || code == 86:
		return "Snow"
	case code >= 95 && code <= 99:
		return "Thunderstorm"
	default:
		return "Unknown"
	}
}
