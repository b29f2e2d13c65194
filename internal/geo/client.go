// Package geo wraps the external location services used by the trip UI:
// OpenWeather current conditions, Google Places cover photos, and OpenAI
// place suggestions. Responses are cached; upstream calls are made once,
// with no retries, and failures propagate to the caller.
package geo

import (
	"errors"
	"net/http"
	"time"

	"github.com/getaway-genius/apiserver/config"
	"github.com/getaway-genius/apiserver/internal/cache"
)

// ErrNotConfigured is returned when the relevant API key is missing.
var ErrNotConfigured = errors.New("external api key not configured")

const defaultRequestTimeout = 10 * time.Second

// Client calls the external location services.
type Client struct {
	httpClient *http.Client
	cache      *cache.Cache

	googleKey  string
	weatherKey string
	openAIKey  string

	weatherBaseURL string
	placesBaseURL  string
	openAIBaseURL  string
}

// NewClient constructs a Client. The cache is required; a nil http
// client falls back to a default with a request timeout.
func NewClient(cfg config.GeoConfig, responseCache *cache.Cache, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Client{
		httpClient:     httpClient,
		cache:          responseCache,
		googleKey:      cfg.GoogleAPIKey,
		weatherKey:     cfg.OpenWeatherAPIKey,
		openAIKey:      cfg.OpenAIAPIKey,
		weatherBaseURL: "https://api.openweathermap.org",
		placesBaseURL:  "https://maps.googleapis.com",
		openAIBaseURL:  "https://api.openai.com",
	}
}
