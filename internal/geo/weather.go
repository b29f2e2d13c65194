package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Weather is the condensed current-conditions report shown on a trip.
type Weather struct {
	Location    string  `json:"location"`
	Description string  `json:"description"`
	TempCelsius float64 `json:"temp_celsius"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

type openWeatherResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Weather returns current conditions for the given address.
func (c *Client) Weather(ctx context.Context, address string) (Weather, error) {
	if c.weatherKey == "" {
		return Weather{}, ErrNotConfigured
	}

	cacheKey := "weather:" + address
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(Weather), nil
	}

	query := url.Values{}
	query.Set("q", address)
	query.Set("appid", c.weatherKey)
	query.Set("units", "metric")
	endpoint := c.weatherBaseURL + "/data/2.5/weather?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Weather{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Weather{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Weather{}, fmt.Errorf("openweather returned status %d", resp.StatusCode)
	}

	var payload openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Weather{}, err
	}

	weather := Weather{
		Location:    payload.Name,
		TempCelsius: payload.Main.Temp,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
	}
	if len(payload.Weather) > 0 {
		weather.Description = payload.Weather[0].Description
	}

	c.cache.Set(cacheKey, weather)
	return weather, nil
}
