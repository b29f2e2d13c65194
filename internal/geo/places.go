package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrNoPhoto is returned when the place lookup succeeds but no photo is
// available for the address.
var ErrNoPhoto = errors.New("no photo available for address")

type placesSearchResponse struct {
	Results []struct {
		Photos []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"results"`
	Status string `json:"status"`
}

// PlacePhoto resolves a cover photo URL for the given address via the
// Google Places text search API.
func (c *Client) PlacePhoto(ctx context.Context, address string) (string, error) {
	if c.googleKey == "" {
		return "", ErrNotConfigured
	}

	cacheKey := "place-photo:" + address
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(string), nil
	}

	query := url.Values{}
	query.Set("query", address)
	query.Set("key", c.googleKey)
	endpoint := c.placesBaseURL + "/maps/api/place/textsearch/json?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("places returned status %d", resp.StatusCode)
	}

	var payload placesSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.Status != "OK" && payload.Status != "ZERO_RESULTS" {
		return "", fmt.Errorf("places returned status %q", payload.Status)
	}
	if len(payload.Results) == 0 || len(payload.Results[0].Photos) == 0 {
		return "", ErrNoPhoto
	}

	photoQuery := url.Values{}
	photoQuery.Set("maxwidth", "800")
	photoQuery.Set("photo_reference", payload.Results[0].Photos[0].PhotoReference)
	photoQuery.Set("key", c.googleKey)
	photoURL := c.placesBaseURL + "/maps/api/place/photo?" + photoQuery.Encode()

	c.cache.Set(cacheKey, photoURL)
	return photoURL, nil
}
