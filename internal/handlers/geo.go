package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/getaway-genius/apiserver/internal/geo"
	"github.com/go-chi/chi/v5"
)

// GeoHandler proxies the external location services. Upstream calls are
// never retried; failures surface as 502s.
type GeoHandler struct {
	client *geo.Client
}

// NewGeoHandler constructs a handler over the given client.
func NewGeoHandler(client *geo.Client) *GeoHandler {
	return &GeoHandler{client: client}
}

// GeoRouter registers geo proxy routes on the given router.
func GeoRouter(r chi.Router, client *geo.Client, authMiddleware func(http.Handler) http.Handler) {
	handler := NewGeoHandler(client)

	r.Use(authMiddleware)
	r.Get("/weather", handler.Weather)
	r.Get("/place-photo", handler.PlacePhoto)
	r.Post("/suggestions", handler.Suggestions)
}

// Weather returns current conditions for the address in the query.
func (h *GeoHandler) Weather(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}

	weather, err := h.client.Weather(r.Context(), address)
	if err != nil {
		h.writeUpstreamError(w, err, "weather lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, weather)
}

// PlacePhoto returns a cover photo URL for the address in the query.
func (h *GeoHandler) PlacePhoto(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}

	photoURL, err := h.client.PlacePhoto(r.Context(), address)
	if err != nil {
		if errors.Is(err, geo.ErrNoPhoto) {
			writeError(w, http.StatusNotFound, "no photo available")
			return
		}
		h.writeUpstreamError(w, err, "place lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"photo_url": photoURL})
}

// Suggestions returns AI-generated places to visit for a location.
func (h *GeoHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	var req SuggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Location) == "" {
		writeError(w, http.StatusBadRequest, "location is required")
		return
	}

	suggestions, err := h.client.Suggestions(r.Context(), req.Location)
	if err != nil {
		h.writeUpstreamError(w, err, "suggestions lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"suggestions": suggestions})
}

func (h *GeoHandler) writeUpstreamError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, geo.ErrNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, "external api not configured")
		return
	}
	writeError(w, http.StatusBadGateway, fallback)
}

type SuggestionsRequest struct {
	Location string `json:"location"`
}
