package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/getaway-genius/apiserver/internal/services"
	"github.com/getaway-genius/apiserver/internal/store"
	"github.com/getaway-genius/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// TripHandler provides HTTP handlers for trips.
type TripHandler struct {
	tripService *services.TripService
}

// NewTripHandler constructs a handler with the provided service.
func NewTripHandler(tripService *services.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// TripRouter registers trip routes on the given router.
func TripRouter(
	r chi.Router,
	tripService *services.TripService,
	instanceService *services.InstanceService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewTripHandler(tripService)

	r.Get("/getaway-trip", handler.ListTrips)
	r.With(authMiddleware).Post("/getaway-trip", handler.CreateTrip)
	r.Route("/getaway/{tripID}", func(r chi.Router) {
		r.With(authMiddleware).Put("/", handler.UpdateTrip)
		r.With(authMiddleware).Delete("/", handler.DeleteTrip)
		r.Route("/instances", func(r chi.Router) {
			InstanceRouter(r, instanceService, authMiddleware)
		})
	})
}

// ListTrips returns all trips owned by the email given in the query.
func (h *TripHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	trips, err := h.tripService.ListByEmail(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list trips")
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

// CreateTrip persists a new trip for the owner named in the body.
func (h *TripHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req TripCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	v := &validator{}
	v.require("user_email", req.UserEmail)
	v.email("user_email", req.UserEmail)
	v.require("location_address", req.LocationAddress)
	v.nonNegative("stay_expense", req.StayExpense)
	v.nonNegative("travel_expense", req.TravelExpense)
	v.nonNegative("car_expense", req.CarExpense)
	v.nonNegative("other_expense", req.OtherExpense)
	if !v.valid() {
		writeValidationErrors(w, v.errors)
		return
	}

	if strings.TrimSpace(req.ImageURL) == "" {
		writeError(w, http.StatusBadRequest, "no image")
		return
	}

	trip, err := h.tripService.Create(r.Context(), types.Trip{
		UserEmail:       strings.ToLower(strings.TrimSpace(req.UserEmail)),
		LocationAddress: strings.TrimSpace(req.LocationAddress),
		ImageURL:        req.ImageURL,
		TravelStartDate: req.TravelStartDate,
		TravelEndDate:   req.TravelEndDate,
		StayExpense:     req.StayExpense,
		TravelExpense:   req.TravelExpense,
		CarExpense:      req.CarExpense,
		OtherExpense:    req.OtherExpense,
		Activities:      req.Activities,
		IsFavorite:      req.IsFavorite,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create trip")
		return
	}

	writeJSON(w, http.StatusOK, TripResponse{Msg: "trip created", Trip: trip})
}

// UpdateTrip applies a partial update, including favorite toggling.
func (h *TripHandler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := parseTripID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.tripService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "trip not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch trip")
		return
	}

	var req TripUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	v := &validator{}
	if req.StayExpense != nil {
		v.nonNegative("stay_expense", *req.StayExpense)
	}
	if req.TravelExpense != nil {
		v.nonNegative("travel_expense", *req.TravelExpense)
	}
	if req.CarExpense != nil {
		v.nonNegative("car_expense", *req.CarExpense)
	}
	if req.OtherExpense != nil {
		v.nonNegative("other_expense", *req.OtherExpense)
	}
	if !v.valid() {
		writeValidationErrors(w, v.errors)
		return
	}

	applyTripUpdate(&trip, req)

	updated, err := h.tripService.Update(r.Context(), trip)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "trip not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update trip")
		return
	}

	writeJSON(w, http.StatusOK, TripResponse{Msg: "trip updated", Trip: updated})
}

// DeleteTrip removes the trip and any wishlist snapshots referencing it.
func (h *TripHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := parseTripID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.tripService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "trip not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete trip")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Msg: "trip deleted"})
}

type TripCreateRequest struct {
	UserEmail       string     `json:"user_email"`
	LocationAddress string     `json:"location_address"`
	ImageURL        string     `json:"image_url"`
	TravelStartDate *time.Time `json:"travel_start_date"`
	TravelEndDate   *time.Time `json:"travel_end_date"`
	StayExpense     float64    `json:"stay_expense"`
	TravelExpense   float64    `json:"travel_expense"`
	CarExpense      float64    `json:"car_expense"`
	OtherExpense    float64    `json:"other_expense"`
	Activities      []string   `json:"activities"`
	IsFavorite      bool       `json:"is_favorite"`
}

type TripUpdateRequest struct {
	LocationAddress *string    `json:"location_address"`
	ImageURL        *string    `json:"image_url"`
	TravelStartDate *time.Time `json:"travel_start_date"`
	TravelEndDate   *time.Time `json:"travel_end_date"`
	StayExpense     *float64   `json:"stay_expense"`
	TravelExpense   *float64   `json:"travel_expense"`
	CarExpense      *float64   `json:"car_expense"`
	OtherExpense    *float64   `json:"other_expense"`
	Activities      []string   `json:"activities"`
	IsFavorite      *bool      `json:"is_favorite"`
}

type TripResponse struct {
	Msg  string     `json:"msg"`
	Trip types.Trip `json:"trip"`
}

func applyTripUpdate(trip *types.Trip, req TripUpdateRequest) {
	if req.LocationAddress != nil {
		trip.LocationAddress = *req.LocationAddress
	}
	if req.ImageURL != nil {
		trip.ImageURL = *req.ImageURL
	}
	if req.TravelStartDate != nil {
		trip.TravelStartDate = req.TravelStartDate
	}
	if req.TravelEndDate != nil {
		trip.TravelEndDate = req.TravelEndDate
	}
	if req.StayExpense != nil {
		trip.StayExpense = *req.StayExpense
	}
	if req.TravelExpense != nil {
		trip.TravelExpense = *req.TravelExpense
	}
	if req.CarExpense != nil {
		trip.CarExpense = *req.CarExpense
	}
	if req.OtherExpense != nil {
		trip.OtherExpense = *req.OtherExpense
	}
	if req.Activities != nil {
		trip.Activities = req.Activities
	}
	if req.IsFavorite != nil {
		trip.IsFavorite = *req.IsFavorite
	}
}

func parseTripID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "tripID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid trip id")
	}
	return id, nil
}
