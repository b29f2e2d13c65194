package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/getaway-genius/apiserver/internal/services"
	"github.com/getaway-genius/apiserver/internal/store"
	"github.com/getaway-genius/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// InstanceHandler provides HTTP handlers for trip instances.
type InstanceHandler struct {
	instanceService *services.InstanceService
}

// NewInstanceHandler constructs a handler with the provided service.
func NewInstanceHandler(instanceService *services.InstanceService) *InstanceHandler {
	return &InstanceHandler{instanceService: instanceService}
}

// InstanceRouter registers instance routes under a trip route. The
// parent router provides the {tripID} URL parameter.
func InstanceRouter(
	r chi.Router,
	instanceService *services.InstanceService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewInstanceHandler(instanceService)

	r.Get("/", handler.ListInstances)
	r.With(authMiddleware).Post("/", handler.CreateInstance)
	r.Route("/{instanceID}", func(r chi.Router) {
		r.With(authMiddleware).Patch("/", handler.UpdateInstance)
		r.With(authMiddleware).Delete("/", handler.DeleteInstance)
		r.With(authMiddleware).Patch("/commit", handler.CommitInstance)
		r.With(authMiddleware).Patch("/uncommit", handler.UncommitInstance)
	})
}

// ListInstances returns all instances of the trip.
func (h *InstanceHandler) ListInstances(w http.ResponseWriter, r *http.Request) {
	tripID, err := parseTripID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	instances, err := h.instanceService.ListByTrip(r.Context(), tripID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list instances")
		return
	}
	writeJSON(w, http.StatusOK, instances)
}

// CreateInstance adds a date/cost variant to the trip. New instances are
// never committed.
func (h *InstanceHandler) CreateInstance(w http.ResponseWriter, r *http.Request) {
	tripID, err := parseTripID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req InstanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	v := &validator{}
	v.nonNegative("stay_expense", req.StayExpense)
	v.nonNegative("travel_expense", req.TravelExpense)
	v.nonNegative("car_expense", req.CarExpense)
	v.nonNegative("other_expense", req.OtherExpense)
	if !v.valid() {
		writeValidationErrors(w, v.errors)
		return
	}

	instance, err := h.instanceService.Create(r.Context(), types.TripInstance{
		TripID:        tripID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		StayExpense:   req.StayExpense,
		TravelExpense: req.TravelExpense,
		CarExpense:    req.CarExpense,
		OtherExpense:  req.OtherExpense,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "trip not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create instance")
		return
	}

	writeJSON(w, http.StatusCreated, instance)
}

// UpdateInstance applies a partial update to an instance's dates and
// expenses; fields absent from the body keep their stored values.
func (h *InstanceHandler) UpdateInstance(w http.ResponseWriter, r *http.Request) {
	tripID, instanceID, err := parseInstancePath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	instance, err := h.instanceService.Get(r.Context(), tripID, instanceID)
	if err != nil {
		h.writeInstanceError(w, err, "failed to fetch instance")
		return
	}

	var req InstanceUpdateRequest
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

	applyInstanceUpdate(&instance, req)

	updated, err := h.instanceService.Update(r.Context(), tripID, instance)
	if err != nil {
		h.writeInstanceError(w, err, "failed to update instance")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteInstance removes an instance from the trip.
func (h *InstanceHandler) DeleteInstance(w http.ResponseWriter, r *http.Request) {
	tripID, instanceID, err := parseInstancePath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.instanceService.Delete(r.Context(), tripID, instanceID); err != nil {
		h.writeInstanceError(w, err, "failed to delete instance")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Msg: "instance deleted"})
}

// CommitInstance marks the instance as the trip's chosen plan. Exactly
// one instance per trip can hold the flag.
func (h *InstanceHandler) CommitInstance(w http.ResponseWriter, r *http.Request) {
	tripID, instanceID, err := parseInstancePath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.instanceService.Commit(r.Context(), tripID, instanceID); err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "instance already committed concurrently")
			return
		}
		h.writeInstanceError(w, err, "failed to commit instance")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Msg: "instance committed"})
}

// UncommitInstance clears the committed flag.
func (h *InstanceHandler) UncommitInstance(w http.ResponseWriter, r *http.Request) {
	tripID, instanceID, err := parseInstancePath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.instanceService.Uncommit(r.Context(), tripID, instanceID); err != nil {
		h.writeInstanceError(w, err, "failed to uncommit instance")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Msg: "instance uncommitted"})
}

func (h *InstanceHandler) writeInstanceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "instance not found")
	case errors.Is(err, services.ErrTripMismatch):
		writeError(w, http.StatusBadRequest, "instance does not belong to trip")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

type InstanceRequest struct {
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	StayExpense   float64    `json:"stay_expense"`
	TravelExpense float64    `json:"travel_expense"`
	CarExpense    float64    `json:"car_expense"`
	OtherExpense  float64    `json:"other_expense"`
}

type InstanceUpdateRequest struct {
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	StayExpense   *float64   `json:"stay_expense"`
	TravelExpense *float64   `json:"travel_expense"`
	CarExpense    *float64   `json:"car_expense"`
	OtherExpense  *float64   `json:"other_expense"`
}

func applyInstanceUpdate(instance *types.TripInstance, req InstanceUpdateRequest) {
	if req.StartDate != nil {
		instance.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		instance.EndDate = req.EndDate
	}
	if req.StayExpense != nil {
		instance.StayExpense = *req.StayExpense
	}
	if req.TravelExpense != nil {
		instance.TravelExpense = *req.TravelExpense
	}
	if req.CarExpense != nil {
		instance.CarExpense = *req.CarExpense
	}
	if req.OtherExpense != nil {
		instance.OtherExpense = *req.OtherExpense
	}
}

func parseInstancePath(r *http.Request) (tripID, instanceID int, err error) {
	tripID, err = parseTripID(r)
	if err != nil {
		return 0, 0, err
	}
	raw := chi.URLParam(r, "instanceID")
	instanceID, err = strconv.Atoi(raw)
	if err != nil || instanceID < 1 {
		return 0, 0, errors.New("invalid instance id")
	}
	return tripID, instanceID, nil
}
