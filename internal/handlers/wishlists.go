package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/getaway-genius/apiserver/internal/services"
	"github.com/getaway-genius/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
)

// WishlistHandler provides HTTP handlers for wishlists. All routes
// require authentication; the caller's email is resolved from the token
// identity.
type WishlistHandler struct {
	wishlistService *services.WishlistService
	userService     *services.UserService
}

// NewWishlistHandler constructs a handler with the provided dependencies.
func NewWishlistHandler(wishlistService *services.WishlistService, userService *services.UserService) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
		userService:     userService,
	}
}

// WishlistRouter registers wishlist routes on the given router.
func WishlistRouter(
	r chi.Router,
	wishlistService *services.WishlistService,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewWishlistHandler(wishlistService, userService)

	r.Use(authMiddleware)
	r.Post("/createlist", handler.CreateList)
	r.Get("/getlists", handler.GetLists)
	r.Post("/addtrip/{wishlistID}", handler.AddTrip)
	r.Post("/{wishlistID}/remove-trip/{tripID}", handler.RemoveTrip)
	r.Delete("/removewishlist/{wishlistID}", handler.DeleteList)
}

// CreateList creates a named wishlist for the caller.
func (h *WishlistHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	email, err := h.callerEmail(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	v := &validator{}
	v.require("list_name", req.ListName)
	if !v.valid() {
		writeValidationErrors(w, v.errors)
		return
	}

	wishlist, err := h.wishlistService.Create(r.Context(), req.ListName, email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create wishlist")
		return
	}
	writeJSON(w, http.StatusOK, wishlist)
}

// GetLists returns the caller's wishlists with embedded trip snapshots.
func (h *WishlistHandler) GetLists(w http.ResponseWriter, r *http.Request) {
	email, err := h.callerEmail(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	wishlists, err := h.wishlistService.ListByEmail(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list wishlists")
		return
	}
	writeJSON(w, http.StatusOK, wishlists)
}

// AddTrip snapshots the trip named in the body into the wishlist.
func (h *WishlistHandler) AddTrip(w http.ResponseWriter, r *http.Request) {
	wishlistID, err := parseWishlistID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req AddTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.TripID < 1 {
		writeError(w, http.StatusBadRequest, "trip_id is required")
		return
	}

	if err := h.wishlistService.AddTrip(r.Context(), wishlistID, req.TripID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "wishlist or trip not found")
		case errors.Is(err, store.ErrConflict):
			writeError(w, http.StatusConflict, "trip already in wishlist")
		default:
			writeError(w, http.StatusInternalServerError, "failed to add trip to wishlist")
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Msg: "trip added to wishlist"})
}

// RemoveTrip pulls a trip snapshot out of the wishlist.
func (h *WishlistHandler) RemoveTrip(w http.ResponseWriter, r *http.Request) {
	wishlistID, err := parseWishlistID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tripID, err := strconv.Atoi(chi.URLParam(r, "tripID"))
	if err != nil || tripID < 1 {
		writeError(w, http.StatusBadRequest, "invalid trip id")
		return
	}

	if err := h.wishlistService.RemoveTrip(r.Context(), wishlistID, tripID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "trip not in wishlist")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to remove trip from wishlist")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Msg: "trip removed from wishlist"})
}

// DeleteList removes the wishlist and its snapshots.
func (h *WishlistHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	wishlistID, err := parseWishlistID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.wishlistService.Delete(r.Context(), wishlistID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "wishlist not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete wishlist")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Msg: "wishlist deleted"})
}

func (h *WishlistHandler) callerEmail(r *http.Request) (string, error) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return "", err
	}
	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

type CreateListRequest struct {
	ListName string `json:"list_name"`
}

type AddTripRequest struct {
	TripID int `json:"trip_id"`
}

func parseWishlistID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "wishlistID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid wishlist id")
	}
	return id, nil
}
