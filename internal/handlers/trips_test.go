package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/getaway-genius/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTripRequiresAuth(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)

	recorder := server.do(t, http.MethodPost, "/api/trips/getaway-trip", "", TripCreateRequest{
		UserEmail:       "john@example.com",
		LocationAddress: "Paris, France",
		ImageURL:        "https://img.example.com/paris.jpg",
	})
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, recorder).Error.Code)
}

func TestCreateTripNegativeExpense(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)

	accessToken := server.register(t, "john@example.com")

	recorder := server.do(t, http.MethodPost, "/api/trips/getaway-trip", accessToken, TripCreateRequest{
		UserEmail:       "john@example.com",
		LocationAddress: "Paris, France",
		ImageURL:        "https://img.example.com/paris.jpg",
		StayExpense:     -50,
	})
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	resp := decodeError(t, recorder)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	require.NotEmpty(t, resp.Error.Details)
	assert.Equal(t, "stay_expense", resp.Error.Details[0].Field)
}

func TestCreateTripRequiresImage(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)

	accessToken := server.register(t, "john@example.com")

	recorder := server.do(t, http.MethodPost, "/api/trips/getaway-trip", accessToken, TripCreateRequest{
		UserEmail:       "john@example.com",
		LocationAddress: "Paris, France",
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "no image", decodeError(t, recorder).Error.Message)
}

func TestListTripsFiltersByEmail(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)

	johnToken := server.register(t, "john@example.com")
	janeToken := server.register(t, "jane@example.com")
	server.createTrip(t, johnToken, "john@example.com")
	server.createTrip(t, johnToken, "john@example.com")
	server.createTrip(t, janeToken, "jane@example.com")

	recorder := server.do(t, http.MethodGet, "/api/trips/getaway-trip?email=john@example.com", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var trips []types.Trip
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &trips))
	require.Len(t, trips, 2)
	for _, trip := range trips {
		assert.Equal(t, "john@example.com", trip.UserEmail)
	}
}

func TestListTripsRequiresEmail(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)

	recorder := server.do(t, http.MethodGet, "/api/trips/getaway-trip", "", nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUpdateTripPartial(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)

	accessToken := server.register(t, "john@example.com")
	trip := server.createTrip(t, accessToken, "john@example.com")

	address := "Lyon, France"
	favorite := true
	recorder := server.do(t, http.MethodPut, "/api/trips/getaway/"+itoa(trip.ID), accessToken, TripUpdateRequest{
		LocationAddress: &address,
		IsFavorite:      &favorite,
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var resp TripResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "Lyon, France", resp.Trip.LocationAddress)
	assert.True(t, resp.Trip.IsFavorite)
	assert.Equal(t, trip.ImageURL, resp.Trip.ImageURL)
}

func TestUpdateTripNotFound(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)

	accessToken := server.register(t, "john@example.com")

	address := "Lyon, France"
	recorder := server.do(t, http.MethodPut, "/api/trips/getaway/999", accessToken, TripUpdateRequest{
		LocationAddress: &address,
	})
	require.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, recorder).Error.Code)
}

func TestDeleteTripCascadesToWishlists(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)

	accessToken := server.register(t, "john@example.com")
	trip := server.createTrip(t, accessToken, "john@example.com")

	created := server.do(t, http.MethodPost, "/api/wishlist/createlist", accessToken, CreateListRequest{
		ListName: "summer ideas",
	})
	require.Equal(t, http.StatusOK, created.Code, created.Body.String())
	var wishlist types.Wishlist
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &wishlist))

	added := server.do(t, http.MethodPost, "/api/wishlist/addtrip/"+itoa(wishlist.ID), accessToken, AddTripRequest{
		TripID: trip.ID,
	})
	require.Equal(t, http.StatusOK, added.Code, added.Body.String())

	deleted := server.do(t, http.MethodDelete, "/api/trips/getaway/"+itoa(trip.ID), accessToken, nil)
	require.Equal(t, http.StatusOK, deleted.Code, deleted.Body.String())

	lists := server.do(t, http.MethodGet, "/api/wishlist/getlists", accessToken, nil)
	require.Equal(t, http.StatusOK, lists.Code)

	var wishlists []types.Wishlist
	require.NoError(t, json.Unmarshal(lists.Body.Bytes(), &wishlists))
	require.Len(t, wishlists, 1)
	assert.Empty(t, wishlists[0].Trips)
}

func TestDeleteTripNotFound(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)

	accessToken := server.register(t, "john@example.com")

	recorder := server.do(t, http.MethodDelete, "/api/trips/getaway/999", accessToken, nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}
