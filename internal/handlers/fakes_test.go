package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/getaway-genius/apiserver/internal/events"
	"github.com/getaway-genius/apiserver/internal/services"
	"github.com/getaway-genius/apiserver/internal/store"
	"github.com/getaway-genius/apiserver/internal/token"
	"github.com/getaway-genius/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// memData is the shared backing state for the in-memory repository
// fakes. It mirrors the relational layout: trips, instances, and
// wishlist snapshots live in separate maps keyed by id.
type memData struct {
	mu        sync.Mutex
	users     map[int]types.User
	trips     map[int]types.Trip
	instances map[int]types.TripInstance
	wishlists map[int]types.Wishlist
	nextID    int
}

func newMemData() *memData {
	return &memData{
		users:     make(map[int]types.User),
		trips:     make(map[int]types.Trip),
		instances: make(map[int]types.TripInstance),
		wishlists: make(map[int]types.Wishlist),
	}
}

func (d *memData) id() int {
	d.nextID++
	return d.nextID
}

type fakeUserRepo struct{ d *memData }

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	user, ok := f.d.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for _, user := range f.d.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for _, existing := range f.d.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = f.d.id()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.d.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	if _, ok := f.d.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	f.d.users[user.ID] = user
	return user, nil
}

type fakeTripRepo struct{ d *memData }

func (f *fakeTripRepo) ListByEmail(_ context.Context, email string) ([]types.Trip, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	trips := make([]types.Trip, 0)
	for _, trip := range f.d.trips {
		if trip.UserEmail == email {
			trips = append(trips, trip)
		}
	}
	return trips, nil
}

func (f *fakeTripRepo) Get(_ context.Context, id int) (types.Trip, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	trip, ok := f.d.trips[id]
	if !ok {
		return types.Trip{}, store.ErrNotFound
	}
	return trip, nil
}

func (f *fakeTripRepo) Create(_ context.Context, trip types.Trip) (types.Trip, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	trip.ID = f.d.id()
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = trip.CreatedAt
	f.d.trips[trip.ID] = trip
	return trip, nil
}

func (f *fakeTripRepo) Update(_ context.Context, trip types.Trip) (types.Trip, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	if _, ok := f.d.trips[trip.ID]; !ok {
		return types.Trip{}, store.ErrNotFound
	}
	trip.UpdatedAt = time.Now()
	f.d.trips[trip.ID] = trip
	return trip, nil
}

// Delete mirrors the transactional cascade: wishlist snapshots
// referencing the trip vanish together with it.
func (f *fakeTripRepo) Delete(_ context.Context, id int) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	if _, ok := f.d.trips[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.d.trips, id)
	for wid, wishlist := range f.d.wishlists {
		kept := wishlist.Trips[:0]
		for _, snapshot := range wishlist.Trips {
			if snapshot.TripID != id {
				kept = append(kept, snapshot)
			}
		}
		wishlist.Trips = kept
		f.d.wishlists[wid] = wishlist
	}
	for iid, instance := range f.d.instances {
		if instance.TripID == id {
			delete(f.d.instances, iid)
		}
	}
	return nil
}

type fakeInstanceRepo struct{ d *memData }

func (f *fakeInstanceRepo) ListByTrip(_ context.Context, tripID int) ([]types.TripInstance, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	instances := make([]types.TripInstance, 0)
	for _, instance := range f.d.instances {
		if instance.TripID == tripID {
			instances = append(instances, instance)
		}
	}
	return instances, nil
}

func (f *fakeInstanceRepo) Get(_ context.Context, id int) (types.TripInstance, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	instance, ok := f.d.instances[id]
	if !ok {
		return types.TripInstance{}, store.ErrNotFound
	}
	return instance, nil
}

func (f *fakeInstanceRepo) Create(_ context.Context, instance types.TripInstance) (types.TripInstance, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	instance.ID = f.d.id()
	instance.IsCommitted = false
	instance.CreatedAt = time.Now()
	f.d.instances[instance.ID] = instance
	return instance, nil
}

func (f *fakeInstanceRepo) Update(_ context.Context, instance types.TripInstance) (types.TripInstance, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	existing, ok := f.d.instances[instance.ID]
	if !ok {
		return types.TripInstance{}, store.ErrNotFound
	}
	instance.TripID = existing.TripID
	instance.IsCommitted = existing.IsCommitted
	instance.CreatedAt = existing.CreatedAt
	f.d.instances[instance.ID] = instance
	return instance, nil
}

func (f *fakeInstanceRepo) Delete(_ context.Context, id int) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	if _, ok := f.d.instances[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.d.instances, id)
	return nil
}

func (f *fakeInstanceRepo) Commit(_ context.Context, tripID, instanceID int) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	target, ok := f.d.instances[instanceID]
	if !ok || target.TripID != tripID {
		return store.ErrNotFound
	}
	for id, instance := range f.d.instances {
		if instance.TripID == tripID && instance.IsCommitted {
			instance.IsCommitted = false
			f.d.instances[id] = instance
		}
	}
	target.IsCommitted = true
	f.d.instances[instanceID] = target
	return nil
}

func (f *fakeInstanceRepo) Uncommit(_ context.Context, tripID, instanceID int) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	target, ok := f.d.instances[instanceID]
	if !ok || target.TripID != tripID {
		return store.ErrNotFound
	}
	target.IsCommitted = false
	f.d.instances[instanceID] = target
	return nil
}

type fakeWishlistRepo struct{ d *memData }

func (f *fakeWishlistRepo) Create(_ context.Context, wishlist types.Wishlist) (types.Wishlist, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	wishlist.ID = f.d.id()
	wishlist.Trips = []types.TripSnapshot{}
	wishlist.CreatedAt = time.Now()
	wishlist.UpdatedAt = wishlist.CreatedAt
	f.d.wishlists[wishlist.ID] = wishlist
	return wishlist, nil
}

func (f *fakeWishlistRepo) Get(_ context.Context, id int) (types.Wishlist, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	wishlist, ok := f.d.wishlists[id]
	if !ok {
		return types.Wishlist{}, store.ErrNotFound
	}
	return wishlist, nil
}

func (f *fakeWishlistRepo) ListByEmail(_ context.Context, email string) ([]types.Wishlist, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	wishlists := make([]types.Wishlist, 0)
	for _, wishlist := range f.d.wishlists {
		if wishlist.UserEmail == email {
			wishlists = append(wishlists, wishlist)
		}
	}
	return wishlists, nil
}

func (f *fakeWishlistRepo) AddTrip(_ context.Context, wishlistID int, trip types.Trip) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	wishlist, ok := f.d.wishlists[wishlistID]
	if !ok {
		return store.ErrNotFound
	}
	for _, snapshot := range wishlist.Trips {
		if snapshot.TripID == trip.ID {
			return store.ErrConflict
		}
	}
	wishlist.Trips = append(wishlist.Trips, types.TripSnapshot{
		TripID:          trip.ID,
		LocationAddress: trip.LocationAddress,
		ImageURL:        trip.ImageURL,
		TravelStartDate: trip.TravelStartDate,
		TravelEndDate:   trip.TravelEndDate,
		StayExpense:     trip.StayExpense,
		TravelExpense:   trip.TravelExpense,
		CarExpense:      trip.CarExpense,
		OtherExpense:    trip.OtherExpense,
		AddedAt:         time.Now(),
	})
	f.d.wishlists[wishlistID] = wishlist
	return nil
}

func (f *fakeWishlistRepo) RemoveTrip(_ context.Context, wishlistID, tripID int) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	wishlist, ok := f.d.wishlists[wishlistID]
	if !ok {
		return store.ErrNotFound
	}
	for i, snapshot := range wishlist.Trips {
		if snapshot.TripID == tripID {
			wishlist.Trips = append(wishlist.Trips[:i], wishlist.Trips[i+1:]...)
			f.d.wishlists[wishlistID] = wishlist
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeWishlistRepo) Delete(_ context.Context, id int) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	if _, ok := f.d.wishlists[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.d.wishlists, id)
	return nil
}

// testServer wires the full route tree over in-memory repositories.
type testServer struct {
	router *chi.Mux
	data   *memData
	issuer *token.Issuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	data := newMemData()
	issuer, err := token.NewIssuer("test-access-secret", "test-refresh-secret")
	require.NoError(t, err)

	publisher := events.NewPublisher(nil)
	tripRepo := &fakeTripRepo{d: data}

	userService := services.NewUserService(&fakeUserRepo{d: data})
	tripService := services.NewTripService(tripRepo, publisher)
	instanceService := services.NewInstanceService(&fakeInstanceRepo{d: data}, tripRepo, publisher)
	wishlistService := services.NewWishlistService(&fakeWishlistRepo{d: data}, tripRepo)

	authMiddleware := RequireAuth(issuer)

	router := chi.NewRouter()
	router.NotFound(NotFoundHandler)
	router.MethodNotAllowed(MethodNotAllowedHandler)
	router.Route("/api/user", func(r chi.Router) {
		UserRouter(r, userService, issuer, false)
	})
	router.Route("/api/trips", func(r chi.Router) {
		TripRouter(r, tripService, instanceService, authMiddleware)
	})
	router.Route("/api/wishlist", func(r chi.Router) {
		WishlistRouter(r, wishlistService, userService, authMiddleware)
	})

	return &testServer{router: router, data: data, issuer: issuer}
}

// do performs a JSON request against the route tree. An empty token
// leaves the Authorization header unset.
func (s *testServer) do(t *testing.T, method, path, accessToken string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", accessToken)
	}

	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

func itoa(id int) string { return strconv.Itoa(id) }

func requestWithCookie(method, path string, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(cookie)
	return req
}

func serve(s *testServer, req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

// register creates a user and returns the access token from the reply.
func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()

	recorder := s.do(t, http.MethodPost, "/api/user/register", "", RegisterRequest{
		FirstName: "John",
		LastName:  "Doe",
		Email:     email,
		Password:  "secret123",
		Birthday:  "1990-04-01",
		City:      "Madison",
		State:     "WI",
		Zip:       "53703",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

// createTrip persists a trip through the API and returns it.
func (s *testServer) createTrip(t *testing.T, accessToken, email string) types.Trip {
	t.Helper()

	recorder := s.do(t, http.MethodPost, "/api/trips/getaway-trip", accessToken, TripCreateRequest{
		UserEmail:       email,
		LocationAddress: "Paris, France",
		ImageURL:        "https://img.example.com/paris.jpg",
		StayExpense:     1000,
		TravelExpense:   500,
		CarExpense:      200,
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var resp TripResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.NotZero(t, resp.Trip.ID)
	return resp.Trip
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	return resp
}
