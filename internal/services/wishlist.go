package services

import (
	"context"

	"github.com/getaway-genius/apiserver/types"
)

// WishlistRepository defines persistence operations for wishlists.
type WishlistRepository interface {
	Create(ctx context.Context, wishlist types.Wishlist) (types.Wishlist, error)
	Get(ctx context.Context, id int) (types.Wishlist, error)
	ListByEmail(ctx context.Context, email string) ([]types.Wishlist, error)
	AddTrip(ctx context.Context, wishlistID int, trip types.Trip) error
	RemoveTrip(ctx context.Context, wishlistID, tripID int) error
	Delete(ctx context.Context, id int) error
}

// WishlistService encapsulates wishlist use-cases.
type WishlistService struct {
	repo  WishlistRepository
	trips TripRepository
}

func NewWishlistService(repo WishlistRepository, trips TripRepository) *WishlistService {
	return &WishlistService{repo: repo, trips: trips}
}

func (s *WishlistService) Create(ctx context.Context, name, userEmail string) (types.Wishlist, error) {
	return s.repo.Create(ctx, types.Wishlist{Name: name, UserEmail: userEmail})
}

func (s *WishlistService) Get(ctx context.Context, id int) (types.Wishlist, error) {
	return s.repo.Get(ctx, id)
}

func (s *WishlistService) ListByEmail(ctx context.Context, email string) ([]types.Wishlist, error) {
	return s.repo.ListByEmail(ctx, email)
}

// AddTrip snapshots the trip's current state into the wishlist. The
// snapshot is a copy: later trip edits do not propagate into it.
func (s *WishlistService) AddTrip(ctx context.Context, wishlistID, tripID int) error {
	if _, err := s.repo.Get(ctx, wishlistID); err != nil {
		return err
	}
	trip, err := s.trips.Get(ctx, tripID)
	if err != nil {
		return err
	}
	return s.repo.AddTrip(ctx, wishlistID, trip)
}

func (s *WishlistService) RemoveTrip(ctx context.Context, wishlistID, tripID int) error {
	return s.repo.RemoveTrip(ctx, wishlistID, tripID)
}

func (s *WishlistService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
