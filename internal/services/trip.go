package services

import (
	"context"

	"github.com/getaway-genius/apiserver/internal/events"
	"github.com/getaway-genius/apiserver/types"
)

// TripRepository defines persistence operations for trips.
type TripRepository interface {
	ListByEmail(ctx context.Context, email string) ([]types.Trip, error)
	Get(ctx context.Context, id int) (types.Trip, error)
	Create(ctx context.Context, trip types.Trip) (types.Trip, error)
	Update(ctx context.Context, trip types.Trip) (types.Trip, error)
	Delete(ctx context.Context, id int) error
}

// TripService encapsulates trip use-cases.
type TripService struct {
	repo      TripRepository
	publisher *events.Publisher
}

func NewTripService(repo TripRepository, publisher *events.Publisher) *TripService {
	return &TripService{repo: repo, publisher: publisher}
}

func (s *TripService) ListByEmail(ctx context.Context, email string) ([]types.Trip, error) {
	return s.repo.ListByEmail(ctx, email)
}

func (s *TripService) Get(ctx context.Context, id int) (types.Trip, error) {
	return s.repo.Get(ctx, id)
}

func (s *TripService) Create(ctx context.Context, trip types.Trip) (types.Trip, error) {
	created, err := s.repo.Create(ctx, trip)
	if err != nil {
		return types.Trip{}, err
	}
	s.publisher.Publish(ctx, events.TripCreated, created.ID, 0, created.UserEmail)
	return created, nil
}

func (s *TripService) Update(ctx context.Context, trip types.Trip) (types.Trip, error) {
	updated, err := s.repo.Update(ctx, trip)
	if err != nil {
		return types.Trip{}, err
	}
	s.publisher.Publish(ctx, events.TripUpdated, updated.ID, 0, updated.UserEmail)
	return updated, nil
}

// Delete removes the trip; the repository also clears any wishlist
// snapshots referencing it.
func (s *TripService) Delete(ctx context.Context, id int) error {
	trip, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(ctx, events.TripDeleted, id, 0, trip.UserEmail)
	return nil
}
