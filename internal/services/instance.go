package services

import (
	"context"
	"errors"

	"github.com/getaway-genius/apiserver/internal/events"
	"github.com/getaway-genius/apiserver/types"
)

// ErrTripMismatch is returned when an instance exists but belongs to a
// different trip than the one named in the request.
var ErrTripMismatch = errors.New("instance does not belong to trip")

// InstanceRepository defines persistence operations for trip instances.
type InstanceRepository interface {
	ListByTrip(ctx context.Context, tripID int) ([]types.TripInstance, error)
	Get(ctx context.Context, id int) (types.TripInstance, error)
	Create(ctx context.Context, instance types.TripInstance) (types.TripInstance, error)
	Update(ctx context.Context, instance types.TripInstance) (types.TripInstance, error)
	Delete(ctx context.Context, id int) error
	Commit(ctx context.Context, tripID, instanceID int) error
	Uncommit(ctx context.Context, tripID, instanceID int) error
}

// InstanceService encapsulates trip-instance use-cases, including the
// commit state transition.
type InstanceService struct {
	repo      InstanceRepository
	trips     TripRepository
	publisher *events.Publisher
}

func NewInstanceService(repo InstanceRepository, trips TripRepository, publisher *events.Publisher) *InstanceService {
	return &InstanceService{repo: repo, trips: trips, publisher: publisher}
}

func (s *InstanceService) ListByTrip(ctx context.Context, tripID int) ([]types.TripInstance, error) {
	return s.repo.ListByTrip(ctx, tripID)
}

func (s *InstanceService) Create(ctx context.Context, instance types.TripInstance) (types.TripInstance, error) {
	if _, err := s.trips.Get(ctx, instance.TripID); err != nil {
		return types.TripInstance{}, err
	}
	return s.repo.Create(ctx, instance)
}

// Get returns the instance after verifying it belongs to the trip.
func (s *InstanceService) Get(ctx context.Context, tripID, instanceID int) (types.TripInstance, error) {
	return s.member(ctx, tripID, instanceID)
}

func (s *InstanceService) Update(ctx context.Context, tripID int, instance types.TripInstance) (types.TripInstance, error) {
	existing, err := s.member(ctx, tripID, instance.ID)
	if err != nil {
		return types.TripInstance{}, err
	}
	instance.TripID = existing.TripID
	return s.repo.Update(ctx, instance)
}

func (s *InstanceService) Delete(ctx context.Context, tripID, instanceID int) error {
	if _, err := s.member(ctx, tripID, instanceID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, instanceID)
}

// Commit marks the target instance as the trip's chosen plan, clearing
// the flag on every other instance of the trip.
func (s *InstanceService) Commit(ctx context.Context, tripID, instanceID int) error {
	instance, err := s.member(ctx, tripID, instanceID)
	if err != nil {
		return err
	}
	if err := s.repo.Commit(ctx, tripID, instance.ID); err != nil {
		return err
	}
	s.publisher.Publish(ctx, events.InstanceCommitted, tripID, instance.ID, "")
	return nil
}

// Uncommit clears the committed flag; "no committed instance" is a valid
// state and reachable again after any commit.
func (s *InstanceService) Uncommit(ctx context.Context, tripID, instanceID int) error {
	instance, err := s.member(ctx, tripID, instanceID)
	if err != nil {
		return err
	}
	if err := s.repo.Uncommit(ctx, tripID, instance.ID); err != nil {
		return err
	}
	s.publisher.Publish(ctx, events.InstanceUncommitted, tripID, instance.ID, "")
	return nil
}

// member loads the instance and verifies it belongs to tripID.
func (s *InstanceService) member(ctx context.Context, tripID, instanceID int) (types.TripInstance, error) {
	instance, err := s.repo.Get(ctx, instanceID)
	if err != nil {
		return types.TripInstance{}, err
	}
	if instance.TripID != tripID {
		return types.TripInstance{}, ErrTripMismatch
	}
	return instance, nil
}
