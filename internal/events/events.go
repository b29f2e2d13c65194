// Package events publishes domain events for trip activity to the
// configured message broker. Publishing is best effort: a broker failure
// is logged and never fails the originating request.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/getaway-genius/apiserver/internal/mq"
	"github.com/google/uuid"
)

// Channel is the broker channel all trip events are published to.
const Channel = "getaway.trips"

// Event names.
const (
	TripCreated         = "trip.created"
	TripUpdated         = "trip.updated"
	TripDeleted         = "trip.deleted"
	InstanceCommitted   = "trip.instance.committed"
	InstanceUncommitted = "trip.instance.uncommitted"
)

// Event is the JSON payload published for every domain event.
type Event struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TripID     int       `json:"trip_id"`
	InstanceID int       `json:"instance_id,omitempty"`
	UserEmail  string    `json:"user_email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits domain events. A Publisher constructed without a broker
// drops events silently.
type Publisher struct {
	mq *mq.MQ
}

// NewPublisher constructs a Publisher over the given broker wrapper.
// Passing nil yields a no-op publisher.
func NewPublisher(broker *mq.MQ) *Publisher {
	return &Publisher{mq: broker}
}

// Publish emits one event. Failures are logged, not returned.
func (p *Publisher) Publish(ctx context.Context, name string, tripID, instanceID int, userEmail string) {
	if p == nil || p.mq == nil {
		return
	}

	event := Event{
		ID:         uuid.NewString(),
		Name:       name,
		TripID:     tripID,
		InstanceID: instanceID,
		UserEmail:  userEmail,
		OccurredAt: time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("events: marshal %s: %v", name, err)
		return
	}

	if _, err := p.mq.Publish(ctx, Channel, data, map[string]string{"event": name}); err != nil {
		log.Printf("events: publish %s: %v", name, err)
	}
}
