package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// EventStore appends report lifecycle events to an audit collection. Events
// are write-only from the worker's perspective.
type EventStore struct {
	coll *mongo.Collection
}

func NewEventStore(db *mongo.Database) *EventStore {
	return &EventStore{coll: db.Collection(reportEventsCollection)}
}

func (s *EventStore) Append(ctx context.Context, ev any) error {
	_, err := s.coll.InsertOne(ctx, ev)
	return err
}
