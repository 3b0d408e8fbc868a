package repositories

import (
	"context"

	"events-api/internal/models"
)

// EventRepository stores events and their participant lists.
//
// Implementations must make Create's ID assignment and AddParticipant's
// check-then-append atomic with respect to concurrent callers.
type EventRepository interface {
	// List returns all events in insertion order
	List(ctx context.Context) ([]*models.Event, error)

	// GetByID returns the event with the given ID or ErrNotFound
	GetByID(ctx context.Context, id string) (*models.Event, error)

	// Create assigns the next sequential ID and stores a new event with no participants
	Create(ctx context.Context, fields *models.CreateEventRequest) (*models.Event, error)

	// AddParticipant appends participant to the event. It returns ErrNotFound when
	// the event does not exist and ErrAlreadySignedUp, without mutating, when the
	// participant is already present.
	AddParticipant(ctx context.Context, id, participant string) (*models.Event, error)

	// Close releases any underlying resources
	Close() error
}
