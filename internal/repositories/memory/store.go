package memory

import (
	"context"
	"strconv"
	"sync"

	"events-api/internal/models"
	"events-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// EventRepository is a process-lifetime event store. Its contents are lost
// when the process exits.
type EventRepository struct {
	mu     sync.RWMutex
	events []*models.Event
	byID   map[string]*models.Event
	logger *logrus.Logger
}

// NewEventRepository creates an empty in-memory event store
func NewEventRepository(logger *logrus.Logger) *EventRepository {
	if logger == nil {
		logger = logrus.New()
	}
	return &EventRepository{
		events: []*models.Event{},
		byID:   make(map[string]*models.Event),
		logger: logger,
	}
}

// List returns copies of all events in insertion order
func (r *EventRepository) List(ctx context.Context) ([]*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*models.Event, 0, len(r.events))
	for _, event := range r.events {
		events = append(events, event.Clone())
	}
	return events, nil
}

// GetByID returns a copy of the event with the given ID
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.byID[id]
	if !ok {
		return nil, repositories.NotFoundError("event", id)
	}
	return event.Clone(), nil
}

// Create stores a new event under the next sequential ID
func (r *EventRepository) Create(ctx context.Context, fields *models.CreateEventRequest) (*models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, repositories.NewRepositoryError("create", "event", "", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Nothing is ever deleted, so count+1 never collides.
	id := strconv.Itoa(len(r.events) + 1)
	event := models.NewEvent(id, fields)
	r.events = append(r.events, event)
	r.byID[id] = event

	r.logger.WithField("event_id", id).Debug("Event stored in memory")
	return event.Clone(), nil
}

// AddParticipant appends participant to the event unless already present
func (r *EventRepository) AddParticipant(ctx context.Context, id, participant string) (*models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, repositories.NewRepositoryError("add_participant", "event", id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.byID[id]
	if !ok {
		return nil, repositories.NotFoundError("event", id)
	}
	if event.HasParticipant(participant) {
		return nil, repositories.AlreadySignedUpError(id, participant)
	}

	event.Participants = append(event.Participants, participant)
	return event.Clone(), nil
}

// Close is a no-op for the in-memory store
func (r *EventRepository) Close() error {
	return nil
}
