package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"events-api/internal/metrics"
	"events-api/internal/models"
	"events-api/internal/repositories"
)

// EventService defines the business operations on events
type EventService interface {
	ListEvents(ctx context.Context) ([]*models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, req *models.CreateEventRequest) (*models.Event, error)
	SignUp(ctx context.Context, eventID, participant string) (*models.Event, error)
}

// eventService implements the EventService interface
type eventService struct {
	repo   repositories.EventRepository
	logger *logrus.Logger
}

// NewEventService creates a new event service instance
func NewEventService(repo repositories.EventRepository, logger *logrus.Logger) EventService {
	if logger == nil {
		logger = logrus.New()
	}
	return &eventService{
		repo:   repo,
		logger: logger,
	}
}

// ListEvents returns every event in creation order
func (s *eventService) ListEvents(ctx context.Context) ([]*models.Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// GetEvent retrieves an event by ID
func (s *eventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// CreateEvent stores a new event. Field contents are not validated.
func (s *eventService) CreateEvent(ctx context.Context, req *models.CreateEventRequest) (*models.Event, error) {
	if req == nil {
		req = &models.CreateEventRequest{}
	}

	event, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	metrics.EventsCreatedTotal.Inc()
	s.logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"title":    event.Title,
	}).Info("Event created")

	return event, nil
}

// SignUp adds participant to the event's participant list
func (s *eventService) SignUp(ctx context.Context, eventID, participant string) (*models.Event, error) {
	fields := logrus.Fields{
		"event_id":    eventID,
		"participant": participant,
	}

	event, err := s.repo.AddParticipant(ctx, eventID, participant)
	switch {
	case err == nil:
		metrics.SignupsTotal.WithLabelValues(metrics.SignupSuccess).Inc()
		s.logger.WithFields(fields).Info("Participant signed up")
		return event, nil
	case repositories.IsNotFound(err):
		metrics.SignupsTotal.WithLabelValues(metrics.SignupNotFound).Inc()
	case repositories.IsAlreadySignedUp(err):
		metrics.SignupsTotal.WithLabelValues(metrics.SignupDuplicate).Inc()
		s.logger.WithFields(fields).Info("Duplicate signup rejected")
	default:
		metrics.SignupsTotal.WithLabelValues(metrics.SignupError).Inc()
	}

	return nil, fmt.Errorf("failed to sign up for event: %w", err)
}
