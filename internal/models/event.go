package models

// Event represents a schedulable activity and the people signed up for it
type Event struct {
	ID           string   `json:"id" db:"id"`
	Title        string   `json:"title" db:"title"`
	Description  string   `json:"description" db:"description"`
	Datetime     string   `json:"datetime" db:"datetime"`
	Location     string   `json:"location" db:"location"`
	Participants []string `json:"participants" db:"-"`
}

// NewEvent creates an event with the given store-assigned ID and no participants
func NewEvent(id string, fields *CreateEventRequest) *Event {
	event := &Event{
		ID:           id,
		Participants: []string{},
	}
	if fields != nil {
		event.Title = fields.Title
		event.Description = fields.Description
		event.Datetime = fields.Datetime
		event.Location = fields.Location
	}
	return event
}

// HasParticipant reports whether participant is already signed up
func (e *Event) HasParticipant(participant string) bool {
	for _, p := range e.Participants {
		if p == participant {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate store-owned state
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Participants = make([]string, len(e.Participants))
	copy(clone.Participants, e.Participants)
	return &clone
}

// CreateEventRequest is the caller-supplied field set for a new event
type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Datetime    string `json:"datetime"`
	Location    string `json:"location"`
}

// SignupRequest asks to add a participant to an event
type SignupRequest struct {
	EventID   string `json:"eventId"`
	UserEmail string `json:"userEmail"`
}

// CreateEventResponse is returned after an event is created
type CreateEventResponse struct {
	Message string `json:"message"`
	Event   *Event `json:"event"`
}

// SignupResponse is returned after a successful signup
type SignupResponse struct {
	Message     string `json:"message"`
	EventID     string `json:"eventId"`
	Participant string `json:"participant"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
