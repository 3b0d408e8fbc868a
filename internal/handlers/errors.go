package handlers

import (
	"errors"
	"net/http"

	"events-api/internal/models"
	"events-api/internal/repositories"
)

// Client-facing messages
const (
	MsgEventCreated       = "Event created successfully"
	MsgSignedUp           = "Successfully signed up for event"
	MsgEventNotFound      = "Event not found"
	MsgAlreadySignedUp    = "You are already signed up for this event"
	MsgRouteNotFound      = "Route not found"
	MsgInternalError      = "Internal server error"
	MsgRequestTooLarge    = "Request too large"
	MsgServiceUnavailable = "Service unavailable"
)

// ErrRouteNotFound is returned when no route matches the method and resource
var ErrRouteNotFound = errors.New("route not found")

// errorResponse maps an error to its status code and body. It is the only
// place error kinds become HTTP statuses.
func errorResponse(err error) (int, models.ErrorResponse) {
	switch {
	case errors.Is(err, ErrRouteNotFound):
		return http.StatusNotFound, models.ErrorResponse{Message: MsgRouteNotFound}
	case repositories.IsNotFound(err):
		return http.StatusNotFound, models.ErrorResponse{Message: MsgEventNotFound}
	case repositories.IsAlreadySignedUp(err):
		return http.StatusBadRequest, models.ErrorResponse{Message: MsgAlreadySignedUp}
	default:
		return http.StatusInternalServerError, models.ErrorResponse{
			Message: MsgInternalError,
			Error:   err.Error(),
		}
	}
}
