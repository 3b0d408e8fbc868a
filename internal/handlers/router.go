package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"events-api/internal/metrics"
	"events-api/internal/middleware"
	"events-api/internal/models"
	"events-api/internal/services"
	"events-api/pkg/lambda"
)

// Route templates, in API Gateway resource notation
const (
	ResourceEvents = "/events"
	ResourceSignup = "/events/signup"
	ResourceEvent  = "/events/{id}"
)

type routeHandler func(ctx context.Context, req *lambda.Request) (*lambda.Response, error)

type route struct {
	method   string
	resource string
	handle   routeHandler
}

// Router dispatches requests on (method, resource template) to the event
// service. Every response it produces carries the configured CORS headers.
type Router struct {
	service services.EventService
	logger  *logrus.Logger
	headers map[string]string
	onError func(error)
	routes  []route
}

// Option configures a Router
type Option func(*Router)

// WithCORSHeaders replaces the default CORS header set
func WithCORSHeaders(headers map[string]string) Option {
	return func(r *Router) {
		r.headers = headers
	}
}

// WithErrorHook registers fn to see every error that becomes a 5xx response
func WithErrorHook(fn func(error)) Option {
	return func(r *Router) {
		r.onError = fn
	}
}

// NewRouter creates a router over service
func NewRouter(service services.EventService, logger *logrus.Logger, opts ...Option) *Router {
	if logger == nil {
		logger = logrus.New()
	}

	r := &Router{
		service: service,
		logger:  logger,
		headers: middleware.DefaultCORSHeaders(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.routes = []route{
		{http.MethodGet, ResourceEvents, r.listEvents},
		{http.MethodGet, ResourceEvent, r.getEvent},
		{http.MethodPost, ResourceEvents, r.createEvent},
		{http.MethodPost, ResourceSignup, r.signup},
	}

	return r
}

// Handle routes one request. It never returns nil; store failures and
// panics become 500 responses.
func (r *Router) Handle(ctx context.Context, req *lambda.Request) (resp *lambda.Response) {
	start := time.Now()

	if req.Resource == "" {
		req.Resource, req.PathParams = ResolveResource(req.Path, req.PathParams)
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.WithFields(logrus.Fields{
				"request_id": req.RequestID,
				"method":     req.Method,
				"resource":   req.Resource,
				"panic":      rec,
			}).Error("Recovered from panic in handler")
			resp = r.fail(req, fmt.Errorf("panic: %v", rec))
		}
		metrics.ObserveRequest(req.Method, req.Resource, resp.StatusCode, time.Since(start))
	}()

	if req.Method == http.MethodOptions {
		return lambda.Empty(http.StatusOK, r.headers)
	}

	for _, rt := range r.routes {
		if rt.method != req.Method || rt.resource != req.Resource {
			continue
		}
		out, err := rt.handle(ctx, req)
		if err != nil {
			return r.fail(req, err)
		}
		return out
	}

	return r.fail(req, ErrRouteNotFound)
}

func (r *Router) fail(req *lambda.Request, err error) *lambda.Response {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		r.logger.WithFields(logrus.Fields{
			"request_id": req.RequestID,
			"method":     req.Method,
			"resource":   req.Resource,
			"error":      err.Error(),
		}).Error("Request failed")
		if r.onError != nil {
			r.onError(err)
		}
	}
	return lambda.JSON(status, body, r.headers)
}

// listEvents godoc
// @Summary List events
// @Description Returns every event in creation order
// @Tags events
// @Produce json
// @Success 200 {array} models.Event
// @Failure 500 {object} models.ErrorResponse
// @Router /events [get]
func (r *Router) listEvents(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	events, err := r.service.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	return lambda.JSON(http.StatusOK, events, r.headers), nil
}

// getEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} models.Event
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id} [get]
func (r *Router) getEvent(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	event, err := r.service.GetEvent(ctx, req.PathParams["id"])
	if err != nil {
		return nil, err
	}
	return lambda.JSON(http.StatusOK, event, r.headers), nil
}

// createEvent godoc
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Param event body models.CreateEventRequest true "Event fields"
// @Success 201 {object} models.CreateEventResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /events [post]
func (r *Router) createEvent(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var body models.CreateEventRequest
	if err := decodeBody(req.Body, &body); err != nil {
		return nil, err
	}

	event, err := r.service.CreateEvent(ctx, &body)
	if err != nil {
		return nil, err
	}

	return lambda.JSON(http.StatusCreated, models.CreateEventResponse{
		Message: MsgEventCreated,
		Event:   event,
	}, r.headers), nil
}

// signup godoc
// @Summary Sign up for an event
// @Description Adds userEmail to the event's participants. With authentication enabled an empty userEmail signs up the caller.
// @Tags events
// @Accept json
// @Produce json
// @Param signup body models.SignupRequest true "Signup"
// @Success 200 {object} models.SignupResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /events/signup [post]
func (r *Router) signup(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var body models.SignupRequest
	if err := decodeBody(req.Body, &body); err != nil {
		return nil, err
	}

	participant := body.UserEmail
	if participant == "" {
		if identity, ok := middleware.IdentityFromContext(ctx); ok {
			participant = identity.Email
		}
	}

	if _, err := r.service.SignUp(ctx, body.EventID, participant); err != nil {
		return nil, err
	}

	return lambda.JSON(http.StatusOK, models.SignupResponse{
		Message:     MsgSignedUp,
		EventID:     body.EventID,
		Participant: participant,
	}, r.headers), nil
}

// decodeBody decodes a JSON body into dst. An empty or null body leaves dst
// at its zero value.
func decodeBody(body []byte, dst interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

// ResolveResource maps a concrete path to its route template. Static
// templates win over parameterised ones. Unknown paths resolve to "".
func ResolveResource(path string, params map[string]string) (string, map[string]string) {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	switch path {
	case ResourceEvents:
		return ResourceEvents, params
	case ResourceSignup:
		return ResourceSignup, params
	}

	if id, ok := strings.CutPrefix(path, ResourceEvents+"/"); ok && id != "" && !strings.Contains(id, "/") {
		out := make(map[string]string, len(params)+1)
		for k, v := range params {
			out[k] = v
		}
		out["id"] = id
		return ResourceEvent, out
	}

	return "", params
}
