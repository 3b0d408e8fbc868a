package main

import (
	"context"
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"events-api/internal/config"
	"events-api/internal/handlers"
	"events-api/internal/middleware"
	"events-api/internal/models"
	"events-api/pkg/lambda"
	"events-api/pkg/server"
)

// manager keeps the container alive across warm invocations
var manager = lambda.NewConnectionManager(func(ctx context.Context) (*server.Container, error) {
	cfg, logger, err := config.GetOptimizedConfig()
	if err != nil {
		return nil, err
	}
	return server.NewContainer(ctx, cfg, logger)
})

// warmContainer is what the handler needs from a cached container
type warmContainer interface {
	io.Closer
	Ping(ctx context.Context) error
	Disconnected() bool
}

func handler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	container, err := acquire(ctx, manager)
	if err != nil {
		logrus.WithError(err).Error("Failed to initialize container")
		return lambda.ToAPIGateway(initFailure(err)), nil
	}
	defer release(manager, container, container.Logger)

	req, err := lambda.FromAPIGateway(event)
	if err != nil {
		container.Logger.WithError(err).Error("Failed to convert API Gateway event")
		return lambda.ToAPIGateway(lambda.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: handlers.MsgInternalError,
			Error:   err.Error(),
		}, container.CORSHeaders)), nil
	}

	resp := middleware.RequestLogging(container.Logger, container.Handler)(ctx, req)
	return lambda.ToAPIGateway(resp), nil
}

// acquire returns the cached container. One that is new or sat idle past the
// staleness window is pinged first and rebuilt once if its store is gone.
func acquire[T warmContainer](ctx context.Context, m *lambda.ConnectionManager[T]) (T, error) {
	checked := !m.IsHealthy()

	container, err := m.GetContainer(ctx)
	if err != nil || !checked {
		return container, err
	}

	if err := container.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("Cached container failed its ping, rebuilding")
		if cleanupErr := m.Cleanup(); cleanupErr != nil {
			logrus.WithError(cleanupErr).Warn("Failed to close stale container")
		}
		return m.GetContainer(ctx)
	}
	return container, nil
}

// release drops the container after a request found the store unreachable so
// the next invocation opens a fresh pool
func release[T warmContainer](m *lambda.ConnectionManager[T], container T, logger *logrus.Logger) {
	if !container.Disconnected() {
		return
	}
	logger.Warn("Event store unreachable, discarding cached container")
	if err := m.Cleanup(); err != nil {
		logger.WithError(err).Warn("Failed to close container")
	}
}

// initFailure still answers with CORS headers so browsers can read the error
func initFailure(err error) *lambda.Response {
	return lambda.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Message: handlers.MsgInternalError,
		Error:   err.Error(),
	}, middleware.DefaultCORSHeaders())
}

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	awslambda.Start(handler)
}
