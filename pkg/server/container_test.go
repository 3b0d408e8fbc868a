package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"events-api/internal/config"
	"events-api/internal/repositories"
	"events-api/pkg/lambda"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Port:        "8080",
		Log:         config.LogConfig{Level: "error", Format: "text"},
		Database:    config.DatabaseConfig{Driver: "memory", MaxOpenConns: 1},
		Auth:        config.AuthConfig{Issuer: "events-test", ExpiryHours: 1},
	}
}

// TestNewContainer verifies that the container can be created successfully
func TestNewContainer(t *testing.T) {
	container, err := NewContainer(context.Background(), testConfig(), testLogger())
	require.NoError(t, err)

	assert.NotNil(t, container.Repository)
	assert.NotNil(t, container.EventService)
	assert.NotNil(t, container.Router)
	assert.NotNil(t, container.Handler)
	assert.Nil(t, container.Verifier)
	assert.Equal(t, "*", container.CORSHeaders["Access-Control-Allow-Methods"])
	assert.NoError(t, container.Ping(context.Background()))

	resp := container.Handler(context.Background(), &lambda.Request{Method: "GET", Resource: "/events", Path: "/events"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(resp.Body))

	assert.NoError(t, container.Close())
}

func TestNewContainer_SQLite(t *testing.T) {
	cfg := testConfig()
	cfg.Database = config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "events.db"),
		MaxOpenConns: 1,
		AutoMigrate:  true,
	}

	container, err := NewContainer(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer container.Close()

	assert.NoError(t, container.Ping(context.Background()))

	resp := container.Handler(context.Background(), &lambda.Request{
		Method: "POST", Resource: "/events", Path: "/events", Body: []byte(`{"title":"Durable"}`),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	event, err := container.Repository.GetByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Durable", event.Title)
}

func TestNewContainer_AuthEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Enabled = true
	cfg.Auth.JWTSecret = "s3cret"

	container, err := NewContainer(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer container.Close()

	require.NotNil(t, container.Verifier)
	assert.Equal(t, "true", container.CORSHeaders["Access-Control-Allow-Credentials"])

	resp := container.Handler(context.Background(), &lambda.Request{Method: "GET", Resource: "/events", Path: "/events"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := container.Verifier.GenerateToken("u1", "u1@x.com")
	require.NoError(t, err)
	resp = container.Handler(context.Background(), &lambda.Request{
		Method:   "GET",
		Resource: "/events",
		Path:     "/events",
		Headers:  map[string]string{"Authorization": "Bearer " + token},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewContainer_AuthWithoutSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Enabled = true

	_, err := NewContainer(context.Background(), cfg, testLogger())
	assert.Error(t, err)
}

func TestNewContainer_UnsupportedDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = "mysql"

	_, err := NewContainer(context.Background(), cfg, testLogger())
	require.Error(t, err)
}

func TestNewRepository_UnsupportedIsClassified(t *testing.T) {
	_, _, err := newRepository(context.Background(), &config.DatabaseConfig{Driver: "mysql"}, testLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrUnsupported)
}

func TestContainer_DisconnectedAfterConnectionError(t *testing.T) {
	container, err := NewContainer(context.Background(), testConfig(), testLogger())
	require.NoError(t, err)
	defer container.Close()

	container.observeError(errors.New("boom"))
	assert.False(t, container.Disconnected())

	container.observeError(repositories.NotFoundError("event", "1"))
	assert.False(t, container.Disconnected())

	container.observeError(fmt.Errorf("failed to list events: %w", repositories.ConnectionError(errors.New("dial tcp: refused"))))
	assert.True(t, container.Disconnected())
}
