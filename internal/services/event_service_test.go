package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"events-api/internal/metrics"
	"events-api/internal/models"
	"events-api/internal/repositories"
	"events-api/internal/repositories/memory"
)

func newTestService(t *testing.T) EventService {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return NewEventService(memory.NewEventRepository(logger), logger)
}

func TestEventService_CreateAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	before := testutil.ToFloat64(metrics.EventsCreatedTotal)

	created, err := svc.CreateEvent(ctx, &models.CreateEventRequest{Title: "T", Location: "L"})
	require.NoError(t, err)
	assert.Equal(t, "1", created.ID)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.EventsCreatedTotal))

	got, err := svc.GetEvent(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	events, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestEventService_CreateWithNilRequest(t *testing.T) {
	svc := newTestService(t)

	event, err := svc.CreateEvent(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "1", event.ID)
	assert.Empty(t, event.Title)
}

func TestEventService_GetMissingKeepsKind(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetEvent(context.Background(), "99")
	require.Error(t, err)
	assert.True(t, repositories.IsNotFound(err))
}

func TestEventService_SignUpOutcomes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, &models.CreateEventRequest{Title: "T"})
	require.NoError(t, err)

	count := func(result string) float64 {
		return testutil.ToFloat64(metrics.SignupsTotal.WithLabelValues(result))
	}
	success, duplicate, notFound := count(metrics.SignupSuccess), count(metrics.SignupDuplicate), count(metrics.SignupNotFound)

	event, err := svc.SignUp(ctx, "1", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, event.Participants)

	_, err = svc.SignUp(ctx, "1", "a@x.com")
	assert.True(t, repositories.IsAlreadySignedUp(err))

	_, err = svc.SignUp(ctx, "2", "a@x.com")
	assert.True(t, repositories.IsNotFound(err))

	assert.Equal(t, success+1, count(metrics.SignupSuccess))
	assert.Equal(t, duplicate+1, count(metrics.SignupDuplicate))
	assert.Equal(t, notFound+1, count(metrics.SignupNotFound))
}

type failingRepo struct {
	repositories.EventRepository
}

func (failingRepo) AddParticipant(ctx context.Context, id, participant string) (*models.Event, error) {
	return nil, errors.New("disk on fire")
}

func TestEventService_SignUpUnexpectedError(t *testing.T) {
	svc := NewEventService(failingRepo{}, nil)

	_, err := svc.SignUp(context.Background(), "1", "a@x.com")
	require.Error(t, err)
	assert.False(t, repositories.IsNotFound(err))
	assert.False(t, repositories.IsAlreadySignedUp(err))
	assert.Contains(t, err.Error(), "disk on fire")
}
