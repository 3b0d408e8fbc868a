package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"events-api/internal/database"
	"events-api/internal/models"
	"events-api/internal/repositories"
	"events-api/internal/repositories/repotest"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *database.ConnectionManager {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	cfg := database.DefaultConnectionConfig()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "test.db")
	cfg.Logger = logger

	cm := database.NewConnectionManager(cfg)
	require.NoError(t, cm.Connect(context.Background()))
	t.Cleanup(func() { cm.Close() })

	return cm
}

func newTestRepo(t *testing.T) repositories.EventRepository {
	cm := setupTestDB(t)
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return NewEventRepository(cm.GetDB(), logger)
}

func TestEventRepository_Contract(t *testing.T) {
	repotest.RunEventRepositorySuite(t, newTestRepo)
}

func TestEventRepository_SurvivesReopen(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	dbPath := filepath.Join(t.TempDir(), "durable.db")
	ctx := context.Background()

	open := func() *database.ConnectionManager {
		cfg := database.DefaultConnectionConfig()
		cfg.DatabasePath = dbPath
		cfg.Logger = logger
		cm := database.NewConnectionManager(cfg)
		require.NoError(t, cm.Connect(ctx))
		return cm
	}

	cm := open()
	repo := NewEventRepository(cm.GetDB(), logger)
	event, err := repo.Create(ctx, &models.CreateEventRequest{Title: "Persisted"})
	require.NoError(t, err)
	_, err = repo.AddParticipant(ctx, event.ID, "a@x.com")
	require.NoError(t, err)
	require.NoError(t, cm.Close())

	cm = open()
	defer cm.Close()
	repo = NewEventRepository(cm.GetDB(), logger)

	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Persisted", got.Title)
	assert.Equal(t, []string{"a@x.com"}, got.Participants)

	next, err := repo.Create(ctx, &models.CreateEventRequest{Title: "Next"})
	require.NoError(t, err)
	assert.Equal(t, "2", next.ID)
}

func TestParseSeq(t *testing.T) {
	tests := []struct {
		id   string
		seq  int64
		want bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"01", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		seq, ok := parseSeq(tt.id)
		assert.Equal(t, tt.want, ok, tt.id)
		assert.Equal(t, tt.seq, seq, tt.id)
	}
}
