// Package repotest holds behavioural tests shared by every EventRepository
// implementation.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"testing"

	"events-api/internal/models"
	"events-api/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty repository for one subtest
type Factory func(t *testing.T) repositories.EventRepository

// RunEventRepositorySuite runs the store contract against newRepo
func RunEventRepositorySuite(t *testing.T, newRepo Factory) {
	t.Run("ListEmpty", func(t *testing.T) {
		repo := newRepo(t)
		events, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})

	t.Run("CreateAssignsSequentialIDs", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 1; i <= 3; i++ {
			event, err := repo.Create(ctx, &models.CreateEventRequest{Title: fmt.Sprintf("event %d", i)})
			require.NoError(t, err)
			assert.Equal(t, strconv.Itoa(i), event.ID)
			assert.NotNil(t, event.Participants)
			assert.Empty(t, event.Participants)
		}
	})

	t.Run("CreateThenListAndGet", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		fields := &models.CreateEventRequest{
			Title:       "T",
			Description: "D",
			Datetime:    "2024-01-01T10:00",
			Location:    "L",
		}
		created, err := repo.Create(ctx, fields)
		require.NoError(t, err)
		assert.Equal(t, "1", created.ID)

		second, err := repo.Create(ctx, &models.CreateEventRequest{Title: "Second"})
		require.NoError(t, err)

		events, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, created, events[0])
		assert.Equal(t, second, events[1])

		got, err := repo.GetByID(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("GetMissing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetByID(context.Background(), "999")
		require.Error(t, err)
		assert.True(t, repositories.IsNotFound(err))
	})

	t.Run("AddParticipantMissingEvent", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.AddParticipant(context.Background(), "999", "a@x.com")
		require.Error(t, err)
		assert.True(t, repositories.IsNotFound(err))
	})

	t.Run("AddParticipantOnceThenReject", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		event, err := repo.Create(ctx, &models.CreateEventRequest{Title: "T"})
		require.NoError(t, err)

		updated, err := repo.AddParticipant(ctx, event.ID, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, []string{"a@x.com"}, updated.Participants)

		_, err = repo.AddParticipant(ctx, event.ID, "a@x.com")
		require.Error(t, err)
		assert.True(t, repositories.IsAlreadySignedUp(err))

		got, err := repo.GetByID(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"a@x.com"}, got.Participants)
	})

	t.Run("ParticipantsKeepOrder", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		event, err := repo.Create(ctx, &models.CreateEventRequest{Title: "T"})
		require.NoError(t, err)

		for _, p := range []string{"c@x.com", "a@x.com", "b@x.com"} {
			_, err := repo.AddParticipant(ctx, event.ID, p)
			require.NoError(t, err)
		}

		got, err := repo.GetByID(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"c@x.com", "a@x.com", "b@x.com"}, got.Participants)
	})

	t.Run("SignupIsPerEvent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, err := repo.Create(ctx, &models.CreateEventRequest{Title: "first"})
		require.NoError(t, err)
		second, err := repo.Create(ctx, &models.CreateEventRequest{Title: "second"})
		require.NoError(t, err)

		_, err = repo.AddParticipant(ctx, first.ID, "a@x.com")
		require.NoError(t, err)
		_, err = repo.AddParticipant(ctx, second.ID, "a@x.com")
		require.NoError(t, err)
	})

	t.Run("ReturnedEventsAreCopies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		event, err := repo.Create(ctx, &models.CreateEventRequest{Title: "T"})
		require.NoError(t, err)
		event.Participants = append(event.Participants, "intruder@x.com")
		event.Title = "changed"

		got, err := repo.GetByID(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, "T", got.Title)
		assert.Empty(t, got.Participants)
	})

	t.Run("ConcurrentCreatesGetDistinctIDs", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const n = 20
		ids := make([]string, n)
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				event, err := repo.Create(ctx, &models.CreateEventRequest{Title: strconv.Itoa(i)})
				if err != nil {
					errs <- err
					return
				}
				ids[i] = event.ID
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		sort.Slice(ids, func(a, b int) bool {
			x, _ := strconv.Atoi(ids[a])
			y, _ := strconv.Atoi(ids[b])
			return x < y
		})
		for i, id := range ids {
			assert.Equal(t, strconv.Itoa(i+1), id)
		}
	})

	t.Run("ConcurrentSignupsLandOnce", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		event, err := repo.Create(ctx, &models.CreateEventRequest{Title: "T"})
		require.NoError(t, err)

		const n = 10
		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for i := 0; i < n; i++ {
			for _, p := range []string{fmt.Sprintf("user%d@x.com", i), "same@x.com"} {
				wg.Add(1)
				go func(p string) {
					defer wg.Done()
					_, err := repo.AddParticipant(ctx, event.ID, p)
					if err == nil {
						mu.Lock()
						succeeded++
						mu.Unlock()
					} else {
						assert.True(t, repositories.IsAlreadySignedUp(err), "unexpected error: %v", err)
					}
				}(p)
			}
		}
		wg.Wait()

		got, err := repo.GetByID(ctx, event.ID)
		require.NoError(t, err)
		assert.Len(t, got.Participants, n+1)
		assert.Equal(t, n+1, succeeded)
	})
}
